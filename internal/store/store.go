package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

// Options configures the SQLite store.
type Options struct {
	// DSN is the SQLite data source. Defaults to an in-memory database; a file
	// path may be supplied for data that should survive restarts.
	DSN string
}

// memSeq distinguishes in-memory databases opened within the same process so
// that separate Open calls never share state.
var memSeq atomic.Int64

// Store owns the SQLite handle shared by all repositories.
type Store struct {
	db *sql.DB
}

// Open establishes the SQLite connection. In-memory databases are opened in
// shared-cache mode and pinned to a single connection: the database/sql pool
// would otherwise hand each connection its own empty database.
func Open(opts Options) (*Store, error) {
	dsn := opts.DSN
	if dsn == "" || dsn == ":memory:" {
		dsn = fmt.Sprintf("file:bankdash-mem-%d?mode=memory&cache=shared", memSeq.Add(1))
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection also keeps
	// shared-cache in-memory databases alive for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db}, nil
}

// DB exposes the underlying handle for the repositories.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle. For in-memory databases this discards
// all data.
func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates the schema when it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			accountNumber TEXT UNIQUE NOT NULL,
			accountType TEXT NOT NULL CHECK(accountType IN ('CHECKING', 'SAVINGS')),
			balance REAL DEFAULT 0,
			accountHolder TEXT NOT NULL,
			createdAt TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			accountId TEXT NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('DEPOSIT', 'WITHDRAWAL', 'TRANSFER')),
			amount REAL NOT NULL,
			description TEXT DEFAULT '',
			createdAt TEXT NOT NULL,
			FOREIGN KEY (accountId) REFERENCES accounts(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_accountId ON transactions(accountId)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
