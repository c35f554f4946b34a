package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mwielgos/bankdash/internal/domain"
	"github.com/mwielgos/bankdash/internal/store"
)

// Accounts persists account records in SQLite.
type Accounts struct {
	db *sql.DB
}

// NewAccounts instantiates the account repository backed by the supplied store.
func NewAccounts(st *store.Store) *Accounts {
	return &Accounts{db: st.DB()}
}

// List returns every account, most recently created first.
func (r *Accounts) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, accountNumber, accountType, balance, accountHolder, createdAt
		 FROM accounts ORDER BY createdAt DESC, id DESC`)
	if err != nil {
		return nil, domain.NewInternalError("Failed to retrieve accounts", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, domain.NewInternalError("Failed to retrieve accounts", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewInternalError("Failed to retrieve accounts", err)
	}
	return accounts, nil
}

// GetByID returns the account or a NOT_FOUND error.
func (r *Accounts) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, accountNumber, accountType, balance, accountHolder, createdAt
		 FROM accounts WHERE id = ?`, id)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.NewNotFoundError(fmt.Sprintf("Account with ID %s not found", id))
	}
	if err != nil {
		return domain.Account{}, domain.NewInternalError("Failed to retrieve account", err)
	}
	return account, nil
}

// Create persists a fully-populated account record.
func (r *Accounts) Create(ctx context.Context, account domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, accountNumber, accountType, balance, accountHolder, createdAt)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID, account.AccountNumber, string(account.AccountType),
		account.Balance, account.AccountHolder, formatTime(account.CreatedAt))
	if err != nil {
		return domain.NewInternalError("Failed to create account", err)
	}
	return nil
}

// UpdateBalance overwrites the balance of an existing account.
func (r *Accounts) UpdateBalance(ctx context.Context, id string, balance float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance = ? WHERE id = ?`, balance, id)
	if err != nil {
		return domain.NewInternalError("Failed to update account balance", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewInternalError("Failed to update account balance", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("Account with ID %s not found", id))
	}
	return nil
}

// Delete removes an account, failing with NOT_FOUND when no row was affected.
func (r *Accounts) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return domain.NewInternalError("Failed to delete account", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NewInternalError("Failed to delete account", err)
	}
	if affected == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("Account with ID %s not found", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		account     domain.Account
		accountType string
		createdAt   string
	)
	if err := row.Scan(&account.ID, &account.AccountNumber, &accountType,
		&account.Balance, &account.AccountHolder, &createdAt); err != nil {
		return domain.Account{}, err
	}

	account.AccountType = domain.AccountType(accountType)
	ts, err := parseTime(createdAt)
	if err != nil {
		return domain.Account{}, fmt.Errorf("parse account createdAt: %w", err)
	}
	account.CreatedAt = ts
	return account, nil
}
