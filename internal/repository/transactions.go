package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mwielgos/bankdash/internal/domain"
	"github.com/mwielgos/bankdash/internal/store"
)

// Transactions persists the append-only transaction ledger in SQLite.
type Transactions struct {
	db *sql.DB
}

// NewTransactions instantiates the transaction repository backed by the
// supplied store.
func NewTransactions(st *store.Store) *Transactions {
	return &Transactions{db: st.DB()}
}

// filterClause builds the conjunctive WHERE clause shared by the count and
// page queries.
func filterClause(accountID string, f domain.TransactionFilters) (string, []any) {
	clause := "WHERE accountId = ?"
	args := []any{accountID}

	if f.Type != "" {
		clause += " AND type = ?"
		args = append(args, string(f.Type))
	}
	if f.Start != nil {
		clause += " AND createdAt >= ?"
		args = append(args, formatTime(*f.Start))
	}
	if f.End != nil {
		clause += " AND createdAt <= ?"
		args = append(args, formatTime(*f.End))
	}
	if f.MinAmount != nil {
		clause += " AND amount >= ?"
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		clause += " AND amount <= ?"
		args = append(args, *f.MaxAmount)
	}
	return clause, args
}

// CountByAccount returns the number of transactions matching every filter.
func (r *Transactions) CountByAccount(ctx context.Context, accountID string, f domain.TransactionFilters) (int64, error) {
	clause, args := filterClause(accountID, f)

	var total int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions "+clause, args...).Scan(&total)
	if err != nil {
		return 0, domain.NewInternalError("Failed to count transactions", err)
	}
	return total, nil
}

// ListByAccount returns up to limit transactions matching every filter,
// newest first, starting at offset.
func (r *Transactions) ListByAccount(ctx context.Context, accountID string, f domain.TransactionFilters, offset, limit int) ([]domain.Transaction, error) {
	clause, args := filterClause(accountID, f)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, accountId, type, amount, description, createdAt FROM transactions `+
			clause+` ORDER BY createdAt DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, domain.NewInternalError("Failed to retrieve transactions", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var (
			tx        domain.Transaction
			txType    string
			createdAt string
		)
		if err := rows.Scan(&tx.ID, &tx.AccountID, &txType, &tx.Amount, &tx.Description, &createdAt); err != nil {
			return nil, domain.NewInternalError("Failed to retrieve transactions", err)
		}
		tx.Type = domain.TransactionType(txType)
		ts, err := parseTime(createdAt)
		if err != nil {
			return nil, domain.NewInternalError("Failed to retrieve transactions", err)
		}
		tx.CreatedAt = ts
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewInternalError("Failed to retrieve transactions", err)
	}
	return transactions, nil
}

// Post commits a posting as one SQL transaction: a compare-and-swap balance
// update followed by the ledger insert. The balance predicate guarantees the
// update only lands if the caller's view of the balance is still current;
// domain.ErrBalanceConflict tells the engine to re-read and retry.
func (r *Transactions) Post(ctx context.Context, accountID string, currentBalance, newBalance float64, entry domain.Transaction) (domain.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Transaction{}, domain.NewInternalError("Failed to create transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = ? WHERE id = ? AND balance = ?`,
		newBalance, accountID, currentBalance)
	if err != nil {
		return domain.Transaction{}, domain.NewInternalError("Failed to update account balance", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Transaction{}, domain.NewInternalError("Failed to update account balance", err)
	}
	if affected == 0 {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM accounts WHERE id = ?`, accountID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.NewNotFoundError(fmt.Sprintf("Account with ID %s not found", accountID))
		}
		if err != nil {
			return domain.Transaction{}, domain.NewInternalError("Failed to update account balance", err)
		}
		return domain.Transaction{}, domain.ErrBalanceConflict
	}

	res, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (accountId, type, amount, description, createdAt)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.AccountID, string(entry.Type), entry.Amount, entry.Description, formatTime(entry.CreatedAt))
	if err != nil {
		return domain.Transaction{}, domain.NewInternalError("Failed to create transaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Transaction{}, domain.NewInternalError("Failed to create transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Transaction{}, domain.NewInternalError("Failed to create transaction", err)
	}

	entry.ID = id
	return entry, nil
}

// Summary aggregates posted amounts per type plus the total count.
func (r *Transactions) Summary(ctx context.Context, accountID string) (domain.TransactionSummary, error) {
	var summary domain.TransactionSummary
	err := r.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN type = 'DEPOSIT' THEN amount ELSE 0 END), 0) AS totalDeposits,
			COALESCE(SUM(CASE WHEN type = 'WITHDRAWAL' THEN amount ELSE 0 END), 0) AS totalWithdrawals,
			COALESCE(SUM(CASE WHEN type = 'TRANSFER' THEN amount ELSE 0 END), 0) AS totalTransfers,
			COUNT(*) AS transactionCount
		 FROM transactions WHERE accountId = ?`, accountID).
		Scan(&summary.TotalDeposits, &summary.TotalWithdrawals, &summary.TotalTransfers, &summary.TransactionCount)
	if err != nil {
		return domain.TransactionSummary{}, domain.NewInternalError("Failed to get transaction summary", err)
	}
	return summary, nil
}
