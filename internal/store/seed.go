package store

import (
	"context"
	"fmt"
	"time"
)

type seedAccount struct {
	id            string
	accountNumber string
	accountType   string
	balance       float64
	accountHolder string
	daysAgo       int
}

type seedTransaction struct {
	accountID   string
	txType      string
	amount      float64
	description string
	daysAgo     int
}

var sampleAccounts = []seedAccount{
	{id: "1", accountNumber: "ACC-001-2024", accountType: "CHECKING", balance: 5250.75, accountHolder: "John Doe", daysAgo: 30},
	{id: "2", accountNumber: "ACC-002-2024", accountType: "SAVINGS", balance: 12500.00, accountHolder: "Jane Smith", daysAgo: 60},
	{id: "3", accountNumber: "ACC-003-2024", accountType: "CHECKING", balance: 890.25, accountHolder: "Robert Johnson", daysAgo: 15},
}

var sampleTransactions = []seedTransaction{
	{accountID: "1", txType: "DEPOSIT", amount: 1500, description: "Salary deposit", daysAgo: 25},
	{accountID: "1", txType: "WITHDRAWAL", amount: 200, description: "ATM withdrawal", daysAgo: 20},
	{accountID: "1", txType: "TRANSFER", amount: 350, description: "Rent payment", daysAgo: 15},
	{accountID: "1", txType: "DEPOSIT", amount: 500, description: "Freelance payment", daysAgo: 10},
	{accountID: "1", txType: "WITHDRAWAL", amount: 75.50, description: "Grocery shopping", daysAgo: 5},
	{accountID: "2", txType: "DEPOSIT", amount: 5000, description: "Initial deposit", daysAgo: 55},
	{accountID: "2", txType: "DEPOSIT", amount: 2500, description: "Bonus payment", daysAgo: 30},
	{accountID: "2", txType: "DEPOSIT", amount: 5000, description: "Tax refund", daysAgo: 10},
	{accountID: "3", txType: "DEPOSIT", amount: 1000, description: "Initial deposit", daysAgo: 14},
	{accountID: "3", txType: "WITHDRAWAL", amount: 109.75, description: "Utility bills", daysAgo: 7},
}

// Seed loads the sample dashboard dataset. It is a no-op when accounts already
// exist, so re-running against a file database does not duplicate rows.
func (s *Store) Seed(ctx context.Context) error {
	var existing int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&existing); err != nil {
		return fmt.Errorf("check existing accounts: %w", err)
	}
	if existing > 0 {
		return nil
	}

	now := time.Now().UTC().Truncate(time.Second)
	stamp := func(daysAgo int) string {
		return now.AddDate(0, 0, -daysAgo).Format(time.RFC3339)
	}

	for _, a := range sampleAccounts {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO accounts (id, accountNumber, accountType, balance, accountHolder, createdAt)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			a.id, a.accountNumber, a.accountType, a.balance, a.accountHolder, stamp(a.daysAgo))
		if err != nil {
			return fmt.Errorf("seed account %s: %w", a.id, err)
		}
	}

	for _, tx := range sampleTransactions {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO transactions (accountId, type, amount, description, createdAt)
			 VALUES (?, ?, ?, ?, ?)`,
			tx.accountID, tx.txType, tx.amount, tx.description, stamp(tx.daysAgo))
		if err != nil {
			return fmt.Errorf("seed transactions for account %s: %w", tx.accountID, err)
		}
	}

	return nil
}
