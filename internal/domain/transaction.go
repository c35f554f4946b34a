package domain

import "time"

// TransactionType enumerates the supported posting directions. The amount is
// always stored positive; the type implies the sign applied to the balance.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTransfer   TransactionType = "TRANSFER"
)

// TransactionTypes lists every valid transaction type, in display order.
func TransactionTypes() []TransactionType {
	return []TransactionType{TransactionDeposit, TransactionWithdrawal, TransactionTransfer}
}

// Valid reports whether the value is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionDeposit, TransactionWithdrawal, TransactionTransfer:
		return true
	}
	return false
}

// Transaction is an immutable posted event affecting exactly one account.
// The ID is assigned by the store on insert.
type Transaction struct {
	ID          int64
	AccountID   string
	Type        TransactionType
	Amount      float64
	Description string
	CreatedAt   time.Time
}

// TransactionFilters narrows transaction queries. All bounds are inclusive and
// compose conjunctively; zero values mean the filter is not applied.
type TransactionFilters struct {
	Type      TransactionType
	Start     *time.Time
	End       *time.Time
	MinAmount *float64
	MaxAmount *float64
}

// TransactionSummary aggregates posted amounts per type for one account.
type TransactionSummary struct {
	TotalDeposits    float64
	TotalWithdrawals float64
	TotalTransfers   float64
	TransactionCount int64
}
