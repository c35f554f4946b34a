package domain

import "time"

// AccountType enumerates the supported account categories.
type AccountType string

const (
	AccountTypeChecking AccountType = "CHECKING"
	AccountTypeSavings  AccountType = "SAVINGS"
)

// AccountTypes lists every valid account type, in display order.
func AccountTypes() []AccountType {
	return []AccountType{AccountTypeChecking, AccountTypeSavings}
}

// Valid reports whether the value is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings:
		return true
	}
	return false
}

// Account models a balance-bearing entity owned by a single holder.
// Balance is only mutated through the transaction posting path.
type Account struct {
	ID            string
	AccountNumber string
	AccountType   AccountType
	Balance       float64
	AccountHolder string
	CreatedAt     time.Time
}
