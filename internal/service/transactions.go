package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mwielgos/bankdash/internal/domain"
)

const (
	maxTransactionAmount = 1_000_000
	maxDescriptionLength = 255

	defaultPageLimit = 10
	maxPageLimit     = 100

	// Attempts before a persistent compare-and-swap conflict is surfaced as an
	// internal error.
	postRetryAttempts = 3
)

// TransactionRepository is the ledger contract required by the posting engine
// and the query layer.
type TransactionRepository interface {
	CountByAccount(ctx context.Context, accountID string, f domain.TransactionFilters) (int64, error)
	ListByAccount(ctx context.Context, accountID string, f domain.TransactionFilters, offset, limit int) ([]domain.Transaction, error)
	Post(ctx context.Context, accountID string, currentBalance, newBalance float64, entry domain.Transaction) (domain.Transaction, error)
	Summary(ctx context.Context, accountID string) (domain.TransactionSummary, error)
}

// PostResult is the outcome of a successful posting.
type PostResult struct {
	Message     string
	Transaction domain.Transaction
	NewBalance  float64
}

// TransactionsPage is a bounded, ordered slice of the ledger plus pagination
// metadata.
type TransactionsPage struct {
	Items      []domain.Transaction
	Pagination PaginationMeta
}

// TransactionService implements the posting engine and the query layer on top
// of the account and transaction repositories.
type TransactionService struct {
	accounts     AccountRepository
	transactions TransactionRepository
	nowFn        func() time.Time
}

// NewTransactionService constructs a TransactionService.
func NewTransactionService(accounts AccountRepository, transactions TransactionRepository) *TransactionService {
	return &TransactionService{
		accounts:     accounts,
		transactions: transactions,
		nowFn:        time.Now,
	}
}

// Post validates the request, applies the balance change and commits the new
// balance together with the ledger record as one atomic unit. The commit uses
// a compare-and-swap on the balance; when another posting lands in between,
// the engine re-reads the account, re-applies the funds check and retries, so
// concurrent postings can never produce a lost update or an overdraft.
func (s *TransactionService) Post(ctx context.Context, accountID string, in PostTransactionInput) (PostResult, error) {
	if details := validatePostInput(in); len(details) > 0 {
		return PostResult{}, domain.NewValidationError("Validation failed", details...)
	}

	amount := *in.Amount
	txType := domain.TransactionType(in.Type)

	for attempt := 0; attempt < postRetryAttempts; attempt++ {
		account, err := s.accounts.GetByID(ctx, accountID)
		if err != nil {
			return PostResult{}, err
		}

		newBalance := account.Balance
		switch txType {
		case domain.TransactionDeposit:
			newBalance += amount
		case domain.TransactionWithdrawal, domain.TransactionTransfer:
			if amount > account.Balance {
				return PostResult{}, domain.NewInsufficientFundsError()
			}
			newBalance -= amount
		}

		entry := domain.Transaction{
			AccountID:   accountID,
			Type:        txType,
			Amount:      amount,
			Description: in.Description,
			CreatedAt:   s.nowFn().UTC().Truncate(time.Second),
		}

		created, err := s.transactions.Post(ctx, accountID, account.Balance, newBalance, entry)
		if errors.Is(err, domain.ErrBalanceConflict) {
			continue
		}
		if err != nil {
			return PostResult{}, err
		}

		return PostResult{
			Message:     fmt.Sprintf("%s of $%.2f completed successfully", txType, amount),
			Transaction: created,
			NewBalance:  newBalance,
		}, nil
	}

	return PostResult{}, domain.NewInternalError("Failed to create transaction", domain.ErrBalanceConflict)
}

// List returns one page of an account's ledger, newest first, after verifying
// the account exists and every query parameter is well-formed.
func (s *TransactionService) List(ctx context.Context, accountID string, params ListTransactionsParams) (TransactionsPage, error) {
	page, limit, filters, details := parseListParams(params)
	if len(details) > 0 {
		return TransactionsPage{}, domain.NewValidationError("Invalid query parameters", details...)
	}

	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return TransactionsPage{}, err
	}

	total, err := s.transactions.CountByAccount(ctx, accountID, filters)
	if err != nil {
		return TransactionsPage{}, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	offset := (page - 1) * limit

	items, err := s.transactions.ListByAccount(ctx, accountID, filters, offset, limit)
	if err != nil {
		return TransactionsPage{}, err
	}

	return TransactionsPage{
		Items: items,
		Pagination: PaginationMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasMore:    page < totalPages,
		},
	}, nil
}

// Summary returns the per-type totals and count for an existing account.
func (s *TransactionService) Summary(ctx context.Context, accountID string) (domain.TransactionSummary, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return domain.TransactionSummary{}, err
	}
	return s.transactions.Summary(ctx, accountID)
}

func validatePostInput(in PostTransactionInput) []string {
	var details []string

	if in.Type == "" {
		details = append(details, "Transaction type is required")
	} else if !domain.TransactionType(in.Type).Valid() {
		details = append(details, "Invalid transaction type. Must be one of: "+joinTransactionTypes())
	}

	switch {
	case in.Amount == nil:
		details = append(details, "Amount is required")
	case math.IsNaN(*in.Amount) || math.IsInf(*in.Amount, 0):
		details = append(details, "Amount must be a valid number")
	case *in.Amount <= 0:
		details = append(details, "Amount must be greater than 0")
	case *in.Amount > maxTransactionAmount:
		details = append(details, "Amount cannot exceed $1,000,000 per transaction")
	}

	if len(in.Description) > maxDescriptionLength {
		details = append(details, "Description cannot exceed 255 characters")
	}

	return details
}

func parseListParams(params ListTransactionsParams) (page, limit int, filters domain.TransactionFilters, details []string) {
	page = 1
	if params.Page != "" {
		v, err := strconv.Atoi(params.Page)
		if err != nil || v < 1 {
			details = append(details, "Page must be a positive integer")
		} else {
			page = v
		}
	}

	limit = defaultPageLimit
	if params.Limit != "" {
		v, err := strconv.Atoi(params.Limit)
		if err != nil || v < 1 || v > maxPageLimit {
			details = append(details, "Limit must be between 1 and 100")
		} else {
			limit = v
		}
	}

	if params.Type != "" {
		if !domain.TransactionType(params.Type).Valid() {
			details = append(details, "Invalid type filter. Must be one of: "+joinTransactionTypes())
		} else {
			filters.Type = domain.TransactionType(params.Type)
		}
	}

	if params.StartDate != "" {
		ts, err := parseDate(params.StartDate)
		if err != nil {
			details = append(details, "Invalid start date format")
		} else {
			filters.Start = &ts
		}
	}
	if params.EndDate != "" {
		ts, err := parseDate(params.EndDate)
		if err != nil {
			details = append(details, "Invalid end date format")
		} else {
			filters.End = &ts
		}
	}

	if params.MinAmount != "" {
		v, err := strconv.ParseFloat(params.MinAmount, 64)
		if err != nil || v < 0 {
			details = append(details, "Minimum amount must be a positive number")
		} else {
			filters.MinAmount = &v
		}
	}
	if params.MaxAmount != "" {
		v, err := strconv.ParseFloat(params.MaxAmount, 64)
		if err != nil || v < 0 {
			details = append(details, "Maximum amount must be a positive number")
		} else {
			filters.MaxAmount = &v
		}
	}

	return page, limit, filters, details
}

// parseDate accepts RFC3339 timestamps and bare dates.
func parseDate(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", value)
}

func joinTransactionTypes() string {
	types := domain.TransactionTypes()
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}
