package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mwielgos/bankdash/internal/domain"
)

// AccountRepository is the storage contract required by the services.
type AccountRepository interface {
	List(ctx context.Context) ([]domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	Create(ctx context.Context, account domain.Account) error
	UpdateBalance(ctx context.Context, id string, balance float64) error
	Delete(ctx context.Context, id string) error
}

// AccountService owns account lifecycle operations.
type AccountService struct {
	repo  AccountRepository
	nowFn func() time.Time
}

// NewAccountService constructs an AccountService.
func NewAccountService(repo AccountRepository) *AccountService {
	return &AccountService{
		repo:  repo,
		nowFn: time.Now,
	}
}

// List returns all accounts, most recently created first.
func (s *AccountService) List(ctx context.Context) ([]domain.Account, error) {
	return s.repo.List(ctx)
}

// Get returns one account by id.
func (s *AccountService) Get(ctx context.Context, id string) (domain.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates the payload, allocates an identifier and creation timestamp
// and persists the new account. Every violated rule is reported.
func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) (domain.Account, error) {
	var details []string

	if strings.TrimSpace(in.AccountNumber) == "" {
		details = append(details, "Account number is required")
	}
	if in.AccountType == "" {
		details = append(details, "Account type is required")
	} else if !domain.AccountType(in.AccountType).Valid() {
		details = append(details, "Invalid account type. Must be one of: "+joinAccountTypes())
	}
	if strings.TrimSpace(in.AccountHolder) == "" {
		details = append(details, "Account holder name is required")
	}
	if in.InitialBalance != nil && *in.InitialBalance < 0 {
		details = append(details, "Initial balance must be a non-negative number")
	}
	if len(details) > 0 {
		return domain.Account{}, domain.NewValidationError("Validation failed", details...)
	}

	balance := 0.0
	if in.InitialBalance != nil {
		balance = *in.InitialBalance
	}

	account := domain.Account{
		ID:            uuid.NewString(),
		AccountNumber: in.AccountNumber,
		AccountType:   domain.AccountType(in.AccountType),
		Balance:       balance,
		AccountHolder: in.AccountHolder,
		CreatedAt:     s.nowFn().UTC().Truncate(time.Second),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

// Delete removes an account by id.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func joinAccountTypes() string {
	types := domain.AccountTypes()
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}
