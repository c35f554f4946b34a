package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mwielgos/bankdash/internal/domain"
	"github.com/mwielgos/bankdash/internal/service"
)

// TransactionSpec pairs a posting payload with the index of the generated
// account it targets. Indices are resolved to real account ids by the caller
// once the accounts have been created.
type TransactionSpec struct {
	AccountIndex int                          `json:"accountIndex"`
	Input        service.PostTransactionInput `json:"input"`
}

// Dataset contains the generated accounts and transactions.
type Dataset struct {
	Accounts     []service.CreateAccountInput `json:"accounts"`
	Transactions []TransactionSpec            `json:"transactions"`
}

// Generator produces synthetic dashboard data. Generation is deterministic for
// a fixed seed.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumAccounts <= 0 {
		cfg.NumAccounts = def.NumAccounts
	}
	if cfg.NumTransactions <= 0 {
		cfg.NumTransactions = def.NumTransactions
	}
	if cfg.MaxInitialBalance <= 0 {
		cfg.MaxInitialBalance = def.MaxInitialBalance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson",
}

var descriptions = []string{
	"Salary deposit", "ATM withdrawal", "Rent payment", "Freelance payment",
	"Grocery shopping", "Utility bills", "Online purchase", "Subscription fee",
	"Insurance premium", "Dining out", "Bonus payment", "Tax refund",
}

// Generate builds the dataset described by the generator config.
func (g *Generator) Generate() Dataset {
	accounts := make([]service.CreateAccountInput, 0, g.cfg.NumAccounts)
	for i := 0; i < g.cfg.NumAccounts; i++ {
		accountType := domain.AccountTypeChecking
		if g.rand.Intn(2) == 1 {
			accountType = domain.AccountTypeSavings
		}
		balance := roundCents(g.rand.Float64() * g.cfg.MaxInitialBalance)
		accounts = append(accounts, service.CreateAccountInput{
			AccountNumber:  fmt.Sprintf("ACC-%03d-%d", i+1, time.Now().Year()),
			AccountType:    string(accountType),
			AccountHolder:  g.holderName(),
			InitialBalance: &balance,
		})
	}

	transactions := make([]TransactionSpec, 0, g.cfg.NumTransactions)
	for i := 0; i < g.cfg.NumTransactions; i++ {
		amount := roundCents(5 + g.rand.Float64()*1995)
		transactions = append(transactions, TransactionSpec{
			AccountIndex: g.rand.Intn(g.cfg.NumAccounts),
			Input: service.PostTransactionInput{
				Type:        string(g.transactionType()),
				Amount:      &amount,
				Description: descriptions[g.rand.Intn(len(descriptions))],
			},
		})
	}

	return Dataset{
		Accounts:     accounts,
		Transactions: transactions,
	}
}

func (g *Generator) holderName() string {
	return firstNames[g.rand.Intn(len(firstNames))] + " " + lastNames[g.rand.Intn(len(lastNames))]
}

// transactionType draws from a deposit-heavy mix so balances tend to grow and
// most generated debits succeed.
func (g *Generator) transactionType() domain.TransactionType {
	switch n := g.rand.Intn(10); {
	case n < 5:
		return domain.TransactionDeposit
	case n < 8:
		return domain.TransactionWithdrawal
	default:
		return domain.TransactionTransfer
	}
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
