package generator

// Config controls synthetic dataset generation.
type Config struct {
	NumAccounts       int
	NumTransactions   int
	MaxInitialBalance float64
	Seed              int64
}

// DefaultConfig returns sensible defaults for a demo-sized dataset.
func DefaultConfig() Config {
	return Config{
		NumAccounts:       10,
		NumTransactions:   100,
		MaxInitialBalance: 20000,
		Seed:              1,
	}
}
