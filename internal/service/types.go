package service

// CreateAccountInput is the inbound payload for account creation. InitialBalance
// is a pointer so that "absent" and "zero" stay distinguishable.
type CreateAccountInput struct {
	AccountNumber  string
	AccountType    string
	AccountHolder  string
	InitialBalance *float64
}

// PostTransactionInput is the inbound payload for the posting engine. Amount is
// a pointer so validation can report a missing amount separately from zero.
type PostTransactionInput struct {
	Type        string
	Amount      *float64
	Description string
}

// ListTransactionsParams carries the raw query-string values for the
// transaction list endpoint. The query layer owns parsing and validation so
// every malformed value is reported, not just the first.
type ListTransactionsParams struct {
	Page      string
	Limit     string
	Type      string
	StartDate string
	EndDate   string
	MinAmount string
	MaxAmount string
}

// PaginationMeta describes the page window returned to API clients.
type PaginationMeta struct {
	Page       int
	Limit      int
	Total      int64
	TotalPages int
	HasMore    bool
}
