package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mwielgos/bankdash/internal/repository"
	"github.com/mwielgos/bankdash/internal/service"
	"github.com/mwielgos/bankdash/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := store.Open(store.Options{})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	if err := st.Seed(ctx); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accountRepo := repository.NewAccounts(st)
	transactionRepo := repository.NewTransactions(st)
	accountService := service.NewAccountService(accountRepo)
	transactionService := service.NewTransactionService(accountRepo, transactionRepo)

	handler := NewRouter(logger, RouterDependencies{
		Health:    &StoreHealthService{Store: st},
		API:       NewAPIHandlers(logger, accountService, transactionService),
		StartedAt: time.Now(),
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp, payload
}

func decodeBody(t *testing.T, payload []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(payload, dst); err != nil {
		t.Fatalf("failed to decode response %s: %v", payload, err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodGet, srv.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, payload)
	}

	var body struct {
		Status    string  `json:"status"`
		Timestamp string  `json:"timestamp"`
		Uptime    float64 `json:"uptime"`
	}
	decodeBody(t, payload, &body)
	if body.Status != "ok" {
		t.Errorf("expected status ok, got %q", body.Status)
	}
	if body.Timestamp == "" {
		t.Error("expected a timestamp")
	}
}

func TestListAccounts_SeededNewestFirst(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodGet, srv.URL+"/accounts", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, payload)
	}

	var accounts []accountResponse
	decodeBody(t, payload, &accounts)
	if len(accounts) != 3 {
		t.Fatalf("expected 3 seeded accounts, got %d", len(accounts))
	}
	// Seed creation dates are 15, 30 and 60 days back.
	wantOrder := []string{"3", "1", "2"}
	for i, want := range wantOrder {
		if accounts[i].ID != want {
			t.Errorf("position %d: expected account %s, got %s", i, want, accounts[i].ID)
		}
	}
	if accounts[1].Balance != 5250.75 {
		t.Errorf("expected balance 5250.75 for account 1, got %v", accounts[1].Balance)
	}
}

func TestGetAccount(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodGet, srv.URL+"/accounts/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, payload)
	}

	var account accountResponse
	decodeBody(t, payload, &account)
	if account.AccountNumber != "ACC-001-2024" || account.AccountHolder != "John Doe" {
		t.Errorf("unexpected account: %+v", account)
	}
	if account.AccountType != "CHECKING" {
		t.Errorf("expected CHECKING, got %s", account.AccountType)
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodGet, srv.URL+"/accounts/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.StatusCode, payload)
	}

	var body errorResponse
	decodeBody(t, payload, &body)
	if body.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND code, got %q", body.Code)
	}
	if body.Error != "Account with ID 999 not found" {
		t.Errorf("unexpected error message: %q", body.Error)
	}
}

func TestCreateAndDeleteAccount(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/accounts", map[string]any{
		"accountNumber":  "ACC-004-2024",
		"accountType":    "SAVINGS",
		"accountHolder":  "Alice Carter",
		"initialBalance": 2500.50,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, payload)
	}

	var created createAccountResponse
	decodeBody(t, payload, &created)
	if created.Message != "Account created successfully" {
		t.Errorf("unexpected message: %q", created.Message)
	}
	if created.Account.ID == "" {
		t.Fatal("expected a generated account id")
	}
	if created.Account.Balance != 2500.50 {
		t.Errorf("expected balance 2500.50, got %v", created.Account.Balance)
	}

	accountURL := srv.URL + "/accounts/" + created.Account.ID

	resp, payload = doJSON(t, http.MethodGet, accountURL, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("created account not retrievable: %d: %s", resp.StatusCode, payload)
	}

	resp, payload = doJSON(t, http.MethodDelete, accountURL, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 deleting account, got %d: %s", resp.StatusCode, payload)
	}
	var deleted messageResponse
	decodeBody(t, payload, &deleted)
	if deleted.Message != "Account deleted successfully" {
		t.Errorf("unexpected message: %q", deleted.Message)
	}

	resp, _ = doJSON(t, http.MethodDelete, accountURL, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 deleting twice, got %d", resp.StatusCode)
	}
}

func TestCreateAccount_ValidationFailure(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/accounts", map[string]any{
		"accountType": "BROKERAGE",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, payload)
	}

	var body errorResponse
	decodeBody(t, payload, &body)
	if body.Error != "Validation failed" || body.Code != "BAD_REQUEST" {
		t.Errorf("unexpected error envelope: %+v", body)
	}
	want := []string{
		"Account number is required",
		"Invalid account type. Must be one of: CHECKING, SAVINGS",
		"Account holder name is required",
	}
	if len(body.Details) != len(want) {
		t.Fatalf("expected %d details, got %v", len(want), body.Details)
	}
	for i, msg := range want {
		if body.Details[i] != msg {
			t.Errorf("detail %d: got %q want %q", i, body.Details[i], msg)
		}
	}
}

func TestPostTransaction_Withdrawal(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/accounts/1/transactions", map[string]any{
		"type":        "WITHDRAWAL",
		"amount":      200,
		"description": "ATM withdrawal",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, payload)
	}

	var body postTransactionResponse
	decodeBody(t, payload, &body)
	if body.Message != "WITHDRAWAL of $200.00 completed successfully" {
		t.Errorf("unexpected message: %q", body.Message)
	}
	if body.NewBalance != 5050.75 {
		t.Errorf("expected new balance 5050.75, got %v", body.NewBalance)
	}
	if body.Transaction.ID <= 0 {
		t.Errorf("expected a persisted transaction id, got %d", body.Transaction.ID)
	}
	if body.Transaction.Type != "WITHDRAWAL" || body.Transaction.Amount != 200 {
		t.Errorf("unexpected transaction: %+v", body.Transaction)
	}

	// The balance change must be visible on subsequent reads.
	resp, payload = doJSON(t, http.MethodGet, srv.URL+"/accounts/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, payload)
	}
	var account accountResponse
	decodeBody(t, payload, &account)
	if account.Balance != 5050.75 {
		t.Errorf("balance not persisted: %v", account.Balance)
	}
}

func TestPostTransaction_InsufficientFunds(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/accounts/3/transactions", map[string]any{
		"type":   "WITHDRAWAL",
		"amount": 1000,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, payload)
	}

	var body errorResponse
	decodeBody(t, payload, &body)
	if body.Code != "INSUFFICIENT_FUNDS" {
		t.Errorf("expected INSUFFICIENT_FUNDS, got %q", body.Code)
	}
	if body.Error != "Insufficient funds for this transaction" {
		t.Errorf("unexpected message: %q", body.Error)
	}

	resp, payload = doJSON(t, http.MethodGet, srv.URL+"/accounts/3", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, payload)
	}
	var account accountResponse
	decodeBody(t, payload, &account)
	if account.Balance != 890.25 {
		t.Errorf("balance changed on rejected posting: %v", account.Balance)
	}
}

func TestPostTransaction_ValidationFailure(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/accounts/1/transactions", map[string]any{
		"type":   "DEPOSIT",
		"amount": -5,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, payload)
	}

	var body errorResponse
	decodeBody(t, payload, &body)
	if body.Error != "Validation failed" {
		t.Errorf("unexpected error message: %q", body.Error)
	}
	if len(body.Details) != 1 || body.Details[0] != "Amount must be greater than 0" {
		t.Errorf("unexpected details: %v", body.Details)
	}
}

func TestPostTransaction_MalformedBody(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/accounts/1/transactions", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed json, got %d", resp.StatusCode)
	}
}

func TestListTransactions_Pagination(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodGet, srv.URL+"/accounts/1/transactions?page=1&limit=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, payload)
	}

	var body listTransactionsResponse
	decodeBody(t, payload, &body)
	if body.Pagination.Total != 5 || body.Pagination.TotalPages != 3 {
		t.Errorf("unexpected pagination: %+v", body.Pagination)
	}
	if !body.Pagination.HasMore {
		t.Error("expected hasMore on the first page")
	}
	if len(body.Data) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(body.Data))
	}
	// Newest first: grocery shopping (5 days ago), then freelance payment.
	if body.Data[0].Amount != 75.50 || body.Data[1].Amount != 500 {
		t.Errorf("unexpected page order: %v then %v", body.Data[0].Amount, body.Data[1].Amount)
	}

	resp, payload = doJSON(t, http.MethodGet, srv.URL+"/accounts/1/transactions?page=3&limit=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, payload)
	}
	decodeBody(t, payload, &body)
	if len(body.Data) != 1 || body.Pagination.HasMore {
		t.Errorf("unexpected trailing page: %d rows, hasMore=%v", len(body.Data), body.Pagination.HasMore)
	}
}

func TestListTransactions_TypeFilter(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodGet, srv.URL+"/accounts/1/transactions?type=DEPOSIT", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, payload)
	}

	var body listTransactionsResponse
	decodeBody(t, payload, &body)
	if body.Pagination.Total != 2 {
		t.Errorf("expected 2 deposits, got %d", body.Pagination.Total)
	}
	for _, tx := range body.Data {
		if tx.Type != "DEPOSIT" {
			t.Errorf("filter leaked %s row", tx.Type)
		}
	}
}

func TestListTransactions_InvalidQuery(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodGet, srv.URL+"/accounts/1/transactions?limit=500&type=REFUND", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, payload)
	}

	var body errorResponse
	decodeBody(t, payload, &body)
	if body.Error != "Invalid query parameters" {
		t.Errorf("unexpected error message: %q", body.Error)
	}
	want := []string{
		"Limit must be between 1 and 100",
		"Invalid type filter. Must be one of: DEPOSIT, WITHDRAWAL, TRANSFER",
	}
	if len(body.Details) != len(want) {
		t.Fatalf("expected %d details, got %v", len(want), body.Details)
	}
	for i, msg := range want {
		if body.Details[i] != msg {
			t.Errorf("detail %d: got %q want %q", i, body.Details[i], msg)
		}
	}
}

func TestListTransactions_AccountMissing(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/accounts/999/transactions", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestTransactionSummary(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		accountID string
		want      summaryResponse
	}{
		{"1", summaryResponse{TotalDeposits: 2000, TotalWithdrawals: 275.50, TotalTransfers: 350, TransactionCount: 5}},
		{"2", summaryResponse{TotalDeposits: 12500, TransactionCount: 3}},
		{"3", summaryResponse{TotalDeposits: 1000, TotalWithdrawals: 109.75, TransactionCount: 2}},
	}

	for _, tc := range cases {
		t.Run("account "+tc.accountID, func(t *testing.T) {
			resp, payload := doJSON(t, http.MethodGet, srv.URL+"/accounts/"+tc.accountID+"/transactions/summary", nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", resp.StatusCode, payload)
			}

			var body summaryResponse
			decodeBody(t, payload, &body)
			if body != tc.want {
				t.Errorf("summary mismatch: got %+v want %+v", body, tc.want)
			}
		})
	}
}

func TestUnknownEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodGet, srv.URL+"/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var body struct {
		Error string `json:"error"`
		Path  string `json:"path"`
	}
	decodeBody(t, payload, &body)
	if body.Error != "Endpoint not found" || body.Path != "/nope" {
		t.Errorf("unexpected not-found envelope: %+v", body)
	}
}
