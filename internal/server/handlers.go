package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mwielgos/bankdash/internal/domain"
	"github.com/mwielgos/bankdash/internal/service"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger       *slog.Logger
	accounts     *service.AccountService
	transactions *service.TransactionService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, accounts *service.AccountService, transactions *service.TransactionService) *APIHandlers {
	return &APIHandlers{
		logger:       logger,
		accounts:     accounts,
		transactions: transactions,
	}
}

func (h *APIHandlers) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		h.writeError(w, err, "failed to list accounts")
		return
	}

	resp := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		resp = append(resp, toAccountResponse(account))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) getAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	account, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "failed to fetch account")
		return
	}
	respondJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *APIHandlers) createAccount(w http.ResponseWriter, r *http.Request) {
	var payload createAccountRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, domain.NewValidationError(err.Error()), "malformed account payload")
		return
	}

	account, err := h.accounts.Create(r.Context(), service.CreateAccountInput{
		AccountNumber:  payload.AccountNumber,
		AccountType:    payload.AccountType,
		AccountHolder:  payload.AccountHolder,
		InitialBalance: payload.InitialBalance,
	})
	if err != nil {
		h.writeError(w, err, "failed to create account")
		return
	}

	respondJSON(w, http.StatusCreated, createAccountResponse{
		Message: "Account created successfully",
		Account: toAccountResponse(account),
	})
}

func (h *APIHandlers) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.accounts.Delete(r.Context(), id); err != nil {
		h.writeError(w, err, "failed to delete account")
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Account deleted successfully"})
}

func (h *APIHandlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	query := r.URL.Query()

	page, err := h.transactions.List(r.Context(), id, service.ListTransactionsParams{
		Page:      query.Get("page"),
		Limit:     query.Get("limit"),
		Type:      query.Get("type"),
		StartDate: query.Get("startDate"),
		EndDate:   query.Get("endDate"),
		MinAmount: query.Get("minAmount"),
		MaxAmount: query.Get("maxAmount"),
	})
	if err != nil {
		h.writeError(w, err, "failed to list transactions")
		return
	}

	data := make([]transactionResponse, 0, len(page.Items))
	for _, tx := range page.Items {
		data = append(data, toTransactionResponse(tx))
	}

	respondJSON(w, http.StatusOK, listTransactionsResponse{
		Data: data,
		Pagination: paginationResponse{
			Page:       page.Pagination.Page,
			Limit:      page.Pagination.Limit,
			Total:      page.Pagination.Total,
			TotalPages: page.Pagination.TotalPages,
			HasMore:    page.Pagination.HasMore,
		},
	})
}

func (h *APIHandlers) postTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload postTransactionRequest
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, domain.NewValidationError(err.Error()), "malformed transaction payload")
		return
	}

	result, err := h.transactions.Post(r.Context(), id, service.PostTransactionInput{
		Type:        payload.Type,
		Amount:      payload.Amount,
		Description: payload.Description,
	})
	if err != nil {
		h.writeError(w, err, "failed to post transaction")
		return
	}

	respondJSON(w, http.StatusCreated, postTransactionResponse{
		Message:     result.Message,
		Transaction: toTransactionResponse(result.Transaction),
		NewBalance:  result.NewBalance,
	})
}

func (h *APIHandlers) transactionSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	summary, err := h.transactions.Summary(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "failed to fetch transaction summary")
		return
	}

	respondJSON(w, http.StatusOK, summaryResponse{
		TotalDeposits:    summary.TotalDeposits,
		TotalWithdrawals: summary.TotalWithdrawals,
		TotalTransfers:   summary.TotalTransfers,
		TransactionCount: summary.TransactionCount,
	})
}

// --- Request & Response DTOs ---

type createAccountRequest struct {
	AccountNumber  string   `json:"accountNumber"`
	AccountType    string   `json:"accountType"`
	AccountHolder  string   `json:"accountHolder"`
	InitialBalance *float64 `json:"initialBalance"`
}

type postTransactionRequest struct {
	Type        string   `json:"type"`
	Amount      *float64 `json:"amount"`
	Description string   `json:"description"`
}

type accountResponse struct {
	ID            string  `json:"id"`
	AccountNumber string  `json:"accountNumber"`
	AccountType   string  `json:"accountType"`
	Balance       float64 `json:"balance"`
	AccountHolder string  `json:"accountHolder"`
	CreatedAt     string  `json:"createdAt"`
}

type createAccountResponse struct {
	Message string          `json:"message"`
	Account accountResponse `json:"account"`
}

type transactionResponse struct {
	ID          int64   `json:"id"`
	AccountID   string  `json:"accountId"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"createdAt"`
}

type paginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

type listTransactionsResponse struct {
	Data       []transactionResponse `json:"data"`
	Pagination paginationResponse    `json:"pagination"`
}

type postTransactionResponse struct {
	Message     string              `json:"message"`
	Transaction transactionResponse `json:"transaction"`
	NewBalance  float64             `json:"newBalance"`
}

type summaryResponse struct {
	TotalDeposits    float64 `json:"totalDeposits"`
	TotalWithdrawals float64 `json:"totalWithdrawals"`
	TotalTransfers   float64 `json:"totalTransfers"`
	TransactionCount int64   `json:"transactionCount"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

// --- Helpers ---

func toAccountResponse(a domain.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		AccountType:   string(a.AccountType),
		Balance:       a.Balance,
		AccountHolder: a.AccountHolder,
		CreatedAt:     formatTime(a.CreatedAt),
	}
}

func toTransactionResponse(t domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Description: t.Description,
		CreatedAt:   formatTime(t.CreatedAt),
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// writeError maps structured API errors onto HTTP responses; anything else is
// hidden behind a generic 500 so storage internals never leak.
func (h *APIHandlers) writeError(w http.ResponseWriter, err error, logMsg string) {
	if apiErr, ok := domain.AsError(err); ok {
		status := statusFromCode(apiErr.Code)
		if status >= http.StatusInternalServerError {
			h.logger.Error(logMsg, "error", err)
		}
		respondJSON(w, status, errorResponse{
			Error:   apiErr.Message,
			Code:    string(apiErr.Code),
			Details: apiErr.Details,
		})
		return
	}

	h.logger.Error(logMsg, "error", err)
	respondJSON(w, http.StatusInternalServerError, errorResponse{
		Error: "An unexpected error occurred",
		Code:  string(domain.CodeInternal),
	})
}

func statusFromCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeBadRequest, domain.CodeInsufficientFunds:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
