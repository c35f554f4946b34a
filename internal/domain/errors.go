package domain

import (
	"errors"
	"strings"
)

// ErrorCode classifies API errors for HTTP status mapping and client handling.
type ErrorCode string

const (
	CodeBadRequest        ErrorCode = "BAD_REQUEST"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// ErrBalanceConflict signals that an account balance changed between the read
// and the compare-and-swap update of a posting. Callers re-read and retry.
var ErrBalanceConflict = errors.New("account balance changed concurrently")

// Error is the structured error surfaced to API clients. Message is safe to
// expose; the wrapped cause (if any) is for logs only.
type Error struct {
	Code    ErrorCode
	Message string
	Details []string
	cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Details, "; "))
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewValidationError reports one message per violated rule.
func NewValidationError(message string, details ...string) *Error {
	return &Error{Code: CodeBadRequest, Message: message, Details: details}
}

// NewNotFoundError reports an absent entity.
func NewNotFoundError(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

// NewInsufficientFundsError reports a debit exceeding the current balance.
func NewInsufficientFundsError() *Error {
	return &Error{Code: CodeInsufficientFunds, Message: "Insufficient funds for this transaction"}
}

// NewInternalError wraps a storage failure behind a generic client message.
func NewInternalError(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, cause: cause}
}

// AsError extracts a structured API error from an error chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
