package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies application errors surfaced to users.
type ErrorKind string

const (
	KindWalletNotFound      ErrorKind = "WALLET_NOT_FOUND"
	KindTransactionRejected ErrorKind = "TRANSACTION_REJECTED"
	KindInsufficientBalance ErrorKind = "INSUFFICIENT_BALANCE"
	KindFundsTimelocked     ErrorKind = "FUNDS_TIMELOCKED"
	KindNetwork             ErrorKind = "NETWORK_ERROR"
	KindContract            ErrorKind = "CONTRACT_ERROR"
)

// HTTPStatus returns the HTTP status code used when an error of this kind reaches the API.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindWalletNotFound:
		return http.StatusNotFound
	case KindFundsTimelocked:
		return http.StatusConflict
	case KindInsufficientBalance, KindTransactionRejected:
		return http.StatusUnprocessableEntity
	case KindNetwork, KindContract:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError is a classified error carrying a human-readable message.
type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a classified error.
func NewAppError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// NewAppErrorWithDetails creates a classified error with extra detail text.
func NewAppErrorWithDetails(kind ErrorKind, message, details string) *AppError {
	return &AppError{Kind: kind, Message: message, Details: details}
}

// NewAppErrorWithCause creates a classified error wrapping cause.
func NewAppErrorWithCause(kind ErrorKind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

// NewNetworkError wraps cause as a NETWORK_ERROR.
func NewNetworkError(message string, cause error) *AppError {
	return NewAppErrorWithCause(KindNetwork, message, cause)
}

// NewContractError wraps cause as a CONTRACT_ERROR.
func NewContractError(message string, cause error) *AppError {
	return NewAppErrorWithCause(KindContract, message, cause)
}

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Classify returns err's AppError unchanged when it already carries one; any other error
// becomes a NETWORK_ERROR carrying the original message. Classify(nil) is nil.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return NewNetworkError(err.Error(), err)
}
