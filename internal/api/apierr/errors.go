package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeAccountExists      = "ACCOUNT_EXISTS"
	CodePinInUse           = "PIN_IN_USE"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeInvalidTransfer    = "INVALID_TRANSFER"
	CodeTransferFailed     = "TRANSFER_FAILED"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrAccountNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeAccountNotFound, "Account not found"}}
	case errors.Is(err, model.ErrAccountExists):
		return &httpError{http.StatusConflict, APIError{CodeAccountExists, "Account already exists"}}
	case errors.Is(err, model.ErrPinInUse):
		return &httpError{http.StatusConflict, APIError{CodePinInUse, "PIN is already in use"}}
	case errors.Is(err, model.ErrInsufficientFunds):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInsufficientFunds, "Insufficient funds"}}
	case errors.Is(err, model.ErrInvalidTransfer):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidTransfer, "Invalid transfer"}}
	case errors.Is(err, model.ErrTransferFailed):
		return &httpError{http.StatusConflict, APIError{CodeTransferFailed, "Transfer conflicted, try again"}}
	case errors.Is(err, model.ErrInvalidUsername), errors.Is(err, model.ErrInvalidPIN), errors.Is(err, model.ErrInvalidAmount):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case errors.Is(err, model.ErrPinNotFound):
		// Never reveal whether a PIN exists
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or PIN"}}
	case errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Storage temporarily unavailable"}}
	case errors.Is(err, model.ErrConflict):
		return &httpError{http.StatusConflict, APIError{CodeTransferFailed, "Concurrent modification, try again"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or PIN"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
