package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Webhook authentication (SEC) ----

func ErrInvalidSignature() *AppError {
	return New("SEC_002", "Invalid signature", http.StatusUnauthorized)
}

// ---- Malformed events (EVT) ----

func ErrBadJSON(err error) *AppError {
	return Wrap("EVT_001", "Bad JSON", http.StatusBadRequest, err)
}

func ErrPayloadTooLarge() *AppError {
	return New("EVT_004", "Payload too large", http.StatusRequestEntityTooLarge)
}

func ErrMissingInternalOrderID() *AppError {
	return New("EVT_002", "Missing internal_order_id", http.StatusBadRequest)
}

func ErrInvalidInternalOrderID() *AppError {
	return New("EVT_003", "Invalid internal_order_id", http.StatusBadRequest)
}

// ---- Order confirmation (NTF) ----

// ErrConfirmationFailed covers lookup, render and send failures on the
// captured-confirmation path. The client only sees a generic "error".
func ErrConfirmationFailed(err error) *AppError {
	return Wrap("NTF_001", "error", http.StatusInternalServerError, err)
}

func ErrNotFound(entity string) *AppError {
	return New("NTF_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Admin authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a 400 validation error with the given message.
func Validation(message string) *AppError {
	return New("EVT_000", message, http.StatusBadRequest)
}
