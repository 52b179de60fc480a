package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents an application error carrying an HTTP status code.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound returns a 404 error for a missing resource.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message, nil)
}

// Forbidden returns a 403 error for an ownership or permission failure.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message, nil)
}

// BadRequest returns a 400 error.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message, nil)
}

// Checkout workflow error types. OutOfStock deliberately does not name the
// product that sold out.
var (
	ErrOutOfStock       = New(http.StatusBadRequest, "One of the products is out of stock", nil)
	ErrInvalidSignature = New(http.StatusBadRequest, "Invalid webhook signature", nil)
	ErrUnauthorized     = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrInternalServer   = New(http.StatusInternalServerError, "Internal server error", nil)
)

// GatewayError wraps a payment gateway failure.
func GatewayError(err error) *Error {
	return New(http.StatusBadGateway, "Payment gateway error", err)
}

// StatusOf extracts the HTTP status carried by err, defaulting to 500.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user-facing message for err. Unknown errors are
// masked so internal details never reach the response body.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ErrInternalServer.Message
}
