// Package apperrors holds the error taxonomy shared by the services and the HTTP layer.
package apperrors

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeValidation          Code = "VALIDATION"
	CodeDuplicateIdentity   Code = "DUPLICATE_IDENTITY"
	CodeInvalidCredentials  Code = "INVALID_CREDENTIALS"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeNotFoundOrForbidden Code = "NOT_FOUND_OR_FORBIDDEN"
	CodeRateLimited         Code = "RATE_LIMITED"
	CodeInternal            Code = "INTERNAL"
)

// HTTPStatus returns the response status for the code. Unknown codes map to 500.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeDuplicateIdentity, CodeInvalidCredentials:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFoundOrForbidden:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type. Message is safe to return to clients;
// Cause is only for logs.
type Error struct {
	Code    Code
	Message string
	Details []string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Body is the client-facing JSON body: {"error": msg}, plus "errors" for rule violations.
func (e *Error) Body() map[string]any {
	body := map[string]any{"error": e.Message}
	if len(e.Details) > 0 {
		body["errors"] = e.Details
	}
	return body
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an error with a code and a client-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Validation creates a VALIDATION error carrying one detail per violated rule.
func Validation(details []string) *Error {
	return &Error{Code: CodeValidation, Message: "Validation failed", Details: details}
}

// Wrap creates an error that keeps cause for logging.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Internal wraps an unexpected failure; its message never leaks the cause.
func Internal(cause error) *Error {
	return Wrap(CodeInternal, "internal server error", cause)
}

// Sentinels for errors.Is checks.
var (
	ErrValidation          = New(CodeValidation, "Validation failed")
	ErrDuplicateIdentity   = New(CodeDuplicateIdentity, "Username already exists")
	ErrInvalidCredentials  = New(CodeInvalidCredentials, "Invalid Credentials")
	ErrNoToken             = New(CodeUnauthorized, "Not authorized, no token")
	ErrTokenFailed         = New(CodeUnauthorized, "Not authorized, token failed")
	ErrNotFoundOrForbidden = New(CodeNotFoundOrForbidden, "Todo not found or user not authorized")
)

// From extracts an *Error from err. Anything else becomes INTERNAL.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
