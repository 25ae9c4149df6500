package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried on AppError. Handlers and tests branch on these, never
// on message strings.
const (
	CodeInternal        = "INTERNAL_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeBadRequest      = "BAD_REQUEST"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeOverloaded      = "OVERLOADED"
)

// AppError is an error with a stable code and the HTTP status it maps to
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	StatusCode int               `json:"-"`
	Err        error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a field-level detail
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithError attaches the underlying cause
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// New creates an AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

func newWithDefault(code, message, fallback string, statusCode int) *AppError {
	if message == "" {
		message = fallback
	}
	return New(code, message, statusCode)
}

// Internal creates a 500 error
func Internal(message string) *AppError {
	return New(CodeInternal, message, http.StatusInternalServerError)
}

// NotFound creates a 404 error for the named resource
func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found", http.StatusNotFound)
}

// Validation creates a 400 validation error
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// BadRequest creates a 400 error
func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message, http.StatusBadRequest)
}

// Unauthorized creates a 401 error
func Unauthorized(message string) *AppError {
	return newWithDefault(CodeUnauthorized, message, "unauthorized", http.StatusUnauthorized)
}

// Forbidden creates a 403 error
func Forbidden(message string) *AppError {
	return newWithDefault(CodeForbidden, message, "forbidden", http.StatusForbidden)
}

// Conflict creates a 409 error
func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

// RateLimited creates a 429 error
func RateLimited() *AppError {
	return New(CodeRateLimited, "rate limit exceeded", http.StatusTooManyRequests)
}

// PayloadTooLarge creates a 413 error
func PayloadTooLarge(message string) *AppError {
	return newWithDefault(CodePayloadTooLarge, message, "request payload too large", http.StatusRequestEntityTooLarge)
}

// Overloaded creates a 503 error
func Overloaded(message string) *AppError {
	return newWithDefault(CodeOverloaded, message, "server temporarily overloaded", http.StatusServiceUnavailable)
}

// GetAppError extracts the AppError from an error chain, or nil
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsAppError reports whether the error chain contains an AppError
func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// GetStatusCode returns the HTTP status for an error, defaulting to 500
func GetStatusCode(err error) int {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func hasCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// IsNotFound reports whether the error is a not found error
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsValidation reports whether the error is a validation error
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsUnauthorized reports whether the error is an unauthorized error
func IsUnauthorized(err error) bool { return hasCode(err, CodeUnauthorized) }

// IsForbidden reports whether the error is a forbidden error
func IsForbidden(err error) bool { return hasCode(err, CodeForbidden) }

// IsConflict reports whether the error is a conflict error
func IsConflict(err error) bool { return hasCode(err, CodeConflict) }

// IsRateLimited reports whether the error is a rate limited error
func IsRateLimited(err error) bool { return hasCode(err, CodeRateLimited) }

// IsOverloaded reports whether the error is an overloaded error
func IsOverloaded(err error) bool { return hasCode(err, CodeOverloaded) }
