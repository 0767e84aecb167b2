package apperror

import (
	"errors"
	"net/http"
)

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the status code carried by err, or 0 if err is not an AppError.
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

// IsNotFound reports whether err refers to a missing entity.
func IsNotFound(err error) bool {
	return CodeOf(err) == http.StatusNotFound
}

// IsInvalidRequest reports whether err must be fixed by the caller before retrying.
func IsInvalidRequest(err error) bool {
	return CodeOf(err) == http.StatusBadRequest
}

// IsRetryable reports whether the whole operation may be retried unchanged.
func IsRetryable(err error) bool {
	return CodeOf(err) == http.StatusServiceUnavailable
}
