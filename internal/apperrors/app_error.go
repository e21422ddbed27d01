package apperrors

import (
	"errors"
	"fmt"
)

// AppError carries an HTTP-ish status code alongside a message and the
// underlying cause. Repositories wrap driver errors with it; handlers use the
// code when no sentinel matches.
type AppError struct {
	Code int
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping cause.
func NewAppError(code int, msg string, cause error) *AppError {
	return &AppError{Code: code, Msg: msg, Err: cause}
}

// NewNotFoundError creates an AppError that also matches ErrNotFound.
func NewNotFoundError(msg string) *AppError {
	return &AppError{Code: 404, Msg: msg, Err: ErrNotFound}
}

// CodeOf extracts the status code from err if it is an AppError, 0 otherwise.
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}
