// Package errors classifies failures that cross the service boundary, so
// HTTP handlers and CLI commands can map a cause to a sensible response
// without inspecting driver errors themselves.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode is the category a classified error belongs to.
type ErrorCode string

const (
	// ErrCodeNotFound marks a lookup that matched nothing.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict marks a write refused by a unique constraint, such as
	// a duplicate subscription or career page URL.
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation marks rejected input.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeForeignKey marks a write that references a missing row or
	// would orphan dependents.
	ErrCodeForeignKey ErrorCode = "foreign_key"
	// ErrCodeInternal marks everything the caller cannot act on.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout marks a deadline that expired mid-operation.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled marks an operation abandoned by its caller.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError is a classified error. It wraps its cause, so errors.Is and
// errors.As keep working through it.
type AppError struct {
	Code    ErrorCode
	Message string
	// Cause is the underlying error, when there is one.
	Cause error
	// Field names the offending input field for validation and conflict
	// errors, when it is known.
	Field string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// newf builds a classified error with a formatted message.
func newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return newf(ErrCodeNotFound, format, args...)
}

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) *AppError {
	return newf(ErrCodeValidation, format, args...)
}

// isCode reports whether err carries the given code anywhere in its chain.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsForeignKey reports whether err is a foreign key error.
func IsForeignKey(err error) bool { return isCode(err, ErrCodeForeignKey) }

// IsInternal reports whether err is an internal error.
func IsInternal(err error) bool { return isCode(err, ErrCodeInternal) }

// GetCode returns the code of the first AppError in the chain, or the empty
// string for unclassified errors.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the offending field of the first AppError in the chain,
// or the empty string when none was recorded.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
