// Package errors provides error code definitions shared across the
// GreenSentinel client core.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies a class of failure that callers can branch on.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrConfig     ErrorCode = "CONFIG_ERROR"

	// Durable store errors
	ErrPersistence   ErrorCode = "PERSISTENCE_ERROR"
	ErrSerialization ErrorCode = "SERIALIZATION_ERROR"

	// Offline queue errors
	ErrUnknownOperation ErrorCode = "UNKNOWN_OPERATION"
	ErrRemoteExecution  ErrorCode = "REMOTE_EXECUTION_FAILED"
	ErrRemoteRejected   ErrorCode = "REMOTE_REJECTED"

	// Auth errors
	ErrAuthRequired ErrorCode = "AUTH_REQUIRED"
	ErrAuthFailed   ErrorCode = "AUTH_FAILED"

	// Photo pipeline errors
	ErrPhotoDecode      ErrorCode = "PHOTO_DECODE_FAILED"
	ErrPhotoUnsupported ErrorCode = "PHOTO_UNSUPPORTED_FORMAT"
)

// AppError is an error with a stable code and an optional wrapped cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	for e := err; e != nil; {
		if stderrors.As(e, &appErr) {
			if appErr.Code == code {
				return true
			}
			e = appErr.Err
			continue
		}
		break
	}
	return false
}

// CodeOf returns the code of the outermost AppError in the chain,
// or ErrInternal when err is not coded.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}
