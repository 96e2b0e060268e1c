package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrInternal
	ErrInvalidTransition
	ErrValidation
	ErrUpstream
	ErrStaleResponse
)

func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// NewValidation flags a user-correctable input problem, surfaced as a
// form-level message.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

// NewUpstream wraps a failed call to a collaborating service. Retryable by
// the caller; never swallowed here.
func NewUpstream(operation string, err error) *AppError {
	return &AppError{
		Code:    ErrUpstream,
		Message: fmt.Sprintf("upstream call failed: %s", operation),
		Err:     err,
	}
}

// ErrStale marks a fetch that resolved after its triggering selection
// changed. It is absorbed by the resolver and never surfaced to callers.
var ErrStale = &AppError{Code: ErrStaleResponse, Message: "stale response discarded"}

// IsValidation reports whether err is (or wraps) a validation error.
func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrValidation
}

// IsInvalidTransition reports whether err is (or wraps) an illegal
// state-machine transition.
func IsInvalidTransition(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrInvalidTransition
}

// IsNotFound reports whether err is (or wraps) a missing-resource error.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrNotFound
}
