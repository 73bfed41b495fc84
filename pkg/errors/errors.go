// Package errors provides structured error types for the blokdust engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, the CLI and the storage server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// Packages keep their own sentinel errors (pool.ErrPoolExhausted,
// history.ErrNothingToUndo, ...) and wrap them with a [Code], so callers can
// match either the sentinel with the standard errors.Is or the category with
// [Is].
//
// # Error Codes
//
// Codes group failures by what the caller can do about them:
//   - UNKNOWN_COMMAND, RESOURCE_NOT_FOUND: dispatch and lookup failures
//   - NOTHING_TO_UNDO, NOTHING_TO_REDO: inert history failures
//   - COMPOSITION_NOT_FOUND, TRANSPORT_FAILURE: storage failures
//   - SERIALIZATION_FORMAT: malformed save files
//   - INVALID_*, INTERNAL_ERROR: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid block kind: %s", kind)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeTransport, origErr, "save composition %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Dispatch errors
	ErrCodeUnknownCommand   Code = "UNKNOWN_COMMAND"
	ErrCodeResourceNotFound Code = "RESOURCE_NOT_FOUND"
	ErrCodeDuplicate        Code = "DUPLICATE_RESOURCE"

	// Pool errors
	ErrCodePoolExhausted Code = "POOL_EXHAUSTED"

	// History errors
	ErrCodeNothingToUndo Code = "NOTHING_TO_UNDO"
	ErrCodeNothingToRedo Code = "NOTHING_TO_REDO"

	// Storage errors
	ErrCodeCompositionNotFound Code = "COMPOSITION_NOT_FOUND"
	ErrCodeTransport           Code = "TRANSPORT_FAILURE"

	// Serialization errors
	ErrCodeFormat Code = "SERIALIZATION_FORMAT"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidID    Code = "INVALID_ID"
	ErrCodeInvalidKind  Code = "INVALID_KIND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code,
// so an outer wrapper with a different code does not hide an inner one.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Inert reports whether err is a failure that leaves state untouched and
// needs no more than a warning, such as undoing with an empty history.
func Inert(err error) bool {
	return Is(err, ErrCodeNothingToUndo) || Is(err, ErrCodeNothingToRedo)
}
