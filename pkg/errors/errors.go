// Package errors provides structured error types for phart.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes fall into three families:
//   - INVALID_*: configuration rejected at Options construction
//   - NODE_NOT_IN_LAYOUT: an edge references a node the layout never placed
//   - CANVAS_OUT_OF_BOUNDS: a draw would escape the allocated canvas
//
// The last two are invariant violations: correct partitioning, layering, and
// canvas sizing make them unreachable, so they are surfaced fatally and never
// retried or recovered.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSpacing, "node spacing %d < 1", n)
//	if errors.Is(err, errors.ErrCodeInvalidSpacing) {
//	    // Handle validation error
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors, raised at Options construction.
	ErrCodeInvalidSpacing    Code = "INVALID_SPACING"
	ErrCodeInvalidStyle      Code = "INVALID_STYLE"
	ErrCodeInvalidDecorators Code = "INVALID_DECORATORS"
	ErrCodeInvalidPadding    Code = "INVALID_PADDING"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"

	// Graph reference errors: an edge endpoint is missing from the
	// computed position map.
	ErrCodeNodeNotInLayout Code = "NODE_NOT_IN_LAYOUT"

	// Geometry invariant errors: a write landed outside the canvas.
	ErrCodeCanvasOutOfBounds Code = "CANVAS_OUT_OF_BOUNDS"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
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
