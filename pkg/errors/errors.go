// Package errors provides structured error types for easel.
//
// Every error that crosses a package boundary in easel carries a Code so the
// CLI, the HTTP API and the codec can tell a rejected share token from a
// storage outage without string matching.
//
// # Error Codes
//
//   - INVALID_*: input that was rejected and left prior state untouched
//   - UNSUPPORTED_*: well-formed input from a newer or unknown producer
//   - NOT_FOUND: a preset or persisted document does not exist
//   - STORAGE_ERROR: a backend (file, redis, mongo) failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidField, "unknown field %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidField) {
//	    // reject the transition
//	}
//
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidField    Code = "INVALID_FIELD"
	ErrCodeInvalidValue    Code = "INVALID_VALUE"
	ErrCodeInvalidToken    Code = "INVALID_TOKEN"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidPreset   Code = "INVALID_PRESET"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Version errors
	ErrCodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeStorage  Code = "STORAGE_ERROR"

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

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var e *Error
	for err != nil {
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

// GetCode extracts the outermost error code, or "" for foreign errors.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
