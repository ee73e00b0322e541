// Package errors provides coded error types shared by the wbsgen packages,
// CLI and HTTP API.
//
// Every error that crosses a package boundary carries a [Code] so callers can
// branch on the failure class without string matching:
//   - MALFORMED_CODE: an outline code that cannot be converted to integers
//   - CONFIG_OUT_OF_RANGE: a layout configuration rejected before layout runs
//   - ORPHAN_NODE, DUPLICATE_CODE: tree construction under the strict policy
//   - INVALID_*, UNSUPPORTED_FORMAT: bad user input
//   - NOT_FOUND, FILE_NOT_FOUND: missing resources
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedCode, "code %q: empty segment", code)
//	if errors.Is(err, errors.ErrCodeMalformedCode) {
//	    // report the offending line
//	}
//
//	err := errors.Wrap(errors.ErrCodeInvalidInput, cause, "read %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle      Code = "INVALID_STYLE"
	ErrCodeInvalidVizType    Code = "INVALID_VIZ_TYPE"
	ErrCodeInvalidName       Code = "INVALID_NAME"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// Outline and layout errors
	ErrCodeMalformedCode    Code = "MALFORMED_CODE"
	ErrCodeOrphanNode       Code = "ORPHAN_NODE"
	ErrCodeDuplicateCode    Code = "DUPLICATE_CODE"
	ErrCodeConfigOutOfRange Code = "CONFIG_OUT_OF_RANGE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
	ErrCodeTimeout  Code = "TIMEOUT"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

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
// Only the outermost *Error in the chain is consulted, so a wrapped
// MALFORMED_CODE inside an INVALID_INPUT reports INVALID_INPUT.
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

// UserMessage returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsUserError reports whether err was caused by the caller's input rather
// than by the environment. The HTTP API maps these to 4xx responses and the
// CLI prints them without a stack of wrapped causes.
func IsUserError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidStyle,
		ErrCodeInvalidVizType, ErrCodeInvalidName, ErrCodeUnsupportedFormat,
		ErrCodeMalformedCode, ErrCodeOrphanNode, ErrCodeDuplicateCode,
		ErrCodeConfigOutOfRange:
		return true
	}
	return false
}
