// Package errors provides structured error types for simcheck.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and library callers
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - MISSING_* / NOT_FOUND: Resource not found
//   - SIMILARITY_EXCEEDED: A comparison failed its threshold
//   - *_RASTERIZATION, DECODE, ENCODE: Collaborator failures
//   - INTERNAL_*: Unexpected internal errors
//
// Typed errors defined in other packages (for example
// signature.SimilarityExceededError) carry extra fields and report their code
// through a Code method. [Is] and [GetCode] understand both forms.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid width: %d", w)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDecode, origErr, "decode %s", path)
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
	ErrCodeInvalidSampleSize Code = "INVALID_SAMPLE_SIZE"
	ErrCodeInvalidSignature  Code = "INVALID_SIGNATURE"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidPage       Code = "INVALID_PAGE"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"

	// Source errors
	ErrCodeEmptySourceList   Code = "EMPTY_SOURCE_LIST"
	ErrCodeUnsupportedSource Code = "UNSUPPORTED_SOURCE"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeMissingReference Code = "MISSING_REFERENCE"

	// Comparison errors
	ErrCodeSimilarityExceeded Code = "SIMILARITY_EXCEEDED"

	// Collaborator errors
	ErrCodeDecode              Code = "DECODE"
	ErrCodeEncode              Code = "ENCODE"
	ErrCodeVectorRasterization Code = "VECTOR_RASTERIZATION"
	ErrCodeDocumentRender      Code = "DOCUMENT_RENDER"
	ErrCodeToolMissing         Code = "TOOL_MISSING"

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

// Coder is implemented by typed errors that carry a code but need fields
// beyond [Error].
type Coder interface {
	error
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a [Coder] with a
// matching code. The outermost coded error wins.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code. For joined
// errors the first coded member wins.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case Coder:
			return e.Code()
		case interface{ Unwrap() []error }:
			for _, member := range e.Unwrap() {
				if code := GetCode(member); code != "" {
					return code
				}
			}
			return ""
		}
		err = errors.Unwrap(err)
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
