// Package fault defines the stable error taxonomy surfaced by the core.
//
// Every failure that crosses a component boundary is an *Error carrying a
// machine-readable Code. Callers branch on codes, never on message text,
// so messages can change freely without breaking the UI layer.
package fault

import (
	"errors"
	"fmt"
)

// Code categorizes a failure.
type Code string

const (
	// CodeNotFound indicates the referenced atom does not exist (or is
	// soft-deleted on a default-visibility path).
	CodeNotFound Code = "NOT_FOUND"

	// CodeValidation indicates a local precondition failure. Never retried.
	CodeValidation Code = "VALIDATION"

	// CodeDB indicates a transient storage failure. The save coordinator
	// may retry these; nothing below it does.
	CodeDB Code = "DB_ERROR"

	// CodeSchemaMismatch indicates the database schema does not match what
	// this binary supports. Fatal at open time.
	CodeSchemaMismatch Code = "SCHEMA_MISMATCH"
)

// Error is a structured failure with a stable code.
type Error struct {
	// Code identifies the failure category.
	Code Code

	// Message is a human-readable description.
	Message string

	// AtomID identifies the affected atom, when one is involved.
	AtomID string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.AtomID != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s (atom=%s): %v", e.Code, e.Message, e.AtomID, e.Err)
	case e.AtomID != "":
		return fmt.Sprintf("%s: %s (atom=%s)", e.Code, e.Message, e.AtomID)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a NOT_FOUND error for the given atom id.
func NotFound(atomID string) *Error {
	return &Error{Code: CodeNotFound, Message: "atom not found", AtomID: atomID}
}

// Validation creates a VALIDATION error with a formatted message.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// DB wraps a storage failure as a DB_ERROR.
func DB(message string, err error) *Error {
	return &Error{Code: CodeDB, Message: message, Err: err}
}

// SchemaMismatch creates a SCHEMA_MISMATCH error with a formatted message.
func SchemaMismatch(format string, args ...any) *Error {
	return &Error{Code: CodeSchemaMismatch, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code from an error chain.
// Returns CodeDB for errors that carry no explicit code: an unclassified
// failure at this layer is by definition a storage-path failure.
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return CodeDB
}

// IsNotFound reports whether the error chain carries NOT_FOUND.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsValidation reports whether the error chain carries VALIDATION.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsDB reports whether the error chain carries DB_ERROR.
func IsDB(err error) bool {
	return hasCode(err, CodeDB)
}

// IsSchemaMismatch reports whether the error chain carries SCHEMA_MISMATCH.
func IsSchemaMismatch(err error) bool {
	return hasCode(err, CodeSchemaMismatch)
}

func hasCode(err error, code Code) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}
