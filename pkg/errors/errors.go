// Package errors provides structured error types for mindtree.
//
// Every failure reported by the tree, the layout engine, the codecs and the
// storage backends carries a [Code]. Callers branch on codes rather than on
// message text:
//
//	_, err := m.AddNode("root", "a", "Alpha", nil, nil)
//	if errors.Is(err, errors.ErrCodeDuplicateID) {
//	    // pick another id
//	}
//
// # Error Codes
//
// Codes fall into three groups:
//   - Structural integrity: DUPLICATE_ID, PARENT_NOT_FOUND, NODE_NOT_FOUND,
//     ROOT_ALREADY_EXISTS, CANNOT_REMOVE_ROOT, INVALID_MOVE
//   - Editing policy: FORBIDDEN_ADD, OVER_DEPTH, NOT_EDITABLE
//   - Input and infrastructure: INVALID_*, NOT_FOUND, INTERNAL_ERROR
//
// Integrity errors are always returned before any mutation happens. Policy
// errors are expected in interactive use and are safe to show to end users
// via [UserMessage].
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Tree integrity errors
	ErrCodeDuplicateID        Code = "DUPLICATE_ID"
	ErrCodeParentNotFound     Code = "PARENT_NOT_FOUND"
	ErrCodeNodeNotFound       Code = "NODE_NOT_FOUND"
	ErrCodeRootAlreadyExists  Code = "ROOT_ALREADY_EXISTS"
	ErrCodeCannotRemoveRoot   Code = "CANNOT_REMOVE_ROOT"
	ErrCodeCannotInsertAtRoot Code = "CANNOT_INSERT_AT_ROOT"
	ErrCodeInvalidMove        Code = "INVALID_MOVE"

	// Editing policy errors
	ErrCodeForbiddenAdd Code = "FORBIDDEN_ADD"
	ErrCodeOverDepth    Code = "OVER_DEPTH"
	ErrCodeNotEditable  Code = "NOT_EDITABLE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded failure. Cause, when set, is the lower-level error that
// triggered it.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a printf-style message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is [New] with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// outermost returns the first *Error in err's chain.
func outermost(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code. A
// PARENT_NOT_FOUND wrapping a NODE_NOT_FOUND matches only the former.
func Is(err error, code Code) bool {
	e, ok := outermost(err)
	return ok && e.Code == code
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := outermost(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without code or cause, falling back to
// err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e, ok := outermost(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsPolicy reports whether err is an editing policy violation
// (FORBIDDEN_ADD, OVER_DEPTH or NOT_EDITABLE) rather than a programming error.
func IsPolicy(err error) bool {
	switch GetCode(err) {
	case ErrCodeForbiddenAdd, ErrCodeOverDepth, ErrCodeNotEditable:
		return true
	}
	return false
}
