// Package errors provides the typed error taxonomy used across chainscan:
// wire-format corruption, missing UTXOs, filesystem failures and consumer
// cancellation. It mirrors the wrap-with-code style used throughout the
// Teranode codebase, trimmed of the gRPC status-detail plumbing this module
// has no use for.
package errors

import (
	"errors"
	"fmt"
)

// Error is the concrete error type returned by every chainscan package.
// It carries a code so callers can branch on failure category with Is,
// while still composing with the standard errors.Is/As/Unwrap machinery.
type Error struct {
	code       ERR
	message    string
	wrappedErr error
}

// New builds an Error with the given code and a fmt.Sprintf-style message.
// If the last element of params is itself an error, it becomes the wrapped
// cause and is excluded from the format arguments.
func New(code ERR, message string, params ...interface{}) *Error {
	var wrapped error

	if len(params) > 0 {
		if err, ok := params[len(params)-1].(error); ok {
			wrapped = err
			params = params[:len(params)-1]
		}
	}

	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}

	return &Error{code: code, message: message, wrappedErr: wrapped}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.wrappedErr == nil {
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}

	return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.wrappedErr)
}

// Is reports whether target carries the same error code, walking the
// wrapped-error chain when it doesn't match directly.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}

	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if e.code == t.code {
		return true
	}

	if wrapped, ok := e.wrappedErr.(*Error); ok {
		return wrapped.Is(target)
	}

	return false
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.wrappedErr
}

// Code returns the error's category.
func (e *Error) Code() ERR {
	if e == nil {
		return ERR_UNKNOWN
	}
	return e.code
}

// Is reports whether err (or any error it wraps) matches target's code.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a re-export of the standard library's errors.As, kept here so
// callers only need to import this package for chainscan-flavored errors.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
