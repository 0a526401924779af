// Package storeerr defines the error taxonomy shared by every surface
// (tool dispatcher, HTTP API, CLI): a small set of kinds, never stack traces.
package storeerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the purposes of envelope formatting and
// HTTP status mapping. It is a closed set by design.
type Kind string

const (
	InvalidInput Kind = "invalid_input"
	NotFound     Kind = "not_found"
	Conflict     Kind = "conflict"
	Forbidden    Kind = "forbidden"
	Timeout      Kind = "timeout"
	External     Kind = "external"
	Internal     Kind = "internal"
)

// Error is a domain error carrying a kind, a single human-readable sentence,
// and optional remediation suggestions. No stack traces are ever attached.
type Error struct {
	Kind        Kind
	Message     string
	Suggestions []string
	cause       error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a domain error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a domain error of the given kind that chains to cause via errors.Unwrap.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// WithSuggestions attaches remediation hints and returns the same error for chaining.
func (e *Error) WithSuggestions(s ...string) *Error {
	e.Suggestions = append(e.Suggestions, s...)
	return e
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error, defaulting
// to Internal for anything else — an unclassified error is never assumed safe.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return Internal
}

// IsNotFound is a convenience check used throughout handlers.
func IsNotFound(err error) bool { return KindOf(err) == NotFound }

// IsInvalidInput is a convenience check used throughout handlers.
func IsInvalidInput(err error) bool { return KindOf(err) == InvalidInput }
