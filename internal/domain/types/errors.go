package types

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("remote invocation failed")
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("invalid input")
	// ErrNotFoundSelection means a chosen label maps to no known entity,
	// usually a stale selection. Callers treat it as nothing selected.
	ErrNotFoundSelection = errors.New("selection does not match any known entity")
	// ErrNothingSelected means the user aborted the selector.
	ErrNothingSelected = errors.New("nothing selected")

	ErrMissingField = errors.New("missing field")
	ErrFieldType    = errors.New("unexpected field type")
)

// TransportError is a remote call that did not succeed. Diagnostic holds the
// platform's own message.
type TransportError struct {
	Endpoint   Endpoint
	Diagnostic string
	Err        error
}

func (e *TransportError) Error() string {
	msg := e.Diagnostic
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, msg)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports ErrTransport as a match.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ValidationError rejects user input before any remote call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is reports ErrValidation as a match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NoSelection reports whether err means the user ended up choosing nothing.
func NoSelection(err error) bool {
	return errors.Is(err, ErrNothingSelected) || errors.Is(err, ErrNotFoundSelection)
}
