package remote

import (
	"errors"
	"fmt"
)

// Kind classifies a remote call failure. Callers branch on it to
// decide whether an error is the user's fault (validation), a missing
// resource, or the transport misbehaving.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindTransport  Kind = "transport"
)

// ErrNotFound matches any *Error with KindNotFound via errors.Is.
var ErrNotFound = errors.New("remote: not found")

// Error is the typed failure surfaced by every client operation.
type Error struct {
	Kind    Kind
	Op      string // e.g. "create", "list"
	Status  int    // HTTP status, 0 for network failures
	Message string // backend-provided detail, if any
	Err     error  // underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("remote %s: %s (status %d): %s", e.Op, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("remote %s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) work without unwrapping.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// IsValidation reports whether err is a backend validation rejection.
func IsValidation(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindValidation
}

// IsTransport reports whether err is a network or server failure, as
// opposed to a request the backend understood and rejected.
func IsTransport(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindTransport
}
