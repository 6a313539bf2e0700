package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError reports that no response was received from a service.
// It is safe for the caller to retry; the gateway never does so itself.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Retryable reports that the request may be issued again by the caller.
func (e *TransportError) Retryable() bool { return true }

// StatusError is a non-success response other than an authorization failure.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded %d %s", e.Service, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUpstream:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// AuthError is a terminal authorization failure. The session has been reset
// and the request must not be retried.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrAuthTerminal, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrAuthTerminal, e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool { return target == ErrAuthTerminal }

// ValidationError is raised before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidation builds a ValidationError for field.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// SettlementRaceError is returned when a payment was accepted but the order
// has not been observed as PAID yet. Callers should re-poll.
type SettlementRaceError struct {
	OrderID  string
	Observed string
}

func (e *SettlementRaceError) Error() string {
	return fmt.Sprintf("order %s: %s (status %s)", e.OrderID, ErrSettlementRace, e.Observed)
}

func (e *SettlementRaceError) Is(target error) bool { return target == ErrSettlementRace }

// Kind is a coarse classification used in outcome reports and HTTP mapping.
type Kind string

const (
	KindNone         Kind = ""
	KindTransport    Kind = "transport"
	KindAuthTerminal Kind = "auth_terminal"
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindRejected     Kind = "rejected"
	KindUnknown      Kind = "unknown"
)

// Classify maps err onto the taxonomy.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAuthTerminal):
		return KindAuthTerminal
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotPayable), errors.Is(err, ErrSubOrderNotDeletable):
		return KindConflict
	case errors.Is(err, ErrUpstream):
		return KindRejected
	}
	return KindUnknown
}
