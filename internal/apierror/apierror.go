package apierror

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an API or flow failure. Every kind is recoverable: the
// flow resolves to a clean no-op or a clean draft reset, never a crash.
type Kind string

const (
	KindNetwork             Kind = "network"
	KindSessionExpired      Kind = "session_expired"
	KindSeatsUnavailable    Kind = "seats_unavailable"
	KindHoldExpired         Kind = "hold_expired"
	KindBalanceInsufficient Kind = "balance_insufficient"
	KindRateLimited         Kind = "rate_limited"
	KindSeatFetch           Kind = "seat_fetch"
	KindDraftConflict       Kind = "draft_conflict"
	KindSeatUnselectable    Kind = "seat_unselectable"
	KindAPI                 Kind = "api"
)

// Error is the typed failure crossing the gateway/store boundary. RetryAfter
// is set only for rate-limited responses.
type Error struct {
	Kind       Kind
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a typed error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause so callers can still errors.Is/As through it.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// KindOf extracts the kind from err, or KindAPI when it is untyped.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindAPI
}
