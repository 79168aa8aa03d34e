package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error so handlers can map it to an HTTP status
// and clients know whether a retry makes sense.
type Kind string

const (
	KindNotFound               Kind = "not_found"
	KindAuthorization          Kind = "authorization"
	KindSlotConflict           Kind = "slot_conflict"
	KindInvalidStateTransition Kind = "invalid_state_transition"
	KindValidation             Kind = "validation"
	KindTransient              Kind = "transient"
)

// Error carries a kind and a human-readable message across layers.
// Transient is the only kind a caller should automatically retry.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Authorization(message string) *Error {
	return New(KindAuthorization, message)
}

// SlotConflict returns the double-booking error. Clients rely on this
// exact message to prompt slot reselection.
func SlotConflict() *Error {
	return New(KindSlotConflict, "this time slot is already booked")
}

func InvalidStateTransition(message string) *Error {
	return New(KindInvalidStateTransition, message)
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Transient(message string, err error) *Error {
	return Wrap(KindTransient, message, err)
}

// KindOf returns the kind of err, or "" when err carries no kind.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
