// Package apperr classifies domain errors so transports can map them to
// status codes without knowing every sentinel.
package apperr

import (
	"errors"
	"net/http"
)

// Kind enumerates the error classes surfaced to API callers.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuth
	KindConflict
	KindForbidden
	KindRateLimited
)

// Error is a classified error with a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// New returns a classified error of kind.
func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

// Validation returns a sentinel for malformed or out-of-range input.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// NotFound returns a sentinel for missing users, vendors, wallets or data.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Auth returns a sentinel for bad credentials or tokens.
func Auth(msg string) *Error { return &Error{Kind: KindAuth, Message: msg} }

// Conflict returns a sentinel for duplicate records.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// Forbidden returns a sentinel for authenticated callers acting on foreign resources.
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// KindOf reports the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps err to an HTTP status code. Conflicts are reported as 400.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-safe message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
