// Package apperr holds the error taxonomy shared by the domain packages, the
// HTTP layer and the client adapters.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError is returned for bad input. It never reaches the network on
// the client side.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid builds a ValidationError.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// NotFound wraps ErrNotFound with the entity that was missing.
func NotFound(what string) error {
	return &statusError{kind: ErrNotFound, msg: what + " not found"}
}

// Conflict wraps ErrConflict with a human readable message.
func Conflict(format string, args ...any) error {
	return &statusError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

// Forbidden wraps ErrForbidden with a human readable message.
func Forbidden(format string, args ...any) error {
	return &statusError{kind: ErrForbidden, msg: fmt.Sprintf(format, args...)}
}

// Expired wraps ErrExpired with a human readable message.
func Expired(format string, args ...any) error {
	return &statusError{kind: ErrExpired, msg: fmt.Sprintf(format, args...)}
}

// statusError keeps the message free of the sentinel prefix while still
// matching it through errors.Is.
type statusError struct {
	kind error
	msg  string
}

func (e *statusError) Error() string { return e.msg }

func (e *statusError) Unwrap() error { return e.kind }
