// Package apperrors defines the failure kinds raised by the services.
// The HTTP layer maps each kind to a status code and a JSON error body.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind sentinels. Match with errors.Is.
var (
	ErrNotFound        = errors.New("not found.")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("Not Authorized")
	ErrForbidden       = errors.New("forbidden")
)

// Error is a classified failure with a message that is safe to show to clients.
type Error struct {
	kind error
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

// Is reports whether target is this error's kind sentinel.
func (e *Error) Is(target error) bool { return target == e.kind }

func (e *Error) Unwrap() error { return e.err }

// Message is the client-facing text (without the wrapped cause).
func (e *Error) Message() string { return e.msg }

func newError(kind error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing cart, cart item, catalog item, shop or order.
func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

// InvalidArgument reports a bad quantity, price or malformed payload.
func InvalidArgument(format string, args ...any) error {
	return newError(ErrInvalidArgument, format, args...)
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(format string, args ...any) error {
	return newError(ErrUnauthorized, format, args...)
}

// Forbidden reports a valid credential without the required role.
func Forbidden(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

// Wrap attaches a cause to a classified error, keeping its kind and message.
func Wrap(kind error, cause error, msg string) error {
	return &Error{kind: kind, msg: msg, err: cause}
}

// PublicMessage returns the client-facing message of a classified error,
// and false for anything unclassified.
func PublicMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.msg, true
	}
	return "", false
}

// Classify wraps err as kind when it matches sentinel. Any other error,
// including nil, is returned unchanged.
func Classify(err, sentinel, kind error, format string, args ...any) error {
	if err != nil && errors.Is(err, sentinel) {
		return Wrap(kind, err, fmt.Sprintf(format, args...))
	}
	return err
}

// NotFoundIf is Classify with the NotFound kind.
func NotFoundIf(err, sentinel error, format string, args ...any) error {
	return Classify(err, sentinel, ErrNotFound, format, args...)
}
