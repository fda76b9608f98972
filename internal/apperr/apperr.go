// Package apperr defines the request-scoped error taxonomy shared by the
// account and offer services and maps it onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an Error.
type Kind string

const (
	// KindValidation marks missing or malformed user input.
	KindValidation Kind = "validation"
	// KindConflict marks a uniqueness violation such as a duplicate email.
	KindConflict Kind = "conflict"
	// KindAuth marks a missing or invalid token or bad credentials.
	KindAuth Kind = "auth"
	// KindNotFound marks a lookup by id that matched nothing.
	KindNotFound Kind = "not_found"
	// KindDependency marks a failed record-store or image-store call.
	KindDependency Kind = "dependency"
)

// Error is a classified, user-visible error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind and message, so
// sentinels like ErrUnauthorized match copies produced elsewhere.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

var (
	// ErrRequiredField is returned when a mandatory input is empty.
	ErrRequiredField = Validation("Required field")
	// ErrUnauthorized is shared by every credential and token failure so
	// callers cannot tell an unknown account from a wrong password.
	ErrUnauthorized = &Error{Kind: KindAuth, Message: "unauthorized"}
)

// Validation builds a KindValidation error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Conflict builds a KindConflict error.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NotFound builds a KindNotFound error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Dependency wraps a failure from an external store, keeping its message.
func Dependency(op string, err error) *Error {
	return &Error{Kind: KindDependency, Message: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when
// err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
