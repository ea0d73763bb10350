// Package apperr defines the typed failure vocabulary shared by all
// services. Every service operation either succeeds or returns exactly
// one *Error; handlers translate the kind into an HTTP status.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindNotFound: a referenced user/project/grant/relationship is absent.
	KindNotFound Kind = iota
	// KindInvalidArgument: malformed input such as a self-referential pair.
	KindInvalidArgument
	// KindValidation: a field constraint was violated (length, enum, size).
	KindValidation
	// KindForbidden: ownership/privacy/friendship gate failed.
	KindForbidden
	// KindConflict: the operation collides with existing state.
	KindConflict
	// KindInternal: unexpected storage or runtime failure.
	KindInternal
)

// Error is a structured application error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// HTTPStatus maps the error kind to a transport-level status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument, KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func InvalidArgument(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Internal(msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
