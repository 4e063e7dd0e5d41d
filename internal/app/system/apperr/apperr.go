// Package apperr defines the client-facing error taxonomy shared by the
// services and the HTTP layer.
//
// Every failure a service action can report is one of these kinds. Handlers
// translate them into a status code and a JSON body:
//   - Unauthenticated → 401 {"error": msg}
//   - NotFound        → 404 {"error": msg}
//   - Forbidden       → 403 {"error": msg}
//   - Invalid         → 422 {"error": msg}
//   - Validation      → 422 {"errors": [full messages]}
//   - Conflict        → 409 {"error": msg}
//   - RateLimited     → 429 {"error": msg}
//
// Anything that is not an *Error is treated as an internal failure.
package apperr

import (
	"errors"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/inputval"
)

// Kind classifies an Error.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindNotFound
	KindForbidden
	KindInvalid
	KindValidation
	KindConflict
	KindRateLimited
)

// Error is a classified, client-visible failure. Message is the exact text
// rendered to the caller; Fields is set only for KindValidation.
type Error struct {
	Kind    Kind
	Message string
	Fields  inputval.Errors
}

func (e *Error) Error() string {
	if e.Kind == KindValidation && len(e.Fields) > 0 {
		return e.Fields.Error()
	}
	return e.Message
}

// Status returns the HTTP status equivalent of the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalid, KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Unauthenticated(msg string) *Error { return &Error{Kind: KindUnauthenticated, Message: msg} }
func NotFound(msg string) *Error        { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) *Error       { return &Error{Kind: KindForbidden, Message: msg} }
func Invalid(msg string) *Error         { return &Error{Kind: KindInvalid, Message: msg} }
func Conflict(msg string) *Error        { return &Error{Kind: KindConflict, Message: msg} }
func RateLimited(msg string) *Error     { return &Error{Kind: KindRateLimited, Message: msg} }

// Validation wraps a non-empty set of field errors.
func Validation(fields inputval.Errors) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// As extracts an *Error from err. The second return is false for nil and for
// errors that carry no classification (internal failures).
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
