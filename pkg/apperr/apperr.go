package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine-readable failure category. Callers branch on the kind,
// never on the reason text.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindState           Kind = "state"
	KindPermission      Kind = "permission"
	KindConflict        Kind = "conflict"
	KindContentRejected Kind = "content_rejected"
	KindDependency      Kind = "dependency"
)

type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Wrap keeps the underlying collaborator error reachable via errors.Unwrap
// while presenting a typed kind to callers.
func Wrap(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// KindOf returns the kind of err, or KindDependency for untyped errors since
// those are always unexpected collaborator failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindDependency
}

// Reason returns the human-readable reason of err.
func Reason(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return "something went wrong"
}

// HTTPStatus maps a failure kind to the wire status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindState, KindContentRejected:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindPermission:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
