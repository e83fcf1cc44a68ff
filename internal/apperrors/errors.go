package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every failure a service can return. Handlers map
// kinds to HTTP statuses; no failure is fatal to the process.
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindAuthorization Kind = "authorization_error"
	KindState         Kind = "state_error"
	KindCapacity      Kind = "capacity_error"
	KindGate          Kind = "gate_error"
	KindTimeout       Kind = "timeout_error"
	KindDuplicate     Kind = "duplicate_error"
	KindNotFound      Kind = "not_found"
	KindInternal      Kind = "internal_error"
)

// Sentinel errors for errors.Is checks in tests and callers.
var (
	ErrValidation    = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrAuthorization = &Error{Kind: KindAuthorization, Message: "actor lacks rights over the target entity"}
	ErrState         = &Error{Kind: KindState, Message: "operation invalid for current entity state"}
	ErrCapacity      = &Error{Kind: KindCapacity, Message: "no seats remain"}
	ErrGate          = &Error{Kind: KindGate, Message: "subscription is not active"}
	ErrTimeout       = &Error{Kind: KindTimeout, Message: "operation timed out, outcome indeterminate"}
	ErrDuplicate     = &Error{Kind: KindDuplicate, Message: "resource already exists"}
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "resource not found"}
)

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

// Is matches any error of the same kind, so
// errors.Is(err, apperrors.ErrCapacity) works regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func State(format string, args ...interface{}) *Error {
	return &Error{Kind: KindState, Message: fmt.Sprintf(format, args...)}
}

func Capacity(format string, args ...interface{}) *Error {
	return &Error{Kind: KindCapacity, Message: fmt.Sprintf(format, args...)}
}

func Gate(format string, args ...interface{}) *Error {
	return &Error{Kind: KindGate, Message: fmt.Sprintf(format, args...)}
}

func Timeout(format string, args ...interface{}) *Error {
	return &Error{Kind: KindTimeout, Message: fmt.Sprintf(format, args...)}
}

func Duplicate(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf extracts the kind from any error in the chain, defaulting to
// KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind to the response status used by the
// handlers layer.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindState, KindDuplicate, KindCapacity:
		return http.StatusConflict
	case KindGate:
		return http.StatusPaymentRequired
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
