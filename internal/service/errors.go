package service

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow failure so callers can tell them apart.
type Kind string

const (
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindExpired      Kind = "expired"
	KindInvalidCode  Kind = "invalid_code"
)

type Error struct {
	Kind    Kind
	Code    string
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

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func wrapError(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// KindOf returns the kind of a service error, or "" for anything else.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func errBadRequest(code, message string) *Error {
	return newError(KindBadRequest, code, message)
}

func errForbidden(code, message string) *Error {
	return newError(KindForbidden, code, message)
}

func errNotFound(what string) *Error {
	return newError(KindNotFound, what+"_not_found", what+" not found")
}

func errInvalidState(code, message string) *Error {
	return newError(KindInvalidState, code, message)
}

// NewError builds an Error outside the package, e.g. for malformed requests.
func NewError(kind Kind, code, message string) *Error {
	return newError(kind, code, message)
}
