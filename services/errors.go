package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorKind classifies a service failure.
type ErrorKind string

const (
	KindUnauthenticated          ErrorKind = "UNAUTHENTICATED"
	KindForbidden                ErrorKind = "FORBIDDEN"
	KindNotFound                 ErrorKind = "NOT_FOUND"
	KindValidation               ErrorKind = "VALIDATION_ERROR"
	KindConflictAlreadyResponded ErrorKind = "CONFLICT_ALREADY_RESPONDED"
	KindConflictAlreadyConverted ErrorKind = "CONFLICT_ALREADY_CONVERTED"
	KindConflictDuplicateInvoice ErrorKind = "CONFLICT_DUPLICATE_INVOICE"
	KindExpired                  ErrorKind = "EXPIRED"
	KindNoOpSameStatus           ErrorKind = "NO_OP_SAME_STATUS"
	KindInvalidState             ErrorKind = "INVALID_STATE"
	KindInternal                 ErrorKind = "INTERNAL"
)

// Error is the failure type returned by every workflow. Message is safe to show to
// clients for every kind except KindInternal.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrUnauthenticated  = &Error{Kind: KindUnauthenticated, Message: "authentication required"}
	ErrForbidden        = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "not found"}
	ErrValidation       = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrAlreadyResponded = &Error{Kind: KindConflictAlreadyResponded, Message: "already responded"}
	ErrAlreadyConverted = &Error{Kind: KindConflictAlreadyConverted, Message: "already converted"}
	ErrDuplicateInvoice = &Error{Kind: KindConflictDuplicateInvoice, Message: "invoice already exists"}
	ErrExpired          = &Error{Kind: KindExpired, Message: "expired"}
	ErrNoOpSameStatus   = &Error{Kind: KindNoOpSameStatus, Message: "status unchanged"}
	ErrInvalidState     = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrInternal         = &Error{Kind: KindInternal, Message: "internal error"}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Message: "invalid input", Fields: map[string]string{field: msg}}
}

func internalError(err error, msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// lookupError maps a failed point lookup to NotFound or Internal.
func lookupError(err error, what string) *Error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(KindNotFound, "%s not found", what)
	}
	return internalError(err, "failed to load "+what)
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
