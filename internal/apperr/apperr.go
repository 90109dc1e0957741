// Package apperr defines the failure categories surfaced by the marketplace services.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for reporting at the HTTP boundary.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindStorage        Kind = "storage"
)

// Error pairs a stable public message with the underlying cause.
type Error struct {
	kind    Kind
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Kind reports the failure category.
func (e *Error) Kind() Kind {
	return e.kind
}

// Message returns the client-safe description without the cause.
func (e *Error) Message() string {
	return e.message
}

// Detail returns the cause text, or an empty string when there is none.
func (e *Error) Detail() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func Authentication(message string, cause error) error {
	return &Error{kind: KindAuthentication, message: message, err: cause}
}

func Validation(message string) error {
	return &Error{kind: KindValidation, message: message}
}

func NotFound(message string) error {
	return &Error{kind: KindNotFound, message: message}
}

// Storage wraps a persistence failure. The public message is always "server error".
func Storage(cause error) error {
	return &Error{kind: KindStorage, message: "server error", err: cause}
}

// As extracts the first *Error in the chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf returns the category of err, treating unclassified errors as storage failures.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.kind
	}
	return KindStorage
}
