// Package outcome defines the error kinds returned by the registration core
// and the uniform result object the HTTP layer renders from them.
//
// Every core operation returns either nil or an *Error. Store errors are
// wrapped at the operation boundary so callers never need to inspect driver
// errors, and the wrapped cause stays reachable through errors.Unwrap for
// logging.
package outcome

import (
	"errors"
	"net/http"
)

// Kind classifies a failed core operation.
type Kind string

const (
	KindFetch      Kind = "fetch_error"
	KindWrite      Kind = "write_error"
	KindValidation Kind = "validation_error"
	KindNotFound   Kind = "not_found"
)

// Error is a classified failure with a message suitable for display.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, outcome.ErrNotFound)
// works for any not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is checks.
var (
	ErrFetch      = &Error{Kind: KindFetch}
	ErrWrite      = &Error{Kind: KindWrite}
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
)

// Fetch wraps a failed store read.
func Fetch(msg string, err error) *Error {
	return &Error{Kind: KindFetch, Message: msg, Err: err}
}

// Write wraps a failed store write.
func Write(msg string, err error) *Error {
	return &Error{Kind: KindWrite, Message: msg, Err: err}
}

// Validation reports a caller input that violates a precondition.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound reports a reference to a group (or other record) that does not exist.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// KindOf returns the kind of err, or "" when err is nil or unclassified.
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ""
}

// Message returns the display message for err. Unclassified errors get a
// generic message so driver details never reach the client.
func Message(err error) string {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Message
	}
	if err == nil {
		return ""
	}
	return "Unexpected error"
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Result is the success/failure object returned to clients.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
	Warning string `json:"warning,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK builds a successful result.
func OK(msg string, data any) Result {
	return Result{Success: true, Message: msg, Data: data}
}

// Failed builds a failure result from err.
func Failed(err error) Result {
	return Result{Success: false, Message: Message(err), Kind: KindOf(err)}
}
