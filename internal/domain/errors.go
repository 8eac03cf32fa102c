// Package domain holds the canonical types shared by ingestion, processors, and workers.
package domain

import (
	"fmt"
	"net/http"
)

// ErrorKind categorizes an ingestion-time or worker-time failure.
type ErrorKind string

const (
	ErrorKindBadRequest      ErrorKind = "bad_request"
	ErrorKindAuthentication  ErrorKind = "authentication"
	ErrorKindResourceMissing ErrorKind = "resource_not_found"
	ErrorKindDB              ErrorKind = "db_error"
	ErrorKindConfig          ErrorKind = "config_error"
	ErrorKindRateLimit       ErrorKind = "rate_limit_exceeded"
	ErrorKindUnknown         ErrorKind = "unknown"
)

// Error is the canonical error carrier used across the ingestion pipeline.
// Per-event errors are collected (never thrown) into the batch response; a
// Kind of anything other than BadRequest/Authentication/ResourceMissing maps
// to a 500. The ingestion path does not report these errors to an error
// tracker.
type Error struct {
	Kind    ErrorKind
	Message string
	// Retryable is set by NewError for the DB and Unknown kinds. The
	// ingestion coordinator's retry loop does not read it: it uses
	// IsRetryable, which retries every kind except Authentication.
	Retryable bool
}

func (e *Error) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Message
}

// HTTPStatusCode maps an error kind to the per-event status used in the
// batch response (spec §4.4 step 11 / §7).
func (e *Error) HTTPStatusCode() int {
	switch e.Kind {
	case ErrorKindBadRequest:
		return http.StatusBadRequest
	case ErrorKindAuthentication:
		return http.StatusUnauthorized
	case ErrorKindResourceMissing:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message, Retryable: kind == ErrorKindDB || kind == ErrorKindUnknown}
}

func BadRequestError(message string) *Error {
	return NewError(ErrorKindBadRequest, message)
}

func AuthenticationError(message string) *Error {
	return NewError(ErrorKindAuthentication, message)
}

func ResourceNotFoundError(message string) *Error {
	return NewError(ErrorKindResourceMissing, message)
}

func ConfigError(message string) *Error {
	return NewError(ErrorKindConfig, message)
}

func DBError(message string) *Error {
	return NewError(ErrorKindDB, message)
}

// IsRetryable reports whether err should be retried by the ingestion
// coordinator's per-event dispatch loop (spec §4.4 step 8, §7).
// AuthenticationError is never retried; everything not recognized as a
// domain *Error is treated as retryable, matching the "anything else ->
// 500, retry" rule.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var de *Error
	if e, ok := err.(*Error); ok {
		de = e
	} else {
		return true
	}
	return de.Kind != ErrorKindAuthentication
}

// AsDomainError unwraps err into a *Error, synthesizing an Unknown-kind
// wrapper for anything that isn't already one.
func AsDomainError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return NewError(ErrorKindUnknown, err.Error())
}

// DisplayError returns the message surfaced to persistent state (job
// executions) or batch responses. Known domain errors surface their own
// message; anything else is masked, per spec §4.7.
func DisplayError(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Message
	}
	return "An internal error occurred"
}
