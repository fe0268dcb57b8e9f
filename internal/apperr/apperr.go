// Package apperr defines the typed errors raised by the catalog, rating and rate
// limiting layers and the JSON envelope they are rendered as.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies an error and selects its HTTP status and wire code.
type Kind int

const (
	Internal Kind = iota
	BadRequest
	Validation
	NotFound
	RateLimitExceeded
	Database
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "BadRequest"
	case Validation:
		return "Validation"
	case NotFound:
		return "NotFound"
	case RateLimitExceeded:
		return "RateLimitExceeded"
	case Database:
		return "Database"
	}
	return "InternalServer"
}

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case BadRequest, Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case RateLimitExceeded:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Code returns the stable wire code for k.
func (k Kind) Code() string {
	switch k {
	case BadRequest:
		return "BAD_REQUEST"
	case Validation:
		return "VALIDATION_ERROR"
	case NotFound:
		return "NOT_FOUND"
	case RateLimitExceeded:
		return "RATE_LIMIT_EXCEEDED"
	case Database:
		return "DATABASE_ERROR"
	}
	return "INTERNAL_SERVER_ERROR"
}

// Error is the typed error carried from the core layers to the HTTP boundary.
type Error struct {
	Kind    Kind
	Message string
	Details any
	// RetryAfter is set in seconds for RateLimitExceeded.
	RetryAfter int
	// Op names the failing operation for Database errors.
	Op  string
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so errors.Is(err, &Error{Kind: NotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func BadRequestf(format string, args ...any) *Error {
	return &Error{Kind: BadRequest, Message: fmt.Sprintf(format, args...)}
}

func Validationf(details any, format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...), Details: details}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// RateLimited reports a rejected request that may be retried after the given seconds.
func RateLimited(retryAfter int) *Error {
	return &Error{
		Kind:       RateLimitExceeded,
		Message:    fmt.Sprintf("Too many requests, try again in %d seconds", retryAfter),
		Details:    map[string]int{"retryAfter": retryAfter},
		RetryAfter: retryAfter,
	}
}

// DB wraps a driver error raised by op.
func DB(err error, op string) *Error {
	return &Error{Kind: Database, Message: "database operation failed", Op: op, Err: err}
}

// Wrap converts any error into an *Error, keeping typed errors as they are.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: Internal, Message: "internal server error", Err: err}
}

// KindOf returns the Kind of err, or Internal for untyped errors.
func KindOf(err error) Kind {
	return Wrap(err).Kind
}

// Envelope is the JSON body of every error response.
type Envelope struct {
	Error     string `json:"error" example:"Bad Request"`
	Code      string `json:"code" example:"BAD_REQUEST"`
	Message   string `json:"message" example:"rating must be an integer between 1 and 5"`
	Details   any    `json:"details,omitempty"`
	Timestamp string `json:"timestamp" example:"2025-01-01T00:00:00Z"`
}

// NewEnvelope renders err. Messages of 500-class errors are replaced with a generic
// text so driver details never reach the caller.
func NewEnvelope(err error, now time.Time) (int, Envelope) {
	e := Wrap(err)
	status := e.Kind.Status()
	env := Envelope{
		Error:     http.StatusText(status),
		Code:      e.Kind.Code(),
		Message:   e.Message,
		Details:   e.Details,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	if status >= http.StatusInternalServerError {
		env.Message = "An unexpected error occurred"
		env.Details = nil
	}
	return status, env
}
