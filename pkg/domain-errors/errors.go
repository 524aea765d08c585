// Package domainerrors defines the coded error taxonomy shared by the client,
// transport, and the development stub. Codes classify failures the way the
// retry and step-up policies need them classified: validation failures never
// leave the process, network and 5xx failures are transient, 4xx failures are
// terminal, and rate limiting is terminal for automatic retries.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation     Code = "validation_error"
	CodeBadRequest     Code = "bad_request"
	CodeUnauthorized   Code = "unauthorized"
	CodeForbidden      Code = "forbidden"
	CodeNotFound       Code = "not_found"
	CodeConflict       Code = "conflict"
	CodeRateLimited    Code = "rate_limited"
	CodeStepUpRequired Code = "reauth_required"
	CodeUnavailable    Code = "unavailable"
	CodeInternal       Code = "internal_error"
	CodeNetwork        Code = "network_error"
)

// Error carries a code, a human-readable message, and optional request
// correlation metadata. Field is set for validation errors so forms can
// address the message to the offending input.
type Error struct {
	Code      Code
	Message   string
	Field     string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewField builds a field-addressed validation error.
func NewField(code Code, field, message string) *Error {
	return &Error{Code: code, Message: message, Field: field}
}

// Wrap attaches a code and message to an underlying error. If err is already
// a coded error its request ID is preserved.
func Wrap(err error, code Code, message string) *Error {
	e := &Error{Code: code, Message: message, Err: err}
	var inner *Error
	if errors.As(err, &inner) {
		e.RequestID = inner.RequestID
	}
	return e
}

// WithRequestID returns a copy of the error carrying the correlation ID.
func (e *Error) WithRequestID(requestID string) *Error {
	clone := *e
	clone.RequestID = requestID
	return &clone
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// CodeOf extracts the code from err, or CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// FieldOf extracts the field name from a validation error, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// RequestIDOf extracts the request correlation ID from err, if any.
func RequestIDOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.RequestID
	}
	return ""
}

// Retryable reports whether an automatic retry is permitted for err.
// Only network-level failures and server-side 5xx conditions qualify.
// Client errors are caller bugs and rate limiting is server backpressure;
// retrying either would be wrong.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case CodeNetwork, CodeUnavailable, CodeInternal:
		return true
	}
	return false
}

// FromStatus maps an HTTP status to the matching code. The wire error code,
// when present, wins over the blunt status mapping so that step-up signals
// arriving as 401/403 are still distinguishable.
func FromStatus(status int, wireCode string) Code {
	if wireCode != "" {
		switch Code(wireCode) {
		case CodeValidation, CodeBadRequest, CodeUnauthorized, CodeForbidden,
			CodeNotFound, CodeConflict, CodeRateLimited, CodeStepUpRequired,
			CodeUnavailable, CodeInternal:
			return Code(wireCode)
		}
	}
	switch {
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusTooManyRequests:
		return CodeRateLimited
	case status == http.StatusServiceUnavailable:
		return CodeUnavailable
	case status >= 500:
		return CodeInternal
	case status >= 400:
		return CodeBadRequest
	default:
		return CodeInternal
	}
}

// HTTPStatus maps a code to the status the stub server responds with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeStepUpRequired:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
