// Package errors provides standardized error handling for local request failures.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRequestDecodeFailed     ErrorCode = "REQUEST_DECODE_FAILED"
	ErrCodeRequestTooLarge         ErrorCode = "REQUEST_TOO_LARGE"
	ErrCodePayloadInvalid          ErrorCode = "PAYLOAD_INVALID"
	ErrCodeUpstreamTransportFailed ErrorCode = "UPSTREAM_TRANSPORT_FAILED"
	ErrCodeUpstreamResponseInvalid ErrorCode = "UPSTREAM_RESPONSE_INVALID"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.PublicMessage())
}

// Unwrap exposes the underlying cause so errors.Is / errors.As keep working
// through the wrapper (e.g. context.Canceled from an abandoned upstream call).
func (e *StandardError) Unwrap() error {
	return e.cause
}

// PublicMessage is the text placed in the `error` field of a 500 response.
func (e *StandardError) PublicMessage() string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

// ==========================
// 2. Error Constructors
// ==========================

func newWithCause(code ErrorCode, message string, err error) *StandardError {
	se := &StandardError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
	if err != nil {
		se.Details = err.Error()
	}
	return se
}

// NewRequestDecodeFailedError is returned when the caller's body is not JSON.
func NewRequestDecodeFailedError(err error) *StandardError {
	return newWithCause(ErrCodeRequestDecodeFailed, "Request body is not valid JSON", err)
}

// NewRequestTooLargeError is returned when the caller's body exceeds limit bytes.
func NewRequestTooLargeError(limit int64, err error) *StandardError {
	se := newWithCause(ErrCodeRequestTooLarge, "Request body too large", err)
	se.Details = fmt.Sprintf("limit is %d bytes", limit)
	return se
}

// NewPayloadInvalidError is returned when the outbound completion payload
// fails schema validation.
func NewPayloadInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadInvalid,
		Message:   "Completion request failed validation",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamTransportFailedError covers network failures before a response
// is obtained.
func NewUpstreamTransportFailedError(err error) *StandardError {
	return newWithCause(ErrCodeUpstreamTransportFailed, "Completion API request failed", err)
}

// NewUpstreamResponseInvalidError covers unreadable or non-JSON upstream bodies.
func NewUpstreamResponseInvalidError(status int, err error) *StandardError {
	se := newWithCause(ErrCodeUpstreamResponseInvalid, "Completion API returned an unreadable response", err)
	se.Metadata = map[string]interface{}{"upstreamStatus": status}
	return se
}

// NewInternalError wraps any other failure during handling.
func NewInternalError(err error) *StandardError {
	return newWithCause(ErrCodeInternal, "Unexpected error", err)
}

// ==========================
// 3. Normalization
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// GetErrorCategory groups codes for logging and metric labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeRequestDecodeFailed, ErrCodeRequestTooLarge:
		return "CLIENT_INPUT"
	case ErrCodePayloadInvalid:
		return "VALIDATION"
	case ErrCodeUpstreamTransportFailed, ErrCodeUpstreamResponseInvalid:
		return "UPSTREAM"
	default:
		return "INTERNAL"
	}
}
