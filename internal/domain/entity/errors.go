package entity

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindInvalidArgument    ErrorKind = "invalid_argument"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindGenerationBlocked  ErrorKind = "generation_blocked"
	KindUpstream           ErrorKind = "upstream_error"
	KindInternal           ErrorKind = "internal_error"
)

const (
	MsgInvalidDays       = "Days parameter is required and must be a number."
	MsgNotConfigured     = "Backend AI service not configured."
	MsgInternal          = "Failed to process request due to an internal server error."
	MsgUpstreamFallback  = "AI service request failed."
	DefaultBlockedReason = "Blocked or empty content"
)

// Error is a request failure that already knows its HTTP status and the
// message shown to the caller.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ErrInvalidDays(err error) *Error {
	return &Error{Kind: KindInvalidArgument, Status: http.StatusBadRequest, Message: MsgInvalidDays, Err: err}
}

func ErrNotConfigured() *Error {
	return &Error{Kind: KindServiceUnavailable, Status: http.StatusInternalServerError, Message: MsgNotConfigured}
}

func ErrBlocked(reason string) *Error {
	if reason == "" {
		reason = DefaultBlockedReason
	}
	return &Error{
		Kind:    KindGenerationBlocked,
		Status:  http.StatusBadRequest,
		Message: "Message generation failed: " + reason,
	}
}

func ErrInternal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: MsgInternal, Err: err}
}

// ProviderError is an error raised by the text generation provider's client.
// Status is zero when the provider did not report one.
type ProviderError struct {
	Status  int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider error %d: %s", e.Status, e.Message)
	}
	return "provider error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func ErrUpstream(pe *ProviderError) *Error {
	status := pe.Status
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	msg := pe.Message
	if msg == "" {
		msg = MsgUpstreamFallback
	}
	return &Error{Kind: KindUpstream, Status: status, Message: msg, Err: pe}
}

// AsError classifies err. Domain errors are returned as is, provider errors
// become upstream errors, everything else is internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return ErrUpstream(pe)
	}
	return ErrInternal(err)
}
