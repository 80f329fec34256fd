package backend

import (
	"errors"
	"fmt"
)

// RequestError is the single failure kind surfaced to users: a non-2xx backend response,
// a transport failure, or input that could not be turned into a request.
type RequestError struct {
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

// Error returns the message shown verbatim in the dashboard.
func (e *RequestError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewStatusError builds the error for a non-2xx response.
// The body text is the message; an empty body falls back to a generic status message.
func NewStatusError(status int, body string) *RequestError {
	msg := body
	if msg == "" {
		msg = fmt.Sprintf("API call failed with status %d", status)
	}
	return &RequestError{StatusCode: status, Message: msg}
}

// NewTransportError wraps a failure to reach the backend at all.
func NewTransportError(err error) *RequestError {
	return &RequestError{Message: err.Error(), Err: err}
}

// NewInputError reports input that cannot be sent, e.g. a non-numeric ID.
func NewInputError(format string, args ...any) *RequestError {
	return &RequestError{Message: fmt.Sprintf(format, args...)}
}

// AsRequestError extracts a *RequestError from an error chain.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
