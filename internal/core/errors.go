// Package core provides the error type shared by the service client and the scenario.
package core

import (
	"errors"
	"fmt"
)

// RequestError reports a call to the prompt service that never produced a
// usable JSON document: the connection failed, the body could not be read,
// or the body was not JSON. Service-level failures (401, 404, ...) are not
// errors; they come back as documents for the caller to inspect.
type RequestError struct {
	// Op names the scenario step, e.g. "login" or "update"
	Op     string
	Method string
	URL    string
	// StatusCode is zero when no response was received
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s %s (status %d): %v", e.Op, e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

// Unwrap implements the error unwrapping interface
func (e *RequestError) Unwrap() error {
	return e.Err
}

// ErrNotJSON is wrapped by RequestError when a response body does not parse as JSON.
var ErrNotJSON = errors.New("response body is not valid JSON")

// IsRequestError reports whether err wraps a *RequestError and returns it.
func IsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}
