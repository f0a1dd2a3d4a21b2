package client

import (
	"fmt"
)

// TransportError means that no HTTP response was received: the connection was refused, the host
// could not be resolved, the request timed out, and so on.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPStatusError means that the server responded with an unexpected status.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// DecodeError means that a response body was expected to be JSON but was not.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("response was not valid JSON: %s", e.Err)
	}
	return "response was not valid JSON"
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
