package crux

import (
	"errors"
	"fmt"
)

// ErrInvalidURL marks caller-supplied URLs rejected before any network I/O.
// Wrapped errors carry the specific reason; check with errors.Is.
var ErrInvalidURL = errors.New("invalid URL")

// ConnectionError indicates the CrUX API could not be reached: the request
// timed out or failed at the transport level.
type ConnectionError struct {
	Message string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ResponseError indicates the CrUX API answered with a non-success status.
// Message is the upstream error body's message, or "Unknown error" when the
// body carried none.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("CrUX API returned error %d: %s", e.StatusCode, e.Message)
}
