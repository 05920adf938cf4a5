package llm

import (
	"errors"
	"fmt"
)

// ErrNoAPIKey means no credential is configured. This is a fatal
// configuration problem; it is surfaced before any network call.
var ErrNoAPIKey = errors.New("no API key configured")

// NetworkError wraps a connection or timeout failure
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteError means the endpoint returned a non-success status
type RemoteError struct {
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (status %d): %v", e.StatusCode, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Transient reports whether a retry could plausibly succeed
func (e *RemoteError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// EmptyResponseError means the endpoint succeeded but returned no
// usable content
type EmptyResponseError struct {
	Model string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("empty response from model %s", e.Model)
}
