package generation

import (
	"errors"
	"fmt"
)

// ErrUpstream is the sentinel for generation service failures
var ErrUpstream = errors.New("generation service error")

// UpstreamError represents a failure reported by the generation service:
// a non-2xx response, a malformed body, or a timeout.
type UpstreamError struct {
	Endpoint   string
	StatusCode int // 0 when the request never completed
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation request to %s failed with status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("generation request to %s failed: %s", e.Endpoint, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// NewUpstreamError creates a new UpstreamError
func NewUpstreamError(endpoint string, statusCode int, message string, err error) *UpstreamError {
	return &UpstreamError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// IsUpstreamError reports whether err came from the generation service
func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstream)
}
