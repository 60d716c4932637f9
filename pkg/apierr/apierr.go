// Package apierr defines the error taxonomy shared by every layer of the
// toolkit. Callers match error kinds with errors.Is; messages are always
// human-readable and safe to log as-is.
package apierr

import (
	"errors"
	"fmt"
)

// Sentinel errors for toolkit failures.
var (
	// ErrValidation marks a request rejected before any network call.
	ErrValidation = errors.New("invalid request")

	// ErrNetwork marks a request that never produced a response
	// (DNS failure, connection refused, aborted read).
	ErrNetwork = errors.New("network error")

	// ErrHTTP matches any *HTTPError via errors.Is.
	ErrHTTP = errors.New("http error")

	// ErrMissingWorkflowID marks a submission acknowledgement without a
	// workflow_id; no polling is attempted.
	ErrMissingWorkflowID = errors.New("response missing workflow_id")

	// ErrWorkflowFailed marks a workflow the platform reported as failed.
	ErrWorkflowFailed = errors.New("workflow failed")

	// ErrWorkflowTimeout marks a poll loop that exhausted its attempt
	// budget without observing a terminal status.
	ErrWorkflowTimeout = errors.New("workflow timed out")

	// ErrMalformedResponse marks a successful response missing the
	// expected shape (e.g. a completed rewrite without merged_text).
	ErrMalformedResponse = errors.New("malformed response")

	// ErrCancelled marks a caller-initiated abort, via context
	// cancellation or an expired deadline.
	ErrCancelled = errors.New("operation cancelled")

	// ErrApplication marks an unexpected failure while decoding or
	// validating an otherwise successful response.
	ErrApplication = errors.New("unexpected client error")
)

// HTTPError is a response received with a status outside the 2xx range.
// Message is extracted from the response body (detail, then message,
// then a generated fallback) and never contains the raw body.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrHTTP) match any HTTPError.
func (e *HTTPError) Is(target error) bool { return target == ErrHTTP }

// NewHTTPError builds an HTTPError with the generated fallback message
// when none was extracted from the body.
func NewHTTPError(statusCode int, message string) *HTTPError {
	if message == "" {
		message = fmt.Sprintf("HTTP error! status: %d", statusCode)
	}
	return &HTTPError{StatusCode: statusCode, Message: message}
}
