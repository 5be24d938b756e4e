package upstream

import (
	"errors"
	"fmt"
	"time"

	"mercator-hq/courier/pkg/jsonvalue"
)

// Error kinds reported by Kind, used as metric label values and log fields.
const (
	KindNone      = "none"
	KindTransport = "transport"
	KindTimeout   = "timeout"
	KindStatus    = "status"
	KindParse     = "parse"
	KindOther     = "other"
)

// TransportError is a failure to obtain a response at all: DNS, connect,
// TLS, or a connection reset while reading the body.
type TransportError struct {
	// URL is the endpoint that was being called
	URL string

	// Cause is the underlying network error
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream request to %s failed: %v", e.URL, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// TimeoutError reports that the configured upstream timeout elapsed before
// the response was fully read.
type TimeoutError struct {
	// Timeout is the configured timeout duration
	Timeout time.Duration

	// Cause is the underlying context or network error
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream request timed out after %s", e.Timeout)
}

// Unwrap returns the underlying error for error chain support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// StatusError is a non-2xx response. When the body was JSON it is kept in
// Body so callers can read the provider's error envelope.
type StatusError struct {
	// StatusCode is the HTTP status returned by the upstream
	StatusCode int

	// Body is the decoded error envelope, null when the body was not JSON
	Body jsonvalue.Value

	// RawResponse is the raw body, truncated for display
	RawResponse string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.RawResponse == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.RawResponse)
}

// Envelope returns the decoded error body, if it was JSON.
func (e *StatusError) Envelope() (jsonvalue.Value, bool) {
	if e.Body.IsNull() {
		return jsonvalue.Value{}, false
	}
	return e.Body, true
}

// ParseError is a 2xx response whose body is not valid JSON.
type ParseError struct {
	// RawResponse is the raw body that failed to parse, truncated
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("upstream response is not valid JSON: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Kind classifies err into one of the Kind* constants.
func Kind(err error) string {
	if err == nil {
		return KindNone
	}

	var (
		timeoutErr   *TimeoutError
		transportErr *TransportError
		statusErr    *StatusError
		parseErr     *ParseError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &statusErr):
		return KindStatus
	case errors.As(err, &parseErr):
		return KindParse
	default:
		return KindOther
	}
}

// countsAgainstHealth reports whether err says the upstream is unavailable,
// as opposed to rejecting this particular request.
func countsAgainstHealth(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return err != nil
}
