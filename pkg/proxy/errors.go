package proxy

import (
	"errors"
	"strings"

	"mercator-hq/courier/pkg/jsonvalue"
)

// UnknownError is the message used when nothing better can be derived.
const UnknownError = "Unknown error"

// Enveloper is implemented by errors that carry a decoded upstream error
// body, such as *upstream.StatusError.
type Enveloper interface {
	Envelope() (jsonvalue.Value, bool)
}

var (
	envelopeErrorMessage = []jsonvalue.Step{jsonvalue.Key("error"), jsonvalue.Key("message")}
	envelopeMessage      = []jsonvalue.Step{jsonvalue.Key("message")}
)

// ErrorMessage derives the client-facing message for a failed request.
//
// Candidates are tried in order and the first non-blank one wins:
//
//  1. error.message in the upstream error envelope
//  2. message at the top level of the upstream error envelope
//  3. err.Error()
//  4. UnknownError
//
// Step 2 is an addition for services that answer {"message": ...} without
// an error object. It sits between error.message and err.Error(), so an
// envelope carrying both keys still reports error.message.
func ErrorMessage(err error) string {
	if err == nil {
		return UnknownError
	}

	var env Enveloper
	if errors.As(err, &env) {
		if body, ok := env.Envelope(); ok {
			for _, path := range [][]jsonvalue.Step{envelopeErrorMessage, envelopeMessage} {
				if msg, ok := nonBlankString(body, path); ok {
					return msg
				}
			}
		}
	}

	if msg := err.Error(); strings.TrimSpace(msg) != "" {
		return msg
	}
	return UnknownError
}

func nonBlankString(v jsonvalue.Value, path []jsonvalue.Step) (string, bool) {
	found, ok := v.Lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := found.AsString()
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// RequestError is an inbound request that could not be decoded. It is
// reported through the ordinary failure path.
type RequestError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

// Unwrap returns the underlying error for error chain support.
func (e *RequestError) Unwrap() error {
	return e.Cause
}
