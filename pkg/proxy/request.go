package proxy

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"mercator-hq/courier/pkg/jsonvalue"
)

const (
	// DefaultMaxBodyBytes bounds the inbound body when no limit is configured.
	DefaultMaxBodyBytes = 1 << 20

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"
)

// ChatRequest is the decoded body of POST /api/chat.
type ChatRequest struct {
	// Prompt is the raw prompt value, nil when the field is absent. It is
	// forwarded verbatim whatever its JSON type.
	Prompt *jsonvalue.Value
}

// ReadBody reads at most maxBytes from the request body. A larger body is a
// RequestError.
func ReadBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	if r.Body == nil {
		return nil, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &RequestError{
				Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", tooLarge.Limit),
			}
		}
		return nil, &RequestError{Message: "failed to read request body", Cause: err}
	}
	return body, nil
}

// DecodeChatRequest decodes a chat request body. The body must be a JSON
// object; the prompt field is optional and may hold any JSON value.
func DecodeChatRequest(body []byte) (ChatRequest, error) {
	v, err := jsonvalue.Parse(body)
	if err != nil {
		return ChatRequest{}, &RequestError{Message: "invalid JSON body", Cause: err}
	}
	if v.Kind() != jsonvalue.Object {
		return ChatRequest{}, &RequestError{
			Message: fmt.Sprintf("request body must be a JSON object, got %s", v.Kind()),
		}
	}

	var req ChatRequest
	if prompt, ok := v.Field("prompt"); ok {
		req.Prompt = &prompt
	}
	return req, nil
}

// ExtractRequestID returns the client-supplied X-Request-ID, if any.
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}
