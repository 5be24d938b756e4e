// Package testutil provides a fake completion service and small assertion
// helpers shared by package tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// CompletionServer is an httptest server that mimics the completion
// endpoint. It records every request it receives.
type CompletionServer struct {
	server *httptest.Server

	mu       sync.Mutex
	response MockResponse
	requests []RecordedRequest
}

// MockResponse defines what the server answers.
type MockResponse struct {
	StatusCode int

	// Body is written as-is when it is a string or []byte and JSON-encoded
	// otherwise.
	Body any

	// Delay holds the response back. It is cut short when the client goes away.
	Delay time.Duration

	Headers map[string]string
}

// RecordedRequest is one request seen by the server.
type RecordedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// NewCompletionServer starts a server answering 200 with a text reply.
func NewCompletionServer() *CompletionServer {
	cs := &CompletionServer{
		response: MockResponse{StatusCode: http.StatusOK, Body: TextResponse("ok")},
	}
	cs.server = httptest.NewServer(http.HandlerFunc(cs.handler))
	return cs
}

// URL returns the server's base URL.
func (cs *CompletionServer) URL() string {
	return cs.server.URL
}

// Close shuts the server down.
func (cs *CompletionServer) Close() {
	cs.server.CloseClientConnections()
	cs.server.Close()
}

// SetResponse replaces the response for subsequent requests.
func (cs *CompletionServer) SetResponse(response MockResponse) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.response = response
}

// Requests returns a copy of the recorded requests.
func (cs *CompletionServer) Requests() []RecordedRequest {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return append([]RecordedRequest(nil), cs.requests...)
}

// RequestCount returns the number of requests received.
func (cs *CompletionServer) RequestCount() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	return len(cs.requests)
}

// LastRequest returns the most recent request, or false if there was none.
func (cs *CompletionServer) LastRequest() (RecordedRequest, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if len(cs.requests) == 0 {
		return RecordedRequest{}, false
	}
	return cs.requests[len(cs.requests)-1], true
}

func (cs *CompletionServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	cs.mu.Lock()
	cs.requests = append(cs.requests, RecordedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: r.Header.Clone(),
		Body:    body,
	})
	response := cs.response
	cs.mu.Unlock()

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	switch v := response.Body.(type) {
	case nil:
		w.WriteHeader(response.StatusCode)
	case string:
		w.WriteHeader(response.StatusCode)
		_, _ = io.WriteString(w, v)
	case []byte:
		w.WriteHeader(response.StatusCode)
		_, _ = w.Write(v)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(response.StatusCode)
		_ = json.NewEncoder(w).Encode(v)
	}
}

// TextResponse is a completion payload carrying output.text.
func TextResponse(text string) map[string]any {
	return map[string]any{
		"output": map[string]any{
			"text":          text,
			"finish_reason": "stop",
			"session_id":    "sess-123",
		},
		"usage": map[string]any{
			"models": []map[string]any{
				{"model_id": "qwen-plus", "input_tokens": 10, "output_tokens": 20},
			},
		},
		"request_id": "req-123",
	}
}

// ChoicesResponse is a completion payload carrying
// output.choices[0].message.content.
func ChoicesResponse(content string) map[string]any {
	return map[string]any{
		"output": map[string]any{
			"choices": []map[string]any{
				{
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		},
		"request_id": "req-123",
	}
}

// ErrorEnvelope is a failure response with a top-level message, the shape
// the completion service uses.
func ErrorEnvelope(statusCode int, code, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: map[string]any{
			"code":       code,
			"message":    message,
			"request_id": "req-err",
		},
	}
}

// NestedErrorEnvelope is a failure response with error.message.
func NestedErrorEnvelope(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: map[string]any{
			"error": map[string]any{
				"message": message,
				"type":    "invalid_request_error",
			},
		},
	}
}

// SlowResponse answers with a text reply after delay.
func SlowResponse(delay time.Duration) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       TextResponse("slow"),
		Delay:      delay,
	}
}

// ExpectHeader checks that a request header contains value.
func ExpectHeader(r RecordedRequest, key, value string) error {
	actual := r.Headers.Get(key)
	if !strings.Contains(actual, value) {
		return fmt.Errorf("header %q mismatch: expected %q, got %q", key, value, actual)
	}
	return nil
}

// ExpectJSONBody compares the recorded body with expected after
// normalizing both through encoding/json.
func ExpectJSONBody(r RecordedRequest, expected string) error {
	var actual, want any
	if err := json.Unmarshal(r.Body, &actual); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	if err := json.Unmarshal([]byte(expected), &want); err != nil {
		return fmt.Errorf("failed to decode expected body: %w", err)
	}

	actualJSON, _ := json.Marshal(actual)
	wantJSON, _ := json.Marshal(want)
	if string(actualJSON) != string(wantJSON) {
		return fmt.Errorf("request mismatch:\nexpected: %s\nactual: %s", wantJSON, actualJSON)
	}
	return nil
}
