package proxy

import (
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/courier/pkg/jsonvalue"
)

// RequestMetadata describes an inbound chat request for logging and tracing.
// It never holds the prompt text itself.
type RequestMetadata struct {
	RequestID  string
	Method     string
	Path       string
	UserAgent  string
	RemoteAddr string
	BodyBytes  int

	// PromptKind is the JSON kind of the prompt, "absent" when missing.
	PromptKind string

	Timestamp time.Time
}

// ResponseMetadata describes the outcome of a chat request.
type ResponseMetadata struct {
	StatusCode      int
	Latency         time.Duration
	UpstreamLatency time.Duration
	ExtractedFrom   Source
	ErrorKind       string
	Error           error
}

// ExtractRequestMetadata collects request metadata from r and its decoded body.
func ExtractRequestMetadata(r *http.Request, body []byte, req ChatRequest) *RequestMetadata {
	return &RequestMetadata{
		RequestID:  ExtractRequestID(r),
		Method:     r.Method,
		Path:       r.URL.Path,
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
		BodyBytes:  len(body),
		PromptKind: promptKind(req.Prompt),
		Timestamp:  time.Now(),
	}
}

// PromptLength returns the prompt length in bytes when it is a string.
func PromptLength(req ChatRequest) int {
	if req.Prompt == nil {
		return 0
	}
	if s, ok := req.Prompt.AsString(); ok {
		return len(s)
	}
	return 0
}

// LogAttrs returns the metadata as slog attributes.
func (m *RequestMetadata) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("method", m.Method),
		slog.String("path", m.Path),
		slog.String("remote_addr", m.RemoteAddr),
		slog.String("user_agent", m.UserAgent),
		slog.Int("body_bytes", m.BodyBytes),
		slog.String("prompt_kind", m.PromptKind),
	}
}

// LogAttrs returns the outcome as slog attributes.
func (m *ResponseMetadata) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Int("status", m.StatusCode),
		slog.Int64("latency_ms", m.Latency.Milliseconds()),
		slog.Int64("upstream_latency_ms", m.UpstreamLatency.Milliseconds()),
	}
	if m.ExtractedFrom != "" {
		attrs = append(attrs, slog.String("extracted_from", string(m.ExtractedFrom)))
	}
	if m.ErrorKind != "" {
		attrs = append(attrs, slog.String("error_kind", m.ErrorKind))
	}
	if m.Error != nil {
		attrs = append(attrs, slog.Any("error", m.Error))
	}
	return attrs
}

// IsSuccess returns true if the response was successful (2xx status code).
func (m *ResponseMetadata) IsSuccess() bool {
	return m.StatusCode >= 200 && m.StatusCode < 300
}

func promptKind(v *jsonvalue.Value) string {
	if v == nil {
		return "absent"
	}
	return v.Kind().String()
}
