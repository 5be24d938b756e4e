package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mercator-hq/courier/pkg/jsonvalue"
	"mercator-hq/courier/pkg/telemetry/tracing"
)

const (
	// ChatPath is the proxy endpoint.
	ChatPath = "/api/chat"

	// DefaultTimeout bounds one call when no HTTP client is supplied. It is
	// longer than the proxy's default upstream timeout so the proxy reports
	// upstream timeouts itself.
	DefaultTimeout = 90 * time.Second

	maxReplyBytes = 10 * 1024 * 1024
)

// Error reports that no usable reply came back: the request never got an
// HTTP response, or the response body was not JSON.
type Error struct {
	// StatusCode is zero when no response was received.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("contact chat api: %v", e.Err)
	}
	return fmt.Sprintf("chat api returned undecodable body (status %d): %v", e.StatusCode, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client posts prompts to a courier proxy.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the proxy at baseURL (scheme and host).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy URL %q: want http(s)://host[:port]", baseURL)
	}

	c := &Client{
		endpoint:   strings.TrimRight(u.String(), "/") + ChatPath,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the URL prompts are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Complete posts {"prompt": prompt} and returns the reply's result field.
// The proxy answers 500 with a result too, so the status code is not an
// error. A missing, null, false, zero or empty result yields "".
//
// An *Error is returned when the call fails before a response arrives or
// the body is not a JSON document with a readable result.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", &Error{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.Inject(ctx, req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", &Error{Err: err}
	}

	doc, err := jsonvalue.Parse(raw)
	if err != nil {
		return "", &Error{StatusCode: resp.StatusCode, Err: err}
	}
	// Property access on a JSON null fails on the chat page as well.
	if doc.IsNull() {
		return "", &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("reply is null")}
	}

	c.logger.DebugContext(ctx, "chat reply received",
		"status", resp.StatusCode,
		"request_id", resp.Header.Get("X-Request-ID"),
	)

	result, _ := doc.Field("result")
	return resultText(result), nil
}

// resultText renders a result value, treating falsy values as empty.
func resultText(v jsonvalue.Value) string {
	switch v.Kind() {
	case jsonvalue.Null:
		return ""
	case jsonvalue.String:
		s, _ := v.AsString()
		return s
	case jsonvalue.Bool:
		if b, _ := v.AsBool(); !b {
			return ""
		}
	case jsonvalue.Number:
		n, _ := v.AsNumber()
		if isZero(n) {
			return ""
		}
		return n.String()
	}
	return v.String()
}

func isZero(n json.Number) bool {
	f, err := n.Float64()
	return err == nil && f == 0
}
