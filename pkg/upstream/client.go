package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/courier/pkg/config"
	"mercator-hq/courier/pkg/jsonvalue"
	"mercator-hq/courier/pkg/telemetry/tracing"
)

const (
	// MaxResponseBytes caps how much of an upstream body is read.
	MaxResponseBytes = 10 * 1024 * 1024

	// unhealthyThreshold is the number of consecutive failures after which
	// the upstream is reported unhealthy.
	unhealthyThreshold = 3

	// maxRawResponse bounds the raw body kept on errors.
	maxRawResponse = 512
)

// Client calls the completion endpoint. It makes exactly one attempt per
// call and is safe for concurrent use.
type Client struct {
	// config is read-only after construction; credentials live in creds
	config config.UpstreamConfig

	credMu sync.RWMutex
	creds  Credentials

	// client is the HTTP client with connection pooling
	client *http.Client

	tracer   trace.Tracer
	observer Observer
	logger   *slog.Logger

	// health tracks availability across calls and probes
	health   Health
	healthMu sync.RWMutex
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithTracer sets the tracer used for upstream spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
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

// NewClient creates a completion client from cfg. The timeout is applied
// per call through the request context rather than http.Client.Timeout so
// that expiry can be told apart from other transport failures.
func NewClient(cfg config.UpstreamConfig, opts ...Option) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	c := &Client{
		config:   cfg,
		creds:    Credentials{AppID: cfg.AppID, APIKey: cfg.APIKey},
		client:   &http.Client{Transport: transport},
		tracer:   otel.Tracer(tracing.InstrumentationName),
		observer: nopObserver{},
		logger:   slog.Default().With("component", "upstream"),
		health: Health{
			Healthy:     true,
			LastCheck:   time.Now(),
			LastSuccess: time.Now(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Credentials identify the completion application and authorize calls to it.
type Credentials struct {
	AppID  string
	APIKey string
}

// Credentials returns the credentials used for the next call.
func (c *Client) Credentials() Credentials {
	c.credMu.RLock()
	defer c.credMu.RUnlock()
	return c.creds
}

// SetCredentials replaces the credentials. Calls already in flight keep the
// ones they started with.
func (c *Client) SetCredentials(creds Credentials) {
	c.credMu.Lock()
	c.creds = creds
	c.credMu.Unlock()
}

// CompletionURL returns the endpoint for the configured application.
func (c *Client) CompletionURL() string {
	return c.completionURL(c.Credentials().AppID)
}

func (c *Client) completionURL(appID string) string {
	return strings.TrimRight(c.config.BaseURL, "/") +
		"/api/v1/apps/" + url.PathEscape(appID) + "/completion"
}

// Complete posts prompt to the completion endpoint and returns the decoded
// JSON body. A nil prompt is sent as an input object without a prompt key.
//
// Errors are one of *TransportError, *TimeoutError, *StatusError or
// *ParseError.
func (c *Client) Complete(ctx context.Context, prompt *jsonvalue.Value) (jsonvalue.Value, error) {
	creds := c.Credentials()
	ctx, span := c.tracer.Start(ctx, "upstream.completion",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("upstream.app_id", creds.AppID)),
	)
	defer span.End()

	start := time.Now()
	payload, err := c.complete(ctx, creds, prompt)
	latency := time.Since(start)

	kind := Kind(err)
	c.observer.ObserveUpstream(kind, latency)
	c.recordRequest(err != nil)
	c.updateHealth(!countsAgainstHealth(err), err)

	span.SetAttributes(attribute.String("upstream.outcome", kind))
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		span.SetAttributes(attribute.Int("http.response.status_code", statusErr.StatusCode))
	}
	tracing.SetError(span, err)
	tracing.SetStatus(span, err)

	return payload, err
}

func (c *Client) complete(ctx context.Context, creds Credentials, prompt *jsonvalue.Value) (jsonvalue.Value, error) {
	body, err := json.Marshal(NewCompletionRequest(prompt))
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	endpoint := c.completionURL(creds.AppID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return jsonvalue.Value{}, &TransportError{URL: endpoint, Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+creds.APIKey)
	req.Header.Set("Content-Type", "application/json")
	tracing.Inject(ctx, req.Header)

	c.logger.DebugContext(ctx, "sending completion request", "url", endpoint)

	resp, err := c.client.Do(req)
	if err != nil {
		return jsonvalue.Value{}, c.transportError(ctx, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return jsonvalue.Value{}, c.transportError(ctx, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		envelope, perr := jsonvalue.Parse(raw)
		if perr != nil {
			envelope = jsonvalue.NullValue()
		}
		return jsonvalue.Value{}, &StatusError{
			StatusCode:  resp.StatusCode,
			Body:        envelope,
			RawResponse: truncate(raw),
		}
	}

	payload, err := jsonvalue.Parse(raw)
	if err != nil {
		return jsonvalue.Value{}, &ParseError{RawResponse: truncate(raw), Cause: err}
	}
	return payload, nil
}

// transportError wraps err, reporting a TimeoutError when the per-call
// deadline is what cut the request short.
func (c *Client) transportError(ctx context.Context, endpoint string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Timeout: c.config.Timeout, Cause: err}
	}
	return &TransportError{URL: endpoint, Cause: err}
}

// Probe checks that the upstream host answers HTTP at all. Any response,
// including 4xx, counts as reachable.
func (c *Client) Probe(ctx context.Context) error {
	if c.config.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ProbeTimeout)
		defer cancel()
	}

	err := c.probe(ctx)
	c.updateHealth(err == nil, err)
	return err
}

func (c *Client) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return &TransportError{URL: c.config.BaseURL, Cause: err}
	}
	if key := c.Credentials().APIKey; key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Timeout: c.config.ProbeTimeout, Cause: err}
		}
		return &TransportError{URL: c.config.BaseURL, Cause: err}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	resp.Body.Close()
	return nil
}

// IsHealthy returns the current health verdict.
func (c *Client) IsHealthy() bool {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health.Healthy
}

// Health returns a snapshot of the health state.
func (c *Client) Health() Health {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health
}

// updateHealth records the outcome of a call or probe.
func (c *Client) updateHealth(success bool, err error) {
	c.healthMu.Lock()
	now := time.Now()
	c.health.LastCheck = now

	wasHealthy := c.health.Healthy
	if success {
		c.health.Healthy = true
		c.health.ConsecutiveFailures = 0
		c.health.LastError = ""
		c.health.LastSuccess = now
	} else {
		c.health.ConsecutiveFailures++
		if err != nil {
			c.health.LastError = err.Error()
		}
		if c.health.ConsecutiveFailures >= unhealthyThreshold {
			c.health.Healthy = false
		}
	}
	healthy := c.health.Healthy
	failures := c.health.ConsecutiveFailures
	c.healthMu.Unlock()

	c.observer.SetUpstreamUp(healthy)

	switch {
	case wasHealthy && !healthy:
		c.logger.Warn("upstream marked unhealthy",
			"consecutive_failures", failures,
			"error", err,
		)
	case !wasHealthy && healthy:
		c.logger.Info("upstream marked healthy")
	}
}

// recordRequest counts a completion call.
func (c *Client) recordRequest(failed bool) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	c.health.TotalRequests++
	if failed {
		c.health.FailedRequests++
	}
}

// Close releases pooled connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func truncate(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxRawResponse {
		return s[:maxRawResponse] + "..."
	}
	return s
}
