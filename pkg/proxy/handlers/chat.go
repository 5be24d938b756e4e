package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/courier/pkg/proxy"
	"mercator-hq/courier/pkg/telemetry/tracing"
	"mercator-hq/courier/pkg/upstream"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ChatHandler serves POST /api/chat.
//
// Every request ends in {"result": string}: 200 with the extracted reply, or
// 500 with ErrorMessage of whatever went wrong. Undecodable bodies, upstream
// failures and panics all take the 500 path.
type ChatHandler struct {
	completer    Completer
	recorder     Recorder
	logger       *slog.Logger
	maxBodyBytes int64
}

// Option configures a ChatHandler.
type Option func(*ChatHandler)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(h *ChatHandler) {
		if r != nil {
			h.recorder = r
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *ChatHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMaxBodyBytes bounds the inbound request body.
func WithMaxBodyBytes(n int64) Option {
	return func(h *ChatHandler) {
		h.maxBodyBytes = n
	}
}

// NewChatHandler creates a chat handler backed by completer.
func NewChatHandler(completer Completer, opts ...Option) *ChatHandler {
	h := &ChatHandler{
		completer:    completer,
		recorder:     nopRecorder{},
		logger:       slog.Default(),
		maxBodyBytes: proxy.DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
//
// The upstream call runs on a context detached from the client connection,
// so a client hanging up does not abort it. The upstream timeout still
// applies.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())

	body, err := proxy.ReadBody(w, r, h.maxBodyBytes)
	var status int
	var result proxy.Result
	if err != nil {
		status, result = h.fail(ctx, r, body, proxy.ChatRequest{}, time.Now(), 0, err)
	} else {
		status, result = h.serve(ctx, r, body)
	}

	if err := proxy.WriteResult(w, status, result.Result); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

// Handle runs one chat exchange for body and returns the status code and
// result to send. It never panics.
func (h *ChatHandler) Handle(ctx context.Context, body []byte) (int, proxy.Result) {
	r, _ := http.NewRequestWithContext(ctx, http.MethodPost, "/api/chat", http.NoBody)
	return h.serve(ctx, r, body)
}

func (h *ChatHandler) serve(ctx context.Context, r *http.Request, body []byte) (status int, result proxy.Result) {
	start := time.Now()
	var req proxy.ChatRequest

	defer func() {
		if rec := recover(); rec != nil {
			status, result = h.fail(ctx, r, body, req, start, 0, fmt.Errorf("internal error: %v", rec))
		}
	}()

	req, err := proxy.DecodeChatRequest(body)
	if err != nil {
		return h.fail(ctx, r, body, req, start, 0, err)
	}

	upstreamStart := time.Now()
	payload, err := h.completer.Complete(ctx, req.Prompt)
	upstreamLatency := time.Since(upstreamStart)
	if err != nil {
		return h.fail(ctx, r, body, req, start, upstreamLatency, err)
	}

	text, source := proxy.ExtractWithSource(payload)

	resp := &proxy.ResponseMetadata{
		StatusCode:      http.StatusOK,
		Latency:         time.Since(start),
		UpstreamLatency: upstreamLatency,
		ExtractedFrom:   source,
	}
	h.recorder.RecordExtraction(string(source))
	h.finish(ctx, r, body, req, resp)

	return http.StatusOK, proxy.Result{Result: text}
}

func (h *ChatHandler) fail(ctx context.Context, r *http.Request, body []byte, req proxy.ChatRequest, start time.Time, upstreamLatency time.Duration, err error) (int, proxy.Result) {
	resp := &proxy.ResponseMetadata{
		StatusCode:      http.StatusInternalServerError,
		Latency:         time.Since(start),
		UpstreamLatency: upstreamLatency,
		ErrorKind:       errorKind(err),
		Error:           err,
	}
	h.finish(ctx, r, body, req, resp)

	return http.StatusInternalServerError, proxy.Result{Result: proxy.ErrorMessage(err)}
}

// finish records metrics, annotates the active span and logs the outcome.
func (h *ChatHandler) finish(ctx context.Context, r *http.Request, body []byte, req proxy.ChatRequest, resp *proxy.ResponseMetadata) {
	h.recorder.RecordRequest(resp.StatusCode, resp.Latency)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.Int("courier.prompt.length", proxy.PromptLength(req)),
	)
	if resp.ExtractedFrom != "" {
		span.SetAttributes(attribute.String("courier.extracted_from", string(resp.ExtractedFrom)))
	}
	if resp.Error != nil {
		span.SetAttributes(attribute.String("courier.error_kind", resp.ErrorKind))
		tracing.SetError(span, resp.Error)
	}

	reqMeta := proxy.ExtractRequestMetadata(r, body, req)
	attrs := append(reqMeta.LogAttrs(), resp.LogAttrs()...)
	if resp.IsSuccess() {
		h.logger.LogAttrs(ctx, slog.LevelInfo, "chat completed", attrs...)
	} else {
		h.logger.LogAttrs(ctx, slog.LevelWarn, "chat failed", attrs...)
	}
}

// errorKind labels err for logs. Upstream failures use their own kinds.
func errorKind(err error) string {
	if kind := upstream.Kind(err); kind != upstream.KindOther {
		return kind
	}
	var reqErr *proxy.RequestError
	if errors.As(err, &reqErr) {
		return "request"
	}
	return upstream.KindOther
}
