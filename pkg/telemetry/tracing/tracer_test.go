package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/courier/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		wantErr bool
		enabled bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name:    "disabled",
			config:  &config.TracingConfig{Enabled: false, ServiceName: "test"},
			enabled: false,
		},
		{
			name: "unknown sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "sometimes",
				Endpoint:    "localhost:4317",
				ServiceName: "test",
			},
			wantErr: true,
		},
		{
			name: "ratio out of range",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerRatio,
				SampleRatio: 2,
				Endpoint:    "localhost:4317",
				ServiceName: "test",
			},
			wantErr: true,
		},
		{
			name: "enabled with never sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerNever,
				Endpoint:    "localhost:4317",
				Insecure:    true,
				ServiceName: "test",
			},
			enabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config, "test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			defer func() { _ = tracer.Shutdown(ctx) }()

			if tracer.Enabled() != tt.enabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.enabled)
			}

			_, span := tracer.Start(context.Background(), "op")
			span.End()
		})
	}
}

func TestSetErrorAndStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, span := tracer.Start(context.Background(), "failing")
	err := errors.New("upstream down")
	SetError(span, err)
	SetStatus(span, err)
	span.End()

	_, okSpan := tracer.Start(context.Background(), "ok")
	SetError(okSpan, nil)
	SetStatus(okSpan, nil)
	okSpan.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error || spans[0].Status().Description != "upstream down" {
		t.Errorf("unexpected status %+v", spans[0].Status())
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected recorded error event")
	}
	if spans[1].Status().Code != codes.Ok {
		t.Errorf("unexpected status %+v", spans[1].Status())
	}
}

func TestHTTPMiddleware_PropagatesContext(t *testing.T) {
	prevProp := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prevProp)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(recorder),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	var innerTraceID string
	injected := http.Header{}
	handler := HTTPMiddleware(provider.Tracer("test"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		innerTraceID = TraceID(r.Context())
		Inject(r.Context(), injected)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if innerTraceID != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace ID = %q, want the incoming one", innerTraceID)
	}
	if got := rec.Header().Get("X-Trace-ID"); got != innerTraceID {
		t.Errorf("X-Trace-ID = %q", got)
	}
	if injected.Get("traceparent") == "" {
		t.Error("expected traceparent injected for the outbound call")
	}

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != "POST /api/chat" {
		t.Fatalf("unexpected spans %v", spans)
	}
}

func TestTraceID_NoSpan(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID = %q, want empty", got)
	}
}
