// Package telemetry groups the observability packages used by the courier
// proxy.
//
// # Components
//
//   - logging: slog loggers with request IDs and credential redaction
//   - metrics: Prometheus collectors for chat requests, extraction sources
//     and upstream calls
//   - tracing: OpenTelemetry spans exported over OTLP gRPC, with W3C trace
//     context propagated to the completion service
//   - health: /health, /ready and /version handlers
//
// # Usage
//
//	logger, _ := logging.New(cfg.Telemetry.Logging, os.Stdout)
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(ctx)
//
// # Redaction
//
// Bearer tokens and API keys are masked before log records are written:
//
//	Authorization: Bearer sk-1234567890abcdef → Authorization: Bearer ***
//	key sk-1234567890abcdef rejected → key sk-*** rejected
package telemetry
