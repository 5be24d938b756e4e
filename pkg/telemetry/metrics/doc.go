// Package metrics provides Prometheus metrics for the chat proxy.
//
// # Metrics
//
//   - courier_requests_total{status}: chat requests by HTTP status
//   - courier_request_duration_seconds{status}: handler duration
//   - courier_extraction_source_total{source}: extraction rule that produced the reply
//   - courier_upstream_up: upstream health gauge
//   - courier_upstream_latency_seconds{kind}: completion call latency by outcome
//   - courier_upstream_requests_total{kind}: completion calls by outcome
//   - courier_upstream_errors_total{kind}: failed completion calls by error kind
//
// The namespace prefix comes from telemetry.metrics.namespace.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	client := upstream.NewClient(cfg.Upstream, upstream.WithObserver(collector))
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// Label values are drawn from small fixed sets (HTTP status codes, error
// kinds, extraction sources), so no cardinality limiting is applied.
package metrics
