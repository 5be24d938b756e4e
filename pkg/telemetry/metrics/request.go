package metrics

import (
	"time"

	"mercator-hq/courier/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks inbound chat requests.
//
// Metrics:
//   - courier_requests_total: Request count by HTTP status
//   - courier_request_duration_seconds: End-to-end handler duration
//   - courier_extraction_source_total: Which extraction rule produced the reply
type RequestMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	extractionSource *prometheus.CounterVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total number of chat requests handled",
			},
			[]string{"status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of chat requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"status"},
		),

		extractionSource: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "extraction_source_total",
				Help:      "Number of replies by the extraction rule that produced them",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.extractionSource,
	)

	return rm
}

// RecordRequest records a completed request.
func (rm *RequestMetrics) RecordRequest(status string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(status).Inc()
	rm.requestDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordExtraction increments the counter for source.
func (rm *RequestMetrics) RecordExtraction(source string) {
	rm.extractionSource.WithLabelValues(source).Inc()
}
