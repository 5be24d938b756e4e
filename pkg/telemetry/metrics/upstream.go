package metrics

import (
	"time"

	"mercator-hq/courier/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks calls to the completion service.
//
// Metrics:
//   - courier_upstream_up: Upstream health (1=healthy, 0=unhealthy)
//   - courier_upstream_latency_seconds: Completion call latency by outcome kind
//   - courier_upstream_requests_total: Completion calls by outcome kind
//   - courier_upstream_errors_total: Failed completion calls by error kind
type UpstreamMetrics struct {
	up       prometheus.Gauge
	latency  *prometheus.HistogramVec
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		up: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "upstream_up",
				Help:      "Upstream health status (1=healthy, 0=unhealthy)",
			},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "upstream_latency_seconds",
				Help:      "Upstream completion call latency in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"kind"},
		),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream completion calls",
			},
			[]string{"kind"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "upstream_errors_total",
				Help:      "Total number of failed upstream completion calls by kind",
			},
			[]string{"kind"},
		),
	}

	// Optimistic until the first call or probe says otherwise.
	um.up.Set(1)

	registry.MustRegister(
		um.up,
		um.latency,
		um.requests,
		um.errors,
	)

	return um
}

// Observe records one call. kind "none" means success.
func (um *UpstreamMetrics) Observe(kind string, latency time.Duration) {
	um.requests.WithLabelValues(kind).Inc()
	um.latency.WithLabelValues(kind).Observe(latency.Seconds())
	if kind != "none" {
		um.errors.WithLabelValues(kind).Inc()
	}
}

// SetUp sets the health gauge.
func (um *UpstreamMetrics) SetUp(up bool) {
	if up {
		um.up.Set(1)
	} else {
		um.up.Set(0)
	}
}
