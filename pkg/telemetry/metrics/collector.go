package metrics

import (
	"strconv"
	"time"

	"mercator-hq/courier/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns every Prometheus metric exported by the proxy. It
// satisfies upstream.Observer so the upstream client can report into it
// directly.
//
// All Record methods are no-ops when metrics are disabled, so callers never
// need to guard them.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	upstreamMetrics *UpstreamMetrics
}

// NewCollector creates a collector registered against registry. A nil
// registry gets a fresh one with the Go runtime and process collectors.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	upstreamClient := upstream.NewClient(cfg.Upstream, upstream.WithObserver(collector))
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = append([]float64(nil), config.DefaultRequestDurationBuckets...)
	}

	return &Collector{
		config:          cfg,
		registry:        registry,
		requestMetrics:  NewRequestMetrics(cfg, registry),
		upstreamMetrics: NewUpstreamMetrics(cfg, registry),
	}
}

// RecordRequest records one completed /api/chat request by its HTTP status.
func (c *Collector) RecordRequest(statusCode int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordRequest(strconv.Itoa(statusCode), duration)
}

// RecordExtraction records which reply-extraction rule produced the result
// text ("choices", "text", "raw" or "fallback").
func (c *Collector) RecordExtraction(source string) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordExtraction(source)
}

// ObserveUpstream records one upstream completion call.
func (c *Collector) ObserveUpstream(kind string, latency time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.upstreamMetrics.Observe(kind, latency)
}

// SetUpstreamUp updates the upstream health gauge (1=healthy, 0=unhealthy).
func (c *Collector) SetUpstreamUp(up bool) {
	if !c.config.Enabled {
		return
	}
	c.upstreamMetrics.SetUp(up)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
