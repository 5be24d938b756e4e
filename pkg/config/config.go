package config

import "time"

// Config is the root configuration structure for Courier.
type Config struct {
	// Proxy contains HTTP server configuration including listen address,
	// timeouts, and body limits.
	Proxy ProxyConfig `yaml:"proxy"`

	// Upstream describes the completion service every chat request is
	// forwarded to.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Secrets configures how ${secret:name} references in the upstream
	// credentials are resolved.
	Secrets SecretsConfig `yaml:"secrets"`
}

// ProxyConfig contains configuration for the HTTP server.
type ProxyConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must be longer than Upstream.Timeout, otherwise a slow
	// upstream leaves the client without any response body.
	// Default: 90s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the inbound /api/chat body. Larger bodies are
	// truncated and fail to decode.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are written.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists allowed origins. ["*"] allows any origin.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists allowed methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists allowed request headers.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders lists response headers visible to browsers.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache duration in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// UpstreamConfig describes the completion service.
type UpstreamConfig struct {
	// BaseURL is the scheme and host of the completion API.
	// Default: "https://dashscope-intl.aliyuncs.com"
	BaseURL string `yaml:"base_url"`

	// AppID is the application identifier placed in the completion path.
	// Overridden by the APP_ID environment variable. May be a
	// ${secret:name} reference. No default and no presence check.
	AppID string `yaml:"app_id"`

	// APIKey is the bearer credential. Overridden by the API_KEY
	// environment variable. May be a ${secret:name} reference.
	APIKey string `yaml:"api_key"`

	// Timeout bounds a single completion call end to end. Expiry is
	// reported to the caller as a failed request.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns sizes the outbound connection pool.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// IdleConnTimeout closes pooled connections idle for this long.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	// ProbeSchedule is a standard five-field cron expression for the
	// reachability probe. Empty disables probing.
	// Default: "*/5 * * * *"
	ProbeSchedule string `yaml:"probe_schedule"`

	// ProbeTimeout bounds a single probe.
	// Default: 5s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Redact masks bearer tokens and API keys in log output.
	// Default: true
	Redact bool `yaml:"redact"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "courier"
	Namespace string `yaml:"namespace"`

	// RequestDurationBuckets defines histogram buckets in seconds, used for
	// both the inbound request and the upstream call.
	// Default: [0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// ServiceName is reported as service.name.
	// Default: "courier"
	ServiceName string `yaml:"service_name"`
}

// SecretsConfig configures secret reference resolution.
type SecretsConfig struct {
	// EnvPrefix is prepended to the upper-cased secret name when looking it
	// up in the environment.
	// Default: "COURIER_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir holds one file per secret. Empty disables the file provider.
	Dir string `yaml:"dir"`

	// Watch re-reads file secrets when they change on disk and applies
	// rotated upstream credentials to the running proxy.
	// Default: false
	Watch bool `yaml:"watch"`

	// CacheTTL is how long resolved secrets are cached.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}
