package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a ConfigBuilder whose result is valid as built.
func NewTestConfig() *ConfigBuilder {
	cfg := NewDefault()
	cfg.Upstream.AppID = "test-app"
	cfg.Upstream.APIKey = "sk-test"
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithListenAddress sets the proxy listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Proxy.ListenAddress = addr
	return b
}

// WithWriteTimeout sets the proxy write timeout.
func (b *ConfigBuilder) WithWriteTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Proxy.WriteTimeout = d
	return b
}

// WithUpstream sets the upstream base URL and credentials.
func (b *ConfigBuilder) WithUpstream(baseURL, appID, apiKey string) *ConfigBuilder {
	b.cfg.Upstream.BaseURL = baseURL
	b.cfg.Upstream.AppID = appID
	b.cfg.Upstream.APIKey = apiKey
	return b
}

// WithUpstreamTimeout sets the upstream call timeout.
func (b *ConfigBuilder) WithUpstreamTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Upstream.Timeout = d
	return b
}

// WithProbeSchedule sets the probe cron expression.
func (b *ConfigBuilder) WithProbeSchedule(expr string) *ConfigBuilder {
	b.cfg.Upstream.ProbeSchedule = expr
	return b
}

// WithLogLevel sets the logging level.
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithTracing enables tracing with the given sampler.
func (b *ConfigBuilder) WithTracing(sampler string, ratio float64) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = true
	b.cfg.Telemetry.Tracing.Sampler = sampler
	b.cfg.Telemetry.Tracing.SampleRatio = ratio
	return b
}

// WithSecretsDir sets the secrets directory.
func (b *ConfigBuilder) WithSecretsDir(dir string, watch bool) *ConfigBuilder {
	b.cfg.Secrets.Dir = dir
	b.cfg.Secrets.Watch = watch
	return b
}
