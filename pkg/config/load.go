package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read at load time. AppIDEnv and APIKeyEnv keep the
// names used by existing deployments.
const (
	AppIDEnv  = "APP_ID"
	APIKeyEnv = "API_KEY"

	EnvListenAddress   = "COURIER_LISTEN_ADDRESS"
	EnvUpstreamBaseURL = "COURIER_UPSTREAM_BASE_URL"
	EnvUpstreamTimeout = "COURIER_UPSTREAM_TIMEOUT"
	EnvLogLevel        = "COURIER_LOG_LEVEL"
	EnvMetricsEnabled  = "COURIER_METRICS_ENABLED"
	EnvTracingEnabled  = "COURIER_TRACING_ENABLED"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It decodes on top of NewDefault, applies remaining defaults and validates.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration without validating it.
func Parse(data []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration and applies environment
// variable overrides. An empty path skips the file and starts from defaults.
//
// The loading sequence is:
// 1. Load YAML from file (or NewDefault when path is empty)
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		def := NewDefault()
		cfg = &def
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyEnvOverrides(cfg, os.LookupEnv)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnvOverrides applies environment overrides using lookup. APP_ID and
// API_KEY override when set, even to an empty string, so a deployment can
// blank a value from the file. Unparseable durations and booleans are
// ignored.
func ApplyEnvOverrides(cfg *Config, lookup LookupFunc) {
	if val, ok := lookup(AppIDEnv); ok {
		cfg.Upstream.AppID = val
	}
	if val, ok := lookup(APIKeyEnv); ok {
		cfg.Upstream.APIKey = val
	}

	if val, ok := lookup(EnvListenAddress); ok && val != "" {
		cfg.Proxy.ListenAddress = val
	}
	if val, ok := lookup(EnvUpstreamBaseURL); ok && val != "" {
		cfg.Upstream.BaseURL = val
	}
	if val, ok := lookup(EnvUpstreamTimeout); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Upstream.Timeout = d
		}
	}
	if val, ok := lookup(EnvLogLevel); ok && val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val, ok := lookup(EnvMetricsEnabled); ok && val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val, ok := lookup(EnvTracingEnabled); ok && val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
}
