package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidate_DefaultsAreValid(t *testing.T) {
	cfg := NewDefault()
	if err := Validate(&cfg); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestValidate_MissingCredentialsAllowed(t *testing.T) {
	cfg := NewTestConfig().WithUpstream(DefaultUpstreamBaseURL, "", "").Build()
	if err := Validate(cfg); err != nil {
		t.Errorf("missing app id and key must not fail validation: %v", err)
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "empty listen address",
			mutate:    func(c *Config) { c.Proxy.ListenAddress = "" },
			wantField: "proxy.listen_address",
		},
		{
			name:      "negative read timeout",
			mutate:    func(c *Config) { c.Proxy.ReadTimeout = -time.Second },
			wantField: "proxy.read_timeout",
		},
		{
			name:      "negative body limit",
			mutate:    func(c *Config) { c.Proxy.MaxBodyBytes = -1 },
			wantField: "proxy.max_body_bytes",
		},
		{
			name:      "write timeout not above upstream timeout",
			mutate:    func(c *Config) { c.Proxy.WriteTimeout = 10 * time.Second; c.Upstream.Timeout = 10 * time.Second },
			wantField: "proxy.write_timeout",
		},
		{
			name:      "empty base URL",
			mutate:    func(c *Config) { c.Upstream.BaseURL = "" },
			wantField: "upstream.base_url",
		},
		{
			name:      "base URL without host",
			mutate:    func(c *Config) { c.Upstream.BaseURL = "https://" },
			wantField: "upstream.base_url",
		},
		{
			name:      "negative upstream timeout",
			mutate:    func(c *Config) { c.Upstream.Timeout = -time.Second },
			wantField: "upstream.timeout",
		},
		{
			name:      "bad probe schedule",
			mutate:    func(c *Config) { c.Upstream.ProbeSchedule = "every now and then" },
			wantField: "upstream.probe_schedule",
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "loud" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "bad log format",
			mutate:    func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			wantField: "telemetry.logging.format",
		},
		{
			name:      "metrics path without slash",
			mutate:    func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			wantField: "telemetry.metrics.path",
		},
		{
			name:      "unsorted buckets",
			mutate:    func(c *Config) { c.Telemetry.Metrics.RequestDurationBuckets = []float64{1, 0.5} },
			wantField: "telemetry.metrics.request_duration_buckets",
		},
		{
			name: "bad sampler",
			mutate: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Sampler = "sometimes"
			},
			wantField: "telemetry.tracing.sampler",
		},
		{
			name: "ratio out of range",
			mutate: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.SampleRatio = 1.5
			},
			wantField: "telemetry.tracing.sample_ratio",
		},
		{
			name:      "watch without dir",
			mutate:    func(c *Config) { c.Secrets.Watch = true },
			wantField: "secrets.watch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig().Build()
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message %q", got)
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	got := multi.Error()
	if !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: worse") {
		t.Errorf("unexpected message %q", got)
	}
}
