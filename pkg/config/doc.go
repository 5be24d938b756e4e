// Package config provides configuration management for Courier.
//
// Configuration is loaded from an optional YAML file, completed with
// defaults, overridden from the environment and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variables
//
//   - APP_ID overrides upstream.app_id
//   - API_KEY overrides upstream.api_key
//   - COURIER_LISTEN_ADDRESS overrides proxy.listen_address
//   - COURIER_UPSTREAM_BASE_URL overrides upstream.base_url
//   - COURIER_UPSTREAM_TIMEOUT overrides upstream.timeout
//   - COURIER_LOG_LEVEL overrides telemetry.logging.level
//   - COURIER_METRICS_ENABLED overrides telemetry.metrics.enabled
//   - COURIER_TRACING_ENABLED overrides telemetry.tracing.enabled
//
// Environment values are read once, when configuration is loaded. The proxy
// receives an UpstreamConfig at construction time and never reads the
// environment while serving requests.
//
// # Current configuration
//
// Initialize loads and records the configuration for the command layer;
// ReloadConfig replaces it only when the new file is valid. Library
// packages take their configuration section as a parameter.
package config
