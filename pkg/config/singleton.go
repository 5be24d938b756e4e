package config

import (
	"fmt"
	"sync"
)

// The command layer keeps the configuration it loaded last so that a failed
// reload can fall back to it. Other packages are handed their section of
// Config and never read it from here.
var (
	currentMu sync.RWMutex
	current   *Config
)

// Initialize loads path with environment overrides (defaults plus
// environment when path is empty) and makes the result current. On error
// the current configuration is unchanged.
func Initialize(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, err
	}
	SetConfig(cfg)
	return cfg, nil
}

// GetConfig returns the current configuration, or nil before Initialize.
func GetConfig() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetConfig makes cfg current.
func SetConfig(cfg *Config) {
	currentMu.Lock()
	current = cfg
	currentMu.Unlock()
}

// ReloadConfig loads path again and makes it current. When loading fails
// it returns the configuration that stays current (nil if there is none)
// together with the error.
func ReloadConfig(path string) (*Config, error) {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return GetConfig(), fmt.Errorf("failed to reload configuration: %w", err)
	}
	SetConfig(cfg)
	return cfg, nil
}
