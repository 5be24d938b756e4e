package secrets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"mercator-hq/courier/pkg/config"
)

// refPattern matches ${secret:name}.
var refPattern = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Manager resolves secrets through an ordered list of providers. The first
// provider that has a value wins; values are cached for the configured TTL.
type Manager struct {
	providers []Provider
	cache     *Cache
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithCacheTTL sets the cache TTL. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.cache = NewCache(ttl) }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager over providers, tried in order.
func NewManager(providers []Provider, opts ...Option) *Manager {
	m := &Manager{
		providers: providers,
		cache:     NewCache(config.DefaultSecretsCacheTTL),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManagerFromConfig builds the env provider and, when cfg.Dir is set,
// the file provider. The caller must Close the manager.
func NewManagerFromConfig(cfg config.SecretsConfig, logger *slog.Logger) (*Manager, error) {
	providers := []Provider{NewEnvProvider(cfg.EnvPrefix)}
	if cfg.Dir != "" {
		fp, err := NewFileProvider(cfg.Dir, cfg.Watch, logger)
		if err != nil {
			return nil, err
		}
		providers = append(providers, fp)
	}
	return NewManager(providers, WithCacheTTL(cfg.CacheTTL), WithLogger(logger)), nil
}

// Get returns the secret value for name.
func (m *Manager) Get(ctx context.Context, name string) (string, error) {
	if v, ok := m.cache.Get(name); ok {
		return v, nil
	}

	for _, p := range m.providers {
		v, err := p.Get(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("secret %q from %s provider: %w", name, p.Name(), err)
		}
		m.cache.Set(name, v)
		m.logger.DebugContext(ctx, "secret resolved", "name", maskName(name), "provider", p.Name())
		return v, nil
	}

	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

// ResolveReferences replaces every ${secret:name} in input. References that
// cannot be resolved are left in place and reported in the joined error.
func (m *Manager) ResolveReferences(ctx context.Context, input string) (string, error) {
	var errs []error
	out := refPattern.ReplaceAllStringFunc(input, func(ref string) string {
		name := refPattern.FindStringSubmatch(ref)[1]
		v, err := m.Get(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return ref
		}
		return v
	})
	return out, errors.Join(errs...)
}

// ResolveUpstream resolves references in the upstream credentials in place.
// Fields without references are left untouched.
func (m *Manager) ResolveUpstream(ctx context.Context, cfg *config.UpstreamConfig) error {
	var errs []error
	for _, f := range []struct {
		field string
		value *string
	}{
		{"upstream.app_id", &cfg.AppID},
		{"upstream.api_key", &cfg.APIKey},
	} {
		if !HasReference(*f.value) {
			continue
		}
		v, err := m.ResolveReferences(ctx, *f.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.field, err))
			continue
		}
		*f.value = v
	}
	return errors.Join(errs...)
}

// WatchUpstream re-resolves the references in base whenever a provider
// reports a change and passes the result to apply. It blocks until ctx is
// done and returns at once when base holds no references or no provider
// watches its source. A failed resolution is logged and apply is skipped,
// so the previous credentials stay in use.
func (m *Manager) WatchUpstream(ctx context.Context, base config.UpstreamConfig, apply func(config.UpstreamConfig)) {
	if !HasReference(base.AppID) && !HasReference(base.APIKey) {
		return
	}
	changes := m.changes()
	if changes == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			m.cache.Clear()
			cfg := base
			if err := m.ResolveUpstream(ctx, &cfg); err != nil {
				m.logger.WarnContext(ctx, "secret changed but upstream credentials could not be resolved; keeping previous", "error", err)
				continue
			}
			// A file caught mid-write reads empty; wait for the next event.
			if (HasReference(base.AppID) && cfg.AppID == "") || (HasReference(base.APIKey) && cfg.APIKey == "") {
				continue
			}
			apply(cfg)
			m.logger.InfoContext(ctx, "upstream credentials reloaded from secrets")
		}
	}
}

// changes returns the change channel of the first watching provider.
func (m *Manager) changes() <-chan struct{} {
	for _, p := range m.providers {
		if n, ok := p.(Notifier); ok {
			if ch := n.Changes(); ch != nil {
				return ch
			}
		}
	}
	return nil
}

// Refresh clears the cache and every provider that caches on its own.
func (m *Manager) Refresh(ctx context.Context) error {
	var errs []error
	for _, p := range m.providers {
		if r, ok := p.(Refresher); ok {
			if err := r.Refresh(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			}
		}
	}
	m.cache.Clear()
	return errors.Join(errs...)
}

// Close releases providers that hold resources.
func (m *Manager) Close() error {
	var errs []error
	for _, p := range m.providers {
		if c, ok := p.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// HasReference reports whether s contains a ${secret:name} reference.
func HasReference(s string) bool {
	return refPattern.MatchString(s)
}

func maskName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
