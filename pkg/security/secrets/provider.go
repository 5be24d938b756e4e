package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Provider that has no value for a name.
// The Manager moves on to the next provider only for this error.
var ErrNotFound = errors.New("secret not found")

// Provider looks up secret values by name.
type Provider interface {
	// Get returns the value for name, or an error wrapping ErrNotFound.
	Get(ctx context.Context, name string) (string, error)

	// Name identifies the provider in logs ("env", "file").
	Name() string
}

// Refresher is a Provider that caches values and can drop them.
type Refresher interface {
	Provider
	Refresh(ctx context.Context) error
}

// Notifier is a Provider that reports when its values may have changed.
type Notifier interface {
	Provider
	// Changes receives after one or more values changed. It is nil when the
	// provider does not watch its source.
	Changes() <-chan struct{}
}
