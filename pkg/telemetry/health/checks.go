package health

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/courier/pkg/config"
	"mercator-hq/courier/pkg/upstream"
)

// UpstreamReporter exposes the passive health state of the upstream client.
type UpstreamReporter interface {
	Health() upstream.Health
}

// UpstreamCheck fails while the upstream client considers the completion
// service unhealthy. It reads tracked state only and sends no traffic.
func UpstreamCheck(r UpstreamReporter) CheckFunc {
	return func(ctx context.Context) error {
		h := r.Health()
		if h.Healthy {
			return nil
		}
		if h.LastError == "" {
			return fmt.Errorf("%d consecutive failures", h.ConsecutiveFailures)
		}
		return fmt.Errorf("%d consecutive failures: %s", h.ConsecutiveFailures, h.LastError)
	}
}

// CredentialSource reports the upstream credentials currently in use.
type CredentialSource interface {
	Credentials() upstream.Credentials
}

type fixedCredentials upstream.Credentials

func (f fixedCredentials) Credentials() upstream.Credentials { return upstream.Credentials(f) }

// ConfigCredentials returns a source that always reports the credentials
// in cfg.
func ConfigCredentials(cfg config.UpstreamConfig) CredentialSource {
	return fixedCredentials{AppID: cfg.AppID, APIKey: cfg.APIKey}
}

// CredentialsCheck fails when the application id or API key is empty.
// Requests are still forwarded without them; readiness only reports it.
func CredentialsCheck(src CredentialSource) CheckFunc {
	return func(ctx context.Context) error {
		creds := src.Credentials()
		var missing []error
		if creds.AppID == "" {
			missing = append(missing, errors.New("application id is not set"))
		}
		if creds.APIKey == "" {
			missing = append(missing, errors.New("API key is not set"))
		}
		return errors.Join(missing...)
	}
}
