package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider reads secrets from environment variables.
//
// A secret name is upper-cased, hyphens and dots become underscores, and
// the prefix is prepended:
//
//	"dashscope-api-key" -> "COURIER_SECRET_DASHSCOPE_API_KEY"
type EnvProvider struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnvProvider creates an environment provider with the given prefix.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix, lookup: os.LookupEnv}
}

// Get implements Provider. An empty variable counts as unset.
func (p *EnvProvider) Get(_ context.Context, name string) (string, error) {
	key := p.VarName(name)
	value, ok := p.lookup(key)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s (env var %s)", ErrNotFound, name, key)
	}
	return value, nil
}

// Name implements Provider.
func (p *EnvProvider) Name() string { return "env" }

// VarName returns the environment variable consulted for a secret name.
func (p *EnvProvider) VarName(name string) string {
	r := strings.NewReplacer("-", "_", ".", "_")
	return p.prefix + strings.ToUpper(r.Replace(name))
}
