package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"mercator-hq/courier/pkg/cli"
	"mercator-hq/courier/pkg/config"
	"mercator-hq/courier/pkg/security/secrets"
	"mercator-hq/courier/pkg/upstream"
)

var validateFlags struct {
	watch  bool
	output string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Load the configuration with environment overrides applied and report
what the proxy would run with. Credentials are never printed.

Examples:
  # Validate defaults plus environment
  courier validate

  # Validate a config file
  courier validate --config config.yaml

  # Re-validate every time the file changes
  courier validate --config config.yaml --watch

  # Machine-readable summary
  courier validate --output json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVarP(&validateFlags.watch, "watch", "w", false, "re-validate when the config file changes")
	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "text", "output format: text, json")
}

// Credential states reported by validate.
const (
	credentialSet       = "set"
	credentialReference = "secret reference"
	credentialMissing   = "missing"
)

type configSummary struct {
	Source         string `json:"source"`
	ListenAddress  string `json:"listen_address"`
	CompletionURL  string `json:"completion_url"`
	Timeout        string `json:"timeout"`
	AppID          string `json:"app_id"`
	APIKey         string `json:"api_key"`
	Metrics        string `json:"metrics"`
	Tracing        string `json:"tracing"`
	ProbeSchedule  string `json:"probe_schedule"`
	SecretsDir     string `json:"secrets_dir,omitempty"`
	CredentialsSet bool   `json:"credentials_set"`
}

func (s configSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Configuration valid (%s)\n", s.Source)
	fmt.Fprintf(&b, "  Listen address:  %s\n", s.ListenAddress)
	fmt.Fprintf(&b, "  Completion URL:  %s\n", s.CompletionURL)
	fmt.Fprintf(&b, "  Timeout:         %s\n", s.Timeout)
	fmt.Fprintf(&b, "  APP_ID:          %s\n", s.AppID)
	fmt.Fprintf(&b, "  API_KEY:         %s\n", s.APIKey)
	fmt.Fprintf(&b, "  Metrics:         %s\n", s.Metrics)
	fmt.Fprintf(&b, "  Tracing:         %s\n", s.Tracing)
	fmt.Fprintf(&b, "  Probe schedule:  %s", s.ProbeSchedule)
	if s.SecretsDir != "" {
		fmt.Fprintf(&b, "\n  Secrets dir:     %s", s.SecretsDir)
	}
	if !s.CredentialsSet {
		b.WriteString("\n⚠ Upstream credentials incomplete; /ready will report degraded")
	}
	return b.String()
}

func summarize(cfg *config.Config, source string) configSummary {
	client := upstream.NewClient(cfg.Upstream)
	defer client.Close()

	s := configSummary{
		Source:        source,
		ListenAddress: cfg.Proxy.ListenAddress,
		CompletionURL: client.CompletionURL(),
		Timeout:       cfg.Upstream.Timeout.String(),
		AppID:         credentialState(cfg.Upstream.AppID),
		APIKey:        credentialState(cfg.Upstream.APIKey),
		Metrics:       "disabled",
		Tracing:       "disabled",
		ProbeSchedule: cfg.Upstream.ProbeSchedule,
		SecretsDir:    cfg.Secrets.Dir,
	}
	s.CredentialsSet = s.AppID != credentialMissing && s.APIKey != credentialMissing
	if cfg.Telemetry.Metrics.Enabled {
		s.Metrics = "enabled at " + cfg.Telemetry.Metrics.Path
	}
	if cfg.Telemetry.Tracing.Enabled {
		s.Tracing = "enabled, exporting to " + cfg.Telemetry.Tracing.Endpoint
	}
	return s
}

func credentialState(v string) string {
	switch {
	case v == "":
		return credentialMissing
	case secrets.HasReference(v):
		return credentialReference
	default:
		return credentialSet
	}
}

// validateOnce loads path (or defaults when empty) and writes the summary.
func validateOnce(w io.Writer, f cli.Formatter, path string) error {
	cfg, err := config.Initialize(path)
	if err != nil {
		return cli.NewConfigError("", "invalid configuration", err)
	}
	return f.FormatTo(w, summarize(cfg, sourceName(path)))
}

// revalidate reloads path after a change. When the new content is invalid
// the last valid configuration is named so the user knows what still holds.
func revalidate(w io.Writer, f cli.Formatter, path string) error {
	cfg, err := config.ReloadConfig(path)
	if err != nil {
		if cfg != nil {
			fmt.Fprintf(w, "  Last valid configuration: listen %s, upstream %s\n",
				cfg.Proxy.ListenAddress, cfg.Upstream.BaseURL)
		}
		return cli.NewConfigError("", "invalid configuration", err)
	}
	return f.FormatTo(w, summarize(cfg, sourceName(path)))
}

func sourceName(path string) string {
	if path == "" {
		return "defaults + environment"
	}
	return path
}

func runValidate(cmd *cobra.Command, args []string) error {
	f, err := cli.NewFormatter(cli.OutputFormat(validateFlags.output))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !validateFlags.watch {
		return validateOnce(out, f, cfgFile)
	}
	if cfgFile == "" {
		return cli.NewConfigError("config", "--watch requires --config", nil)
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()
	return watchConfig(ctx, out, f, cfgFile)
}

// watchConfig validates path now and after every change until ctx is done.
// Validation failures are reported and watching continues.
func watchConfig(ctx context.Context, w io.Writer, f cli.Formatter, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return cli.NewCommandError("validate", fmt.Errorf("create watcher: %w", err))
	}
	defer watcher.Close()

	// Editors replace files on save, so watch the directory and filter.
	abs, err := filepath.Abs(path)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return cli.NewCommandError("validate", fmt.Errorf("watch %s: %w", filepath.Dir(abs), err))
	}

	report := func() {
		if err := revalidate(w, f, path); err != nil {
			fmt.Fprintf(w, "✗ %v\n", err)
		}
	}
	if err := validateOnce(w, f, path); err != nil {
		fmt.Fprintf(w, "✗ %v\n", err)
	}
	fmt.Fprintf(w, "Watching %s for changes (Ctrl+C to stop)\n", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			fmt.Fprintf(w, "\n%s changed\n", path)
			report()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				report()
				continue
			}
			return cli.NewCommandError("validate", err)
		}
	}
}
