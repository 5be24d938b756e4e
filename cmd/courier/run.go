package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/courier/pkg/cli"
	"mercator-hq/courier/pkg/config"
	"mercator-hq/courier/pkg/security/secrets"
	"mercator-hq/courier/pkg/server"
	"mercator-hq/courier/pkg/telemetry/metrics"
	"mercator-hq/courier/pkg/telemetry/tracing"
	"mercator-hq/courier/pkg/upstream"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the chat proxy",
	Long: `Start the chat proxy with the specified configuration.

The server listens on the configured address and forwards POST /api/chat
prompts to the completion application.

Examples:
  # Start with defaults, credentials from the environment
  APP_ID=... API_KEY=... courier run

  # Start with a config file
  courier run --config /etc/courier/config.yaml

  # Override listen address
  courier run --listen 0.0.0.0:8080

  # Resolve secrets and validate config without starting the server
  courier run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := newLogger(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	// Keep the unresolved credentials so rotated secrets can be re-read.
	secretRefs := cfg.Upstream
	mgr, err := resolveSecrets(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer mgr.Close()

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	printBanner(out, cfg)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", "failed to initialize tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	client := upstream.NewClient(cfg.Upstream,
		upstream.WithObserver(collector),
		upstream.WithTracer(tracer.Tracer()),
		upstream.WithLogger(logger),
	)
	defer client.Close()
	fmt.Fprintf(out, "✓ Upstream: %s\n", client.CompletionURL())

	go mgr.WatchUpstream(ctx, secretRefs, func(u config.UpstreamConfig) {
		client.SetCredentials(upstream.Credentials{AppID: u.AppID, APIKey: u.APIKey})
	})

	prober := upstream.NewProber(client, cfg.Upstream.ProbeSchedule)
	if err := prober.Start(ctx); err != nil {
		logger.Warn("failed to start upstream prober", "error", err)
	} else {
		defer prober.Stop()
		if next := prober.NextRun(); next != nil {
			logger.Debug("upstream prober started", "next_probe", next)
		}
	}

	srv := server.New(cfg, client,
		server.WithLogger(logger),
		server.WithMetrics(collector),
		server.WithTracer(tracer.Tracer()),
		server.WithUpstreamHealth(client),
		server.WithBuildInfo(server.BuildInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate}),
	)

	errChan := make(chan error, 1)
	go func() { errChan <- srv.Start(ctx) }()

	addrCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	addr, addrErr := srv.Addr(addrCtx)
	cancel()
	if addrErr != nil {
		// Start failed before binding; its error explains why.
		return cli.NewCommandError("run", <-errChan)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "✓ Server listening on %s\n", addr)
	fmt.Fprintf(out, "✓ Chat endpoint: http://%s%s\n", addr, server.ChatPath)
	fmt.Fprintf(out, "✓ Health endpoint: http://%s%s\n", addr, server.HealthPath)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", addr, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := <-errChan; err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// resolveSecrets replaces ${secret:name} references in the upstream
// credentials and returns the manager, which the caller must Close.
// Credentials are not required; a missing one only makes /ready report
// degraded.
func resolveSecrets(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*secrets.Manager, error) {
	mgr, err := secrets.NewManagerFromConfig(cfg.Secrets, logger)
	if err != nil {
		return nil, cli.NewConfigError("secrets", "failed to initialize secrets", err)
	}

	if err := mgr.ResolveUpstream(ctx, &cfg.Upstream); err != nil {
		_ = mgr.Close()
		return nil, cli.NewConfigError("", "failed to resolve secrets", err)
	}
	if cfg.Upstream.AppID == "" || cfg.Upstream.APIKey == "" {
		logger.Warn("upstream credentials incomplete; requests will be rejected upstream",
			"app_id_set", cfg.Upstream.AppID != "",
			"api_key_set", cfg.Upstream.APIKey != "",
		)
	}
	return mgr, nil
}

func printBanner(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Courier v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(w, "Loading configuration from: %s\n", cfgFile)
	}
	fmt.Fprintln(w, "✓ Configuration loaded")

	slog.Debug("upstream configured",
		"base_url", cfg.Upstream.BaseURL,
		"timeout", cfg.Upstream.Timeout.String(),
		"probe_schedule", cfg.Upstream.ProbeSchedule,
	)
	if cfg.Telemetry.Tracing.Enabled {
		slog.Debug("tracing enabled", "endpoint", cfg.Telemetry.Tracing.Endpoint)
	}
}
