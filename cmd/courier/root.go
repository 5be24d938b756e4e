package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/courier/pkg/cli"
	"mercator-hq/courier/pkg/config"
	"mercator-hq/courier/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "courier",
	Short: "Courier - chat completion proxy",
	Long: `Courier forwards chat prompts to a hosted completion application and
returns the reply text, keeping the completion credentials on the server.

Configuration comes from an optional YAML file (--config) with environment
overrides. APP_ID and API_KEY set the completion credentials.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code derived from the error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults plus environment when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig reads the configuration named by --config with environment
// overrides applied and makes it the process configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Initialize(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", "failed to load config", err)
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the process logger and installs it as the slog default.
func newLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	logger, err := logging.New(cfg, w)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", "invalid logging config", err)
	}
	slog.SetDefault(logger)
	return logger, nil
}
