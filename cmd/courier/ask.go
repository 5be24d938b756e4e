package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/courier/pkg/cli"
	"mercator-hq/courier/pkg/client"
)

// defaultProxyURL is where `courier run` listens by default.
const defaultProxyURL = "http://127.0.0.1:8080"

var askFlags struct {
	url     string
	report  bool
	timeout time.Duration
}

var askCmd = &cobra.Command{
	Use:   "ask [prompt...]",
	Short: "Send one prompt to a running proxy",
	Long: `Send a single prompt to a running courier proxy and print the reply.

The arguments are joined with spaces to form the prompt. With --report the
daily report prompt for today is sent instead.

Examples:
  courier ask "berapa sisa stok gudang?"
  courier ask --url http://proxy:8080 apa kabar
  courier ask --report`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askFlags.url, "url", defaultProxyURL, "proxy base URL")
	askCmd.Flags().BoolVar(&askFlags.report, "report", false, "send today's report prompt")
	askCmd.Flags().DurationVar(&askFlags.timeout, "timeout", client.DefaultTimeout, "request timeout")
}

// newProxyClient builds a client for baseURL with the given timeout.
func newProxyClient(baseURL string, timeout time.Duration) (*client.Client, error) {
	c, err := client.New(baseURL, client.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, cli.NewConfigError("url", "invalid proxy URL", err)
	}
	return c, nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if askFlags.report {
		if prompt != "" {
			return errors.New("--report does not take a prompt")
		}
		prompt = client.ReportPrompt(time.Now())
	}
	if prompt == "" {
		return errors.New("prompt is required")
	}

	c, err := newProxyClient(askFlags.url, askFlags.timeout)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reply, err := c.Complete(cmd.Context(), prompt)
	if err != nil {
		fmt.Fprintln(out, client.ContactError)
		return cli.NewCommandError("ask", err)
	}
	if reply == "" {
		reply = client.NoResponse
	}
	fmt.Fprintln(out, reply)
	return nil
}
