package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/courier/pkg/cli"
	"mercator-hq/courier/pkg/client"
)

// Chat commands recognised at the prompt.
const (
	chatCmdReport = "/laporan"
	chatCmdExit   = "/exit"
	chatCmdQuit   = "/quit"
)

var chatFlags struct {
	url     string
	timeout time.Duration
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat with a running proxy",
	Long: `Start an interactive conversation with a running courier proxy.

Each line is sent as one prompt. The proxy keeps no history; every prompt
stands on its own.

Commands:
  /laporan   send today's report prompt
  /exit      leave (also /quit or Ctrl+D)`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatFlags.url, "url", defaultProxyURL, "proxy base URL")
	chatCmd.Flags().DurationVar(&chatFlags.timeout, "timeout", client.DefaultTimeout, "request timeout per prompt")
}

func runChat(cmd *cobra.Command, args []string) error {
	c, err := newProxyClient(chatFlags.url, chatFlags.timeout)
	if err != nil {
		return err
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connected to %s. Type %s for today's report, %s to leave.\n",
		c.Endpoint(), chatCmdReport, chatCmdExit)

	session := client.NewSession(c, slog.Default())
	return chatLoop(ctx, cmd.InOrStdin(), out, session, spinnerWriter(out), time.Now)
}

// chatLoop reads prompts from in until EOF, an exit command or ctx is done.
// spin receives the waiting indicator; io.Discard disables it.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, s *client.Session, spin io.Writer, now func() time.Time) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	waiting := cli.NewWaiting(spin, "")
	for {
		fmt.Fprint(out, "> ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		var prompt string
		switch line {
		case "":
			continue
		case chatCmdExit, chatCmdQuit:
			return nil
		case chatCmdReport:
			prompt = client.ReportPrompt(now())
		default:
			prompt = line
		}

		waiting.Start()
		reply, ok := s.Send(ctx, prompt)
		waiting.Stop()
		if ok {
			fmt.Fprintln(out, reply.Content)
		}
	}
}

// spinnerWriter returns w when it is a terminal and io.Discard otherwise.
func spinnerWriter(w io.Writer) io.Writer {
	f, ok := w.(*os.File)
	if !ok {
		return io.Discard
	}
	info, err := f.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return io.Discard
	}
	return w
}
