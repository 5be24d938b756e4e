package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/courier/internal/testutil"
	"mercator-hq/courier/pkg/cli"
	"mercator-hq/courier/pkg/client"
	"mercator-hq/courier/pkg/config"
	"mercator-hq/courier/pkg/server"
	"mercator-hq/courier/pkg/telemetry/metrics"
	"mercator-hq/courier/pkg/upstream"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// newProxy runs the full proxy handler in front of a mock completion service.
func newProxy(t *testing.T) (*httptest.Server, *testutil.CompletionServer) {
	t.Helper()

	mock := testutil.NewCompletionServer()
	t.Cleanup(mock.Close)

	cfg := config.NewDefault()
	cfg.Upstream.BaseURL = mock.URL()
	cfg.Upstream.AppID = "app-123"
	cfg.Upstream.APIKey = "sk-test"
	cfg.Upstream.Timeout = 2 * time.Second

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
	up := upstream.NewClient(cfg.Upstream, upstream.WithObserver(collector), upstream.WithLogger(quietLogger))
	srv := server.New(&cfg, up, server.WithLogger(quietLogger), server.WithMetrics(collector))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, mock
}

func runAskWith(t *testing.T, url string, report bool, args ...string) (string, error) {
	t.Helper()

	orig := askFlags
	t.Cleanup(func() {
		askFlags = orig
		askCmd.SetOut(nil)
	})
	askFlags.url = url
	askFlags.report = report
	askFlags.timeout = 5 * time.Second

	var buf bytes.Buffer
	askCmd.SetOut(&buf)
	askCmd.SetContext(context.Background())
	err := runAsk(askCmd, args)
	return buf.String(), err
}

func TestAsk(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		response testutil.MockResponse
		want     string
	}{
		{
			name:     "text reply",
			args:     []string{"apa", "kabar?"},
			response: testutil.MockResponse{StatusCode: http.StatusOK, Body: testutil.TextResponse("  baik  ")},
			want:     "baik\n",
		},
		{
			name:     "choices reply",
			args:     []string{"halo"},
			response: testutil.MockResponse{StatusCode: http.StatusOK, Body: testutil.ChoicesResponse("dari choices")},
			want:     "dari choices\n",
		},
		{
			name:     "upstream error message is shown",
			args:     []string{"halo"},
			response: testutil.NestedErrorEnvelope(http.StatusUnauthorized, "Invalid API-key provided."),
			want:     "Invalid API-key provided.\n",
		},
		{
			name:     "empty output text falls back to raw JSON",
			args:     []string{"halo"},
			response: testutil.MockResponse{StatusCode: http.StatusOK, Body: map[string]any{"output": map[string]any{"text": ""}}},
			want:     `{"output":{"text":""}}` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, mock := newProxy(t)
			mock.SetResponse(tt.response)

			out, err := runAskWith(t, ts.URL, false, tt.args...)
			if err != nil {
				t.Fatalf("runAsk: %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}

			req, ok := mock.LastRequest()
			if !ok {
				t.Fatal("upstream received no request")
			}
			want := `{"input":{"prompt":"` + strings.Join(tt.args, " ") + `"},"parameters":{},"debug":{}}`
			if err := testutil.ExpectJSONBody(req, want); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestAskReport(t *testing.T) {
	ts, mock := newProxy(t)

	if _, err := runAskWith(t, ts.URL, true); err != nil {
		t.Fatalf("runAsk: %v", err)
	}
	req, ok := mock.LastRequest()
	if !ok {
		t.Fatal("upstream received no request")
	}
	if !strings.Contains(string(req.Body), "ringkasan laporan ") {
		t.Errorf("report prompt not sent: %s", req.Body)
	}

	if _, err := runAskWith(t, ts.URL, true, "extra"); err == nil {
		t.Error("expected error when --report is combined with a prompt")
	}
}

func TestAskErrors(t *testing.T) {
	t.Run("blank prompt", func(t *testing.T) {
		_, err := runAskWith(t, "http://127.0.0.1:1", false, "  ")
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := runAskWith(t, "ftp://proxy", false, "halo")
		if cli.ExitCode(err) != cli.ExitConfig {
			t.Fatalf("ExitCode = %d, want %d (err %v)", cli.ExitCode(err), cli.ExitConfig, err)
		}
	})

	t.Run("proxy unreachable", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		out, err := runAskWith(t, url, false, "halo")
		var cmdErr *cli.CommandError
		if !errors.As(err, &cmdErr) {
			t.Fatalf("expected CommandError, got %v", err)
		}
		if strings.TrimSpace(out) != client.ContactError {
			t.Errorf("output = %q, want %q", out, client.ContactError)
		}
	})
}
