package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"mercator-hq/courier/pkg/config"
)

func newTestLogger(t *testing.T, cfg config.LoggingConfig) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := New(cfg, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return logger, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	return entry
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"bad level", config.LoggingConfig{Level: "loud"}},
		{"bad format", config.LoggingConfig{Format: "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, &bytes.Buffer{}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{Level: "warn", Format: "json"})

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %s", buf.String())
	}

	logger.Warn("shown")
	if entry := decodeLine(t, buf); entry["msg"] != "shown" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{Level: "info", Format: "text"})
	logger.Info("hello", "status", 200)

	out := buf.String()
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "status=200") {
		t.Errorf("unexpected text output %q", out)
	}
}

func TestNew_ContextFields(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{Level: "info", Format: "json"})

	ctx := WithRequestID(context.Background(), "req-123")
	logger.InfoContext(ctx, "chat completed")

	entry := decodeLine(t, buf)
	if entry["request_id"] != "req-123" {
		t.Errorf("request_id = %v", entry["request_id"])
	}
	if _, ok := entry["trace_id"]; ok {
		t.Error("trace_id should be absent without a span")
	}
}

func TestNew_Redaction(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{Level: "info", Format: "json", Redact: true})

	logger.With("api_key", "sk-abcdef123456").Info(
		"calling upstream with Authorization: Bearer sk-abcdef123456",
		"error", errors.New("upstream rejected key sk-abcdef123456"),
		slog.Group("upstream", slog.String("authorization", "Bearer xyz987654")),
	)

	out := buf.String()
	if strings.Contains(out, "abcdef123456") || strings.Contains(out, "xyz987654") {
		t.Fatalf("secret leaked into log output: %s", out)
	}

	entry := decodeLine(t, buf)
	if entry["api_key"] != "sk-a***" {
		t.Errorf("api_key = %v", entry["api_key"])
	}
	if !strings.Contains(entry["msg"].(string), "Bearer ***") {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestNew_RedactionDisabled(t *testing.T) {
	logger, buf := newTestLogger(t, config.LoggingConfig{Level: "info", Format: "json", Redact: false})
	logger.Info("Bearer sk-visible1234")

	if !strings.Contains(buf.String(), "sk-visible1234") {
		t.Error("redaction should be off")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
