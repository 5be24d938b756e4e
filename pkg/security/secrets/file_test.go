package secrets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeSecret(t *testing.T, dir, name, value string, perm os.FileMode) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(value), perm); err != nil {
		t.Fatal(err)
	}
	// WriteFile does not chmod an existing file.
	if err := os.Chmod(path, perm); err != nil {
		t.Fatal(err)
	}
}

func newFileProvider(t *testing.T, dir string, watch bool) *FileProvider {
	t.Helper()
	p, err := NewFileProvider(dir, watch, quietLogger)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestFileProvider_Get(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "api-key", "sk-file\n", 0o600)
	writeSecret(t, dir, "readonly", "  ro  ", 0o400)

	p := newFileProvider(t, dir, false)

	tests := []struct {
		name string
		want string
	}{
		{"api-key", "sk-file"},
		{"readonly", "ro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Get(context.Background(), tt.name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestFileProvider_Errors(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "open", "value", 0o644)
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o700); err != nil {
		t.Fatal(err)
	}

	p := newFileProvider(t, dir, false)

	tests := []struct {
		name         string
		secret       string
		wantNotFound bool
		wantContains string
	}{
		{name: "missing", secret: "nope", wantNotFound: true},
		{name: "insecure permissions", secret: "open", wantContains: "insecure permissions"},
		{name: "directory", secret: "subdir", wantContains: "not a regular file"},
		{name: "traversal", secret: "../etc/passwd", wantContains: "invalid secret name"},
		{name: "nested", secret: "a/b", wantContains: "invalid secret name"},
		{name: "hidden", secret: ".env", wantContains: "invalid secret name"},
		{name: "empty", secret: "", wantContains: "invalid secret name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Get(context.Background(), tt.secret)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got := errors.Is(err, ErrNotFound); got != tt.wantNotFound {
				t.Errorf("errors.Is(ErrNotFound) = %v, want %v (%v)", got, tt.wantNotFound, err)
			}
			if tt.wantContains != "" && !strings.Contains(err.Error(), tt.wantContains) {
				t.Errorf("error %q does not contain %q", err, tt.wantContains)
			}
		})
	}
}

func TestNewFileProvider_InvalidDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain")
	writeSecret(t, dir, "plain", "x", 0o600)

	if _, err := NewFileProvider(filepath.Join(dir, "missing"), false, nil); err == nil {
		t.Error("expected error for missing directory")
	}
	if _, err := NewFileProvider(file, false, nil); err == nil {
		t.Error("expected error for non-directory")
	}
}

func TestFileProvider_CachesUntilRefresh(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "token", "v1", 0o600)

	p := newFileProvider(t, dir, false)
	ctx := context.Background()

	if got, _ := p.Get(ctx, "token"); got != "v1" {
		t.Fatalf("Get = %q, want v1", got)
	}

	writeSecret(t, dir, "token", "v2", 0o600)
	if got, _ := p.Get(ctx, "token"); got != "v1" {
		t.Errorf("Get before refresh = %q, want cached v1", got)
	}

	if err := p.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := p.Get(ctx, "token"); got != "v2" {
		t.Errorf("Get after refresh = %q, want v2", got)
	}
}

func TestFileProvider_WatchEvictsChangedFile(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "token", "v1", 0o600)

	p := newFileProvider(t, dir, true)
	ctx := context.Background()

	if got, _ := p.Get(ctx, "token"); got != "v1" {
		t.Fatalf("Get = %q, want v1", got)
	}

	writeSecret(t, dir, "token", "v2", 0o600)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if got, _ := p.Get(ctx, "token"); got == "v2" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("watcher did not evict the changed secret")
}

func TestFileProvider_Changes(t *testing.T) {
	dir := t.TempDir()
	writeSecret(t, dir, "token", "v1", 0o600)

	if ch := newFileProvider(t, dir, false).Changes(); ch != nil {
		t.Error("Changes() should be nil without watch")
	}

	p := newFileProvider(t, dir, true)
	writeSecret(t, dir, "token", "v2", 0o600)

	select {
	case <-p.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification after the secret was rewritten")
	}
}

func TestFileProvider_CloseIsIdempotent(t *testing.T) {
	p, err := NewFileProvider(t.TempDir(), true, quietLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
