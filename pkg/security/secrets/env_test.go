package secrets

import (
	"context"
	"errors"
	"testing"
)

func TestEnvProvider_Get(t *testing.T) {
	t.Setenv("COURIER_SECRET_DASHSCOPE_API_KEY", "sk-test")
	t.Setenv("COURIER_SECRET_EMPTY", "")

	p := NewEnvProvider("COURIER_SECRET_")

	value, err := p.Get(context.Background(), "dashscope-api-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "sk-test" {
		t.Errorf("expected value 'sk-test', got %q", value)
	}

	for _, name := range []string{"missing", "empty"} {
		_, err := p.Get(context.Background(), name)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) error = %v, want ErrNotFound", name, err)
		}
	}
}

func TestEnvProvider_VarName(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"COURIER_SECRET_", "api-key", "COURIER_SECRET_API_KEY"},
		{"COURIER_SECRET_", "app.id", "COURIER_SECRET_APP_ID"},
		{"", "Mixed-Case", "MIXED_CASE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewEnvProvider(tt.prefix).VarName(tt.name); got != tt.want {
				t.Errorf("VarName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
