package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/courier/pkg/config"
)

func TestCORSMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	tests := []struct {
		name        string
		cfg         config.CORSConfig
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantOrigin  string
		wantMethods string
		wantMaxAge  string
	}{
		{
			name: "allowed origin is echoed",
			cfg: config.CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"https://example.com"},
			},
			method:     http.MethodPost,
			origin:     "https://example.com",
			wantStatus: http.StatusOK,
			wantOrigin: "https://example.com",
		},
		{
			name: "unknown origin gets nothing",
			cfg: config.CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"https://example.com"},
			},
			method:     http.MethodPost,
			origin:     "https://evil.example",
			wantStatus: http.StatusOK,
			wantOrigin: "",
		},
		{
			name: "wildcard",
			cfg: config.CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
			},
			method:     http.MethodPost,
			origin:     "https://any-origin.com",
			wantStatus: http.StatusOK,
			wantOrigin: "*",
		},
		{
			name: "preflight",
			cfg: config.CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type"},
				MaxAge:         3600,
			},
			method:      http.MethodOptions,
			origin:      "https://app.example",
			preflight:   true,
			wantStatus:  http.StatusNoContent,
			wantOrigin:  "*",
			wantMethods: "GET, POST, OPTIONS",
			wantMaxAge:  "3600",
		},
		{
			name: "disabled",
			cfg: config.CORSConfig{
				Enabled:        false,
				AllowedOrigins: []string{"*"},
			},
			method:     http.MethodOptions,
			origin:     "https://app.example",
			preflight:  true,
			wantStatus: http.StatusOK,
			wantOrigin: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := CORSMiddleware(tt.cfg)(handler)

			req := httptest.NewRequest(tt.method, "/api/chat", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := w.Header().Get("Access-Control-Allow-Methods"); got != tt.wantMethods {
				t.Errorf("Allow-Methods = %q, want %q", got, tt.wantMethods)
			}
			if got := w.Header().Get("Access-Control-Max-Age"); got != tt.wantMaxAge {
				t.Errorf("Max-Age = %q, want %q", got, tt.wantMaxAge)
			}
		})
	}
}

func TestCORSMiddleware_Defaults(t *testing.T) {
	cfg := config.NewDefault().Proxy.CORS

	wrapped := CORSMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	wrapped.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "X-Request-ID" {
		t.Errorf("Expose-Headers = %q", got)
	}
}
