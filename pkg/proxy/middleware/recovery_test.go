package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mercator-hq/courier/internal/testutil"
)

func TestRecoveryMiddleware(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantResult string
		wantBody   string
	}{
		{
			name: "recovers from panic with string",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("test panic")
			},
			wantStatus: http.StatusInternalServerError,
			wantResult: "internal error: test panic",
		},
		{
			name: "recovers from panic with error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic(errors.New("nil map write"))
			},
			wantStatus: http.StatusInternalServerError,
			wantResult: "internal error: nil map write",
		},
		{
			name: "passes through normal requests",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("OK"))
			},
			wantStatus: http.StatusOK,
			wantBody:   "OK",
		},
		{
			name: "panic after response started",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
				_, _ = w.Write([]byte("partial"))
				panic("late panic")
			},
			wantStatus: http.StatusAccepted,
			wantBody:   "partial",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := RecoveryMiddleware(logger)(tt.handler)

			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantResult != "" {
				if got := testutil.DecodeResult(t, w.Body.Bytes()); got != tt.wantResult {
					t.Errorf("result = %q, want %q", got, tt.wantResult)
				}
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}

	if !strings.Contains(logs.String(), "panic in handler") || !strings.Contains(logs.String(), "stack") {
		t.Errorf("panic was not logged with a stack: %s", logs.String())
	}
}

func TestRecoveryMiddleware_AbortHandler(t *testing.T) {
	wrapped := RecoveryMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
