package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"mercator-hq/courier/pkg/proxy"
)

// RecoveryMiddleware turns a panic anywhere below it into a 500
// {"result": ...} response, so no request ends without a JSON body. The
// stack is logged, never sent.
//
// If the handler already started the response nothing more is written.
//
// Example usage:
//
//	handler = RecoveryMiddleware(logger)(handler)
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "panic in handler",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				if rw.written {
					return
				}
				err := fmt.Errorf("internal error: %v", rec)
				_ = proxy.WriteResult(rw, http.StatusInternalServerError, proxy.ErrorMessage(err))
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
