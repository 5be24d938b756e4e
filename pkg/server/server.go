package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"mercator-hq/courier/pkg/config"
	"mercator-hq/courier/pkg/proxy/handlers"
	"mercator-hq/courier/pkg/proxy/middleware"
	"mercator-hq/courier/pkg/telemetry/health"
	"mercator-hq/courier/pkg/telemetry/metrics"
	"mercator-hq/courier/pkg/telemetry/tracing"
)

// Route paths served besides the metrics path.
const (
	ChatPath    = "/api/chat"
	HealthPath  = "/health"
	ReadyPath   = "/ready"
	VersionPath = "/version"
)

// BuildInfo is reported on /version.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP server for the chat proxy.
type Server struct {
	config    *config.Config
	completer handlers.Completer
	upstream  health.UpstreamReporter
	metrics   *metrics.Collector
	tracer    trace.Tracer
	logger    *slog.Logger
	build     BuildInfo
	checker   *health.Checker

	httpServer   *http.Server
	listener     net.Listener
	ready        chan struct{}
	shutdownOnce sync.Once
	shutdownErr  error
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by the server and its middleware.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records request metrics and serves them on the configured
// metrics path.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithTracer starts a server span for each request.
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithUpstreamHealth adds an "upstream" readiness check.
func WithUpstreamHealth(r health.UpstreamReporter) Option {
	return func(s *Server) { s.upstream = r }
}

// WithBuildInfo sets what /version reports.
func WithBuildInfo(b BuildInfo) Option {
	return func(s *Server) { s.build = b }
}

// New creates a server. cfg must already have defaults applied.
func New(cfg *config.Config, completer handlers.Completer, opts ...Option) *Server {
	s := &Server{
		config:    cfg,
		completer: completer,
		tracer:    noop.NewTracerProvider().Tracer(tracing.InstrumentationName),
		logger:    slog.Default(),
		build:     BuildInfo{Version: "dev", Commit: "unknown", BuildTime: "unknown"},
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.checker = health.New(health.DefaultCheckTimeout)
	var creds health.CredentialSource = health.ConfigCredentials(cfg.Upstream)
	if src, ok := completer.(health.CredentialSource); ok {
		creds = src
	}
	s.checker.RegisterCheck("credentials", health.CredentialsCheck(creds))
	if s.upstream != nil {
		s.checker.RegisterCheck("upstream", health.UpstreamCheck(s.upstream))
	}
	return s
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	ln, err := net.Listen("tcp", s.config.Proxy.ListenAddress)
	if err != nil {
		s.setRunning(false)
		return fmt.Errorf("listen on %s: %w", s.config.Proxy.ListenAddress, err)
	}

	srv := &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Proxy.ReadTimeout,
		WriteTimeout:   s.config.Proxy.WriteTimeout,
		IdleTimeout:    s.config.Proxy.IdleTimeout,
		MaxHeaderBytes: s.config.Proxy.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	s.mu.Lock()
	s.httpServer = srv
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting chat proxy", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.setRunning(false)
		return err
	}
}

// Shutdown gracefully stops the server. Only the first call has effect.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.IsRunning() {
		return nil
	}
	s.shutdownOnce.Do(func() {
		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Proxy.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Proxy.ShutdownTimeout)
		defer cancel()

		s.mu.RLock()
		srv := s.httpServer
		s.mu.RUnlock()
		if srv == nil {
			return
		}

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			s.shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.setRunning(false)
		s.logger.Info("chat proxy stopped")
	})
	return s.shutdownErr
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	chatOpts := []handlers.Option{
		handlers.WithLogger(s.logger),
		handlers.WithMaxBodyBytes(s.config.Proxy.MaxBodyBytes),
	}
	if s.metrics != nil {
		chatOpts = append(chatOpts, handlers.WithRecorder(s.metrics))
	}

	mux.Handle("POST "+ChatPath, handlers.NewChatHandler(s.completer, chatOpts...))
	mux.Handle(HealthPath, s.checker.LivenessHandler())
	mux.Handle(ReadyPath, s.checker.ReadinessHandler())
	mux.Handle(VersionPath, health.VersionHandler(s.build.Version, s.build.Commit, s.build.BuildTime))
	if s.metrics != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(s.config.Proxy.CORS)(handler)
	handler = middleware.LoggingMiddleware(s.logger)(handler)
	handler = tracing.HTTPMiddleware(s.tracer)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)
	return handler
}

// Checker returns the health checker behind /health and /ready.
func (s *Server) Checker() *health.Checker {
	return s.checker
}

// Addr returns the bound listen address. It blocks until Start has bound
// the listener or ctx is done.
func (s *Server) Addr(ctx context.Context) (string, error) {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listener.Addr().String(), nil
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Server) setRunning(v bool) {
	s.mu.Lock()
	s.isRunning = v
	s.mu.Unlock()
}
