// Package api serves the sandbox lifecycle over HTTP.
package api

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/firefly-engineering/deskbox/internal/logging"
	"github.com/firefly-engineering/deskbox/internal/runtime"
)

// DefaultShutdownTimeout bounds graceful shutdown and sandbox teardown.
const DefaultShutdownTimeout = 60 * time.Second

// Server is an HTTP server that owns one sandbox runtime
type Server struct {
	srv      *fasthttp.Server
	addr     string
	rt       runtime.SandboxRuntime
	teardown func(context.Context) error
}

// Option configures a Server
type Option func(*Server)

// WithTeardown replaces the shutdown hook, which defaults to destroying
// the sandbox directly.
func WithTeardown(fn func(context.Context) error) Option {
	return func(s *Server) {
		s.teardown = fn
	}
}

// New creates a server for rt listening on addr
func New(rt runtime.SandboxRuntime, addr string, opts ...Option) *Server {
	s := &Server{
		srv: &fasthttp.Server{
			Name:         "deskbox",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Minute,
		},
		addr:     addr,
		rt:       rt,
		teardown: rt.Destroy,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.srv.Handler = s.Handler()
	return s
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.addr
}

// Run serves until ctx is cancelled or the listener fails, then shuts
// the server down and destroys the sandbox.
func (s *Server) Run(ctx context.Context) error {
	logging.Info("starting HTTP server", "addr", s.addr, "runtime", s.rt.Name())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe(s.addr)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info("received shutdown signal")
	case serveErr = <-errCh:
		if serveErr != nil {
			logging.Error("server stopped", "error", serveErr)
		}
	}

	s.shutdown()
	return serveErr
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	logging.Info("gracefully shutting down HTTP server")
	if err := s.srv.ShutdownWithContext(ctx); err != nil {
		logging.Error("failed to shut down server", "error", err)
	}

	if err := s.teardown(ctx); err != nil {
		logging.Warn("failed to destroy sandbox", "error", err)
	}
	logging.Info("HTTP server stopped")
}
