package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

// Server wraps an [http.Server] with signal-driven graceful shutdown.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// ServerOption configures a [Server].
type ServerOption func(*serverOptions)

type serverOptions struct {
	host            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// WithHost sets the address the server listens on. Default is ":8080".
func WithHost(host string) ServerOption {
	return func(opts *serverOptions) {
		opts.host = host
	}
}

// WithReadTimeout sets the maximum duration for reading the entire
// request, including the body. Default is 5s.
func WithReadTimeout(d time.Duration) ServerOption {
	return func(opts *serverOptions) {
		opts.readTimeout = d
	}
}

// WithWriteTimeout sets the maximum duration before timing out
// writes of the response. Default is 10s.
func WithWriteTimeout(d time.Duration) ServerOption {
	return func(opts *serverOptions) {
		opts.writeTimeout = d
	}
}

// WithShutdownTimeout bounds how long [Server.Run] waits for in-flight
// requests after a shutdown signal. Default is 20s.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(opts *serverOptions) {
		opts.shutdownTimeout = d
	}
}

// WithServerLogger sets the logger used for lifecycle events.
func WithServerLogger(log *slog.Logger) ServerOption {
	return func(opts *serverOptions) {
		opts.logger = log
	}
}

// NewServer creates a Server for handler.
func NewServer(handler http.Handler, optFns ...ServerOption) *Server {
	o := serverOptions{
		host:            ":8080",
		readTimeout:     5 * time.Second,
		writeTimeout:    10 * time.Second,
		shutdownTimeout: 20 * time.Second,
		logger:          slog.Default(),
	}
	for _, opt := range optFns {
		opt(&o)
	}

	return &Server{
		srv: &http.Server{
			Addr:         o.host,
			Handler:      handler,
			ReadTimeout:  o.readTimeout,
			WriteTimeout: o.writeTimeout,
			IdleTimeout:  120 * time.Second,
		},
		shutdownTimeout: o.shutdownTimeout,
		logger:          o.logger,
	}
}

// Run starts the server and blocks until ctx ends or a SIGINT or
// SIGTERM arrives, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrs := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", s.srv.Addr)
		serverErrs <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrs:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil

	case <-ctx.Done():
		stop()
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}

		s.logger.Info("shutdown complete")

		return nil
	}
}

// Shutdown drains in-flight requests. Callers should set a deadline on
// ctx to bound how long shutdown may take.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		s.srv.Close()
		return fmt.Errorf("server didn't stop gracefully: %w", err)
	}

	return nil
}
