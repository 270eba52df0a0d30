// Package server owns HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default HTTP server configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// handlerBudgetMargin pads the slowest handler budget when deriving the
// write timeout, leaving room to flush the response after the handler
// returns.
const handlerBudgetMargin = 30 * time.Second

// WithHandlerBudget raises WriteTimeout so handlers that legitimately block
// up to budget (chat completions) are not cut off mid-response. A budget
// already covered by the current WriteTimeout leaves the config unchanged.
func (c Config) WithHandlerBudget(budget time.Duration) Config {
	if budget <= 0 {
		return c
	}
	if d := budget + handlerBudgetMargin; d > c.WriteTimeout {
		c.WriteTimeout = d
	}
	return c
}

// Server wraps the HTTP server around a prepared handler.
type Server struct {
	config Config
	http   *http.Server
}

// NewServer creates a new HTTP server serving the given handler.
func NewServer(handler http.Handler, config Config) *Server {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{config: config, http: httpServer}
}

// Start starts the HTTP server and blocks until it stops. Returns nil after
// a graceful Shutdown.
func (s *Server) Start(ctx context.Context) error {
	log.Info().Str("addr", s.http.Addr).Msg("starting HTTP server")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down server")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info().Msg("server shutdown complete")
	return nil
}
