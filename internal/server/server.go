// Package server is the headless HTTP API for the portfolio service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/davidhsu/binfolio/internal/domain"
	"github.com/davidhsu/binfolio/internal/server/handler"
	"github.com/davidhsu/binfolio/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health    *handler.HealthHandler
	Portfolio *handler.PortfolioHandler
	Strategy  *handler.StrategyHandler
}

// Server serves the portfolio and strategy-level endpoints over HTTP.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux
// and the middleware chain (rate limiting, auth, logging, CORS) wired up.
// limiter may be nil to disable rate limiting.
func NewServer(cfg Config, handlers Handlers, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required on the same chain; the auth middleware
	// covers it too, which is acceptable for a single-operator service).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Portfolio endpoints.
	mux.HandleFunc("GET /api/portfolio", handlers.Portfolio.GetPortfolio)
	mux.HandleFunc("GET /api/portfolio/export", handlers.Portfolio.ExportPortfolio)

	// Strategy level endpoints.
	mux.HandleFunc("GET /api/strategies", handlers.Strategy.ListLevels)
	mux.HandleFunc("GET /api/strategies/{asset}", handlers.Strategy.GetLevels)
	mux.HandleFunc("PUT /api/strategies/{asset}", handlers.Strategy.PutLevels)
	mux.HandleFunc("DELETE /api/strategies/{asset}", handlers.Strategy.DeleteLevels)

	// Build the middleware chain, innermost first.
	var h http.Handler = mux

	h = middleware.Auth(cfg.APIKey)(h)

	if limiter != nil {
		h = middleware.RateLimit(limiter, 60, time.Minute)(h)
	}

	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
