package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/slipscan/internal/domain"
	"github.com/alanyoungcy/slipscan/internal/server/handler"
	"github.com/alanyoungcy/slipscan/internal/server/middleware"
	"github.com/alanyoungcy/slipscan/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// RateLimit caps requests per client per RateWindow on the upload and
	// import endpoints. Zero disables rate limiting.
	RateLimit  int
	RateWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health  *handler.HealthHandler
	Status  *handler.StatusHandler
	Bets    *handler.BetHandler
	Risk    *handler.RiskHandler
	Sets    *handler.SetHandler
	Imports *handler.ImportHandler
	Files   *handler.FileHandler
}

// Server is the HTTP + WebSocket API server for the slip scanner.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, auth, rate limiting) and attaches
// the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Heavy endpoints get their own rate limit; everything else is bounded
	// by auth alone.
	limited := func(h http.HandlerFunc) http.Handler {
		if limiter == nil || cfg.RateLimit <= 0 {
			return h
		}
		return middleware.RateLimit(limiter, cfg.RateLimit, cfg.RateWindow)(h)
	}

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)
	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)

	// Bet endpoints.
	mux.Handle("POST /api/bets/upload", limited(handlers.Bets.UploadSlip))
	mux.HandleFunc("GET /api/bets/recent", handlers.Bets.ListRecent)
	mux.HandleFunc("GET /api/bets", handlers.Bets.ListBets)
	mux.HandleFunc("GET /api/bets/{id}", handlers.Bets.GetBet)
	mux.HandleFunc("PATCH /api/bets/{id}", handlers.Bets.UpdateBet)
	mux.HandleFunc("DELETE /api/bets/{id}", handlers.Bets.DeleteBet)

	// Risk statistics.
	mux.HandleFunc("GET /api/stats/risk", handlers.Risk.GetRiskSummary)

	// Set and bookmaker lookups.
	mux.HandleFunc("GET /api/sets", handlers.Sets.ListSets)
	mux.HandleFunc("POST /api/sets", handlers.Sets.CreateSet)
	mux.HandleFunc("GET /api/bookmakers", handlers.Sets.ListBookmakers)

	// CSV import endpoints.
	mux.Handle("POST /api/import/csv", limited(handlers.Imports.ImportCSV))
	mux.HandleFunc("GET /api/imports", handlers.Imports.ListImports)

	// Stored file retrieval.
	mux.HandleFunc("GET /api/files/{key...}", handlers.Files.GetFile)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	// Apply auth middleware (skips if APIKey is empty).
	h = middleware.Auth(cfg.APIKey)(h)

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	// Apply CORS middleware.
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
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
