// Package server assembles the HTTP and WebSocket API for the trading
// dashboard backend.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/joshnichols-lang/crossdesk/internal/domain"
	"github.com/joshnichols-lang/crossdesk/internal/server/handler"
	"github.com/joshnichols-lang/crossdesk/internal/server/middleware"
	"github.com/joshnichols-lang/crossdesk/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// RateLimit caps requests per client IP per RateWindow. Zero disables
	// the middleware.
	RateLimit  int
	RateWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
// History may be nil when no database is wired; its routes are then skipped.
type Handlers struct {
	Health    *handler.HealthHandler
	Positions *handler.PositionHandler
	Orders    *handler.OrderHandler
	Balances  *handler.BalanceHandler
	Bridge    *handler.BridgeHandler
	Deposits  *handler.DepositHandler
	History   *handler.HistoryHandler
}

// Server is the headless HTTP + WebSocket API server for the dashboard.
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

	// --- Register routes ---

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Position grid and close actions.
	mux.HandleFunc("GET /api/positions", handlers.Positions.ListPositions)
	mux.HandleFunc("POST /api/positions/close", handlers.Positions.CloseOne)
	mux.HandleFunc("POST /api/positions/close-all", handlers.Positions.CloseAll)
	mux.HandleFunc("GET /api/positions/close-all/pending", handlers.Positions.Pending)

	// Open orders and gated submission.
	mux.HandleFunc("GET /api/orders", handlers.Positions.ListOrders)
	mux.HandleFunc("POST /api/orders", handlers.Orders.SubmitOrder)

	// Balances and embedded-wallet addresses.
	mux.HandleFunc("GET /api/balances", handlers.Balances.GetBalances)
	mux.HandleFunc("GET /api/wallet", handlers.Balances.GetWallet)

	// Bridge launch descriptor.
	mux.HandleFunc("GET /api/bridge/launch", handlers.Bridge.Launch)

	// Deposit dialog flow.
	mux.HandleFunc("POST /api/deposit/open", handlers.Deposits.Open)
	mux.HandleFunc("GET /api/deposit/{id}", handlers.Deposits.Get)
	mux.HandleFunc("POST /api/deposit/{id}/quote", handlers.Deposits.Quote)
	mux.HandleFunc("POST /api/deposit/{id}/execute", handlers.Deposits.Execute)
	mux.HandleFunc("DELETE /api/deposit/{id}", handlers.Deposits.CloseFlow)

	// Audit history (only when a database is wired).
	if handlers.History != nil {
		mux.HandleFunc("GET /api/history/closes", handlers.History.ListCloses)
		mux.HandleFunc("GET /api/history/deposits", handlers.History.ListDeposits)
	}

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	// Apply auth middleware (skips if APIKey is empty).
	h = middleware.Auth(cfg.APIKey)(h)

	// Apply rate limiting when a limiter and limit are configured.
	if limiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		h = middleware.RateLimit(limiter, cfg.RateLimit, window)(h)
	}

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
