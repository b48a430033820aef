// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wallet-roaster/internal/adapter"
	"github.com/wallet-roaster/internal/circuitbreaker"
	"github.com/wallet-roaster/internal/logging"
	"github.com/wallet-roaster/internal/models"
	"github.com/wallet-roaster/internal/service"
)

// Service interfaces for dependency injection and testing

// WalletServiceInterface defines the wallet lookup operation
type WalletServiceInterface interface {
	Roast(ctx context.Context, address string) (*models.WalletRoast, error)
}

// LeaderboardServiceInterface defines the leaderboard operations
type LeaderboardServiceInterface interface {
	Top(ctx context.Context) ([]models.LeaderboardEntry, int64)
	Submit(ctx context.Context, sub service.Submission) ([]models.LeaderboardEntry, int64, error)
	LastWinner(ctx context.Context) (*models.ArchivedWinner, bool)
}

// StoreStateReporter exposes the blob store breaker state for /health
type StoreStateReporter interface {
	State() circuitbreaker.State
}

// PoolStatusReporter exposes RPC endpoint pool status for /health
type PoolStatusReporter interface {
	Status() *adapter.PoolStatus
}

// Server represents the HTTP API server.
type Server struct {
	router      *mux.Router
	httpServer  *http.Server
	wallets     WalletServiceInterface
	leaderboard LeaderboardServiceInterface
	store       StoreStateReporter
	pool        PoolStatusReporter
	logger      *logging.Logger
	config      *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestsPerSec  int
	Burst           int
}

// NewServer creates a new API server instance. store and pool may be nil.
func NewServer(
	config *ServerConfig,
	wallets WalletServiceInterface,
	leaderboard LeaderboardServiceInterface,
	store StoreStateReporter,
	pool PoolStatusReporter,
	logger *logging.Logger,
) *Server {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	s := &Server{
		router:      mux.NewRouter(),
		wallets:     wallets,
		leaderboard: leaderboard,
		store:       store,
		pool:        pool,
		logger:      logger,
		config:      config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RequestsPerSec, s.config.Burst)

	// Order matters: the request logger must be in the context first.
	s.router.Use(RequestIDMiddleware(s.logger))
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)

	s.setupRoutes(RateLimitMiddleware(rateLimiter))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes. Only /api is rate limited.
func (s *Server) setupRoutes(limit mux.MiddlewareFunc) {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(limit)

	api.HandleFunc("/wallet", s.handleGetWallet).Methods(http.MethodGet, http.MethodOptions)

	api.HandleFunc("/leaderboard", s.handleGetLeaderboard).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/leaderboard", s.handleSubmitLeaderboard).Methods(http.MethodPost)
	api.HandleFunc("/leaderboard/last-winner", s.handleGetLastWinner).Methods(http.MethodGet, http.MethodOptions)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})
}

// handleHealth reports liveness plus store and RPC pool state. A degraded
// store does not fail the check; the service keeps serving lookups.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "healthy",
		"service": "wallet-roaster",
	}
	if s.store != nil {
		state := s.store.State()
		body["store"] = state
		if state != circuitbreaker.StateClosed {
			body["status"] = "degraded"
		}
	}
	if s.pool != nil {
		body["rpc"] = s.pool.Status()
	}
	respondJSON(w, http.StatusOK, body)
}

// Handler returns the root handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
