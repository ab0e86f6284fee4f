// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/logging"
	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

// Service interfaces for dependency injection and testing

// MarketDataInterface defines the market data operations the API exposes
type MarketDataInterface interface {
	GetPrices(ctx context.Context, symbols []string) (types.PriceMap, bool, error)
	GetFundamentals(ctx context.Context, symbols []string) (types.FundamentalsMap, bool, error)
}

// ReportInterface defines the portfolio report operations the API exposes
type ReportInterface interface {
	GetReport(ctx context.Context) (*types.PortfolioReport, bool, error)
	Refresh(ctx context.Context) (*types.PortfolioReport, error)
}

// HoldingsInterface defines read access to the static holdings
type HoldingsInterface interface {
	All() []types.Holding
	Count() int
}

// Server represents the HTTP API server.
type Server struct {
	router        *mux.Router
	httpServer    *http.Server
	marketData    MarketDataInterface
	reportService ReportInterface
	holdings      HoldingsInterface
	config        *ServerConfig
	logger        *logging.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	marketData MarketDataInterface,
	reportService ReportInterface,
	holdings HoldingsInterface,
) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		marketData:    marketData,
		reportService: reportService,
		holdings:      holdings,
		config:        config,
		logger:        logging.GetGlobalLogger(),
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)

	// Set up middleware (order matters!)
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Market data endpoints
	api.HandleFunc("/stock-prices", s.handleStockPrices).Methods("GET")
	api.HandleFunc("/stock-fundamentals", s.handleStockFundamentals).Methods("GET")

	// Portfolio endpoints
	api.HandleFunc("/portfolio", s.handleGetPortfolio).Methods("GET")
	api.HandleFunc("/portfolio/refresh", s.handleRefreshPortfolio).Methods("POST")
	api.HandleFunc("/holdings", s.handleGetHoldings).Methods("GET")

	// Preflight requests must match a route for the middleware chain to
	// run; CORSMiddleware answers them before this handler is reached.
	s.router.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"service":  "portfolio-dashboard",
		"holdings": s.holdings.Count(),
	})
}

// Router exposes the configured handler, for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
