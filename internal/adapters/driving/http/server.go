package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/ports/driving"
	"github.com/custodia-labs/raglab-core/internal/extractors"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a plain function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string
	logger     *slog.Logger

	// Services
	ingestService driving.IngestService
	queryService  driving.QueryService

	// Upload pipeline
	extractors *extractors.Registry

	// Infrastructure health probes (each can be nil)
	index Pinger // vector index
	store Pinger // document store
	cache Pinger // result cache
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	ingestService driving.IngestService,
	queryService driving.QueryService,
	extractorRegistry *extractors.Registry, // can be nil, defaults to the built-ins
	index Pinger, // can be nil
	store Pinger, // can be nil
	cache Pinger, // can be nil
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if extractorRegistry == nil {
		extractorRegistry = extractors.DefaultRegistry()
	}

	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		logger:        logger,
		ingestService: ingestService,
		queryService:  queryService,
		extractors:    extractorRegistry,
		index:         index,
		store:         store,
		cache:         cache,
	}

	s.setupRoutes()

	// Middleware chain. Logging sits outermost so recovered panics still
	// produce a log line with their 500 status.
	var handler http.Handler = s.router
	handler = NewCORSMiddleware(cfg.AllowedOrigins).Handler(handler)
	handler = NewRecoveryMiddleware(logger).Handler(handler)
	handler = NewLoggingMiddleware(logger).Handler(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// Writes must outlast the per-architecture task ceiling, or slow
		// comparisons lose their response mid-flight.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Probe endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Engine endpoints
	s.router.HandleFunc("GET /api/v1/health", s.handleEngineHealth)
	s.router.HandleFunc("GET /api/v1/status", s.handleStatus)
	s.router.HandleFunc("GET /api/v1/architectures", s.handleListArchitectures)
	s.router.HandleFunc("POST /api/v1/query", s.handleQuery)

	// Document endpoints
	s.router.HandleFunc("POST /api/v1/upload-documents", s.handleUploadDocuments)
	s.router.HandleFunc("GET /api/v1/documents", s.handleListDocuments)
	s.router.HandleFunc("DELETE /api/v1/documents", s.handleClearDocuments)
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the root handler with all middleware applied, for tests
// and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.handler
}
