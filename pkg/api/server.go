// Package api serves the uninstall log catalogue over HTTP.
//
// All routes under /api/v1 require an X-API-Key header. Responses use the
// APIResponse envelope except for raw log downloads. /metrics is served
// without authentication for scraping.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/isulog/pkg/config"
	"github.com/ssargent/isulog/pkg/metrics"
)

const (
	// MaxUploadSize bounds request bodies carrying a log
	MaxUploadSize = 64 << 20

	shutdownTimeout = 10 * time.Second
)

// Server holds the API server state
type Server struct {
	catalog  ICatalog
	config   *config.Config
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// NewServer creates a new API server. m and g may be nil, which disables
// instrumentation and the /metrics route.
func NewServer(cat ICatalog, cfg *config.Config, m *metrics.Metrics, g prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		catalog:  cat,
		config:   cfg,
		metrics:  m,
		gatherer: g,
		logger:   logger,
	}
}

// Routes returns the HTTP handler with all routes configured
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	if s.gatherer != nil {
		r.Handle("/metrics", metrics.Handler(s.gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(s.config.Server.APIKey, s.metrics))

		// Health check
		r.Get("/health", s.instrument("GET", "/api/v1/health", s.handleHealth))

		// Parse without storing
		r.Post("/inspect", s.instrument("POST", "/api/v1/inspect", s.handleInspect))

		// Catalogue
		r.Post("/logs", s.instrument("POST", "/api/v1/logs", s.handlePutLog))
		r.Get("/logs", s.instrument("GET", "/api/v1/logs", s.handleListLogs))
		r.Get("/logs/{id}", s.instrument("GET", "/api/v1/logs/{id}", s.handleGetLog))
		r.Get("/logs/{id}/raw", s.instrument("GET", "/api/v1/logs/{id}/raw", s.handleGetRaw))
		r.Delete("/logs/{id}", s.instrument("DELETE", "/api/v1/logs/{id}", s.handleDeleteLog))
	})

	return r
}

func (s *Server) instrument(method, endpoint string, h http.HandlerFunc) http.HandlerFunc {
	if s.metrics == nil {
		return h
	}
	return s.metrics.InstrumentHandler(method, endpoint, h)
}

// Addr returns the listen address from the server configuration
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Server.Bind, strconv.Itoa(s.config.Server.Port))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.refreshCatalogEntries()

	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting isulog API server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down isulog API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// refreshCatalogEntries updates the catalogue size gauge
func (s *Server) refreshCatalogEntries() {
	if s.metrics == nil {
		return
	}
	entries, err := s.catalog.List()
	if err != nil {
		s.logger.Warn("failed to count catalog entries", "error", err)
		return
	}
	s.metrics.SetCatalogEntries(len(entries))
}
