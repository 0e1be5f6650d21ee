// Package di provides dependency injection container
package di

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/isulog/pkg/api"
	"github.com/ssargent/isulog/pkg/catalog"
	"github.com/ssargent/isulog/pkg/config"
	"github.com/ssargent/isulog/pkg/logger"
	"github.com/ssargent/isulog/pkg/metrics"
)

// Container holds all the dependencies for the application. The catalogue is
// opened on first use and closed by Close.
type Container struct {
	config   *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	catalog  *catalog.Catalog
}

// NewContainer creates a new dependency injection container for cfg
func NewContainer(cfg *config.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	return &Container{
		config:   cfg,
		logger:   log,
		registry: reg,
		metrics:  metrics.New(reg),
	}, nil
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// SetLogger allows overriding the logger (for testing)
func (c *Container) SetLogger(l *slog.Logger) {
	c.logger = l
}

// Metrics returns the application metrics
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Registry returns the registry the metrics are registered with
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// CatalogDir returns the directory holding the catalogue database
func (c *Container) CatalogDir() string {
	return filepath.Join(c.config.DataDir, "catalog")
}

// Catalog returns the catalogue, opening it on first use
func (c *Container) Catalog() (*catalog.Catalog, error) {
	if c.catalog != nil {
		return c.catalog, nil
	}

	if err := os.MkdirAll(c.config.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	cat, err := catalog.Open(c.CatalogDir(), catalog.Options{
		Logger:       c.logger,
		SkipCRCCheck: c.config.Parser.SkipCRCCheck,
	})
	if err != nil {
		return nil, err
	}
	c.catalog = cat
	return cat, nil
}

// Server builds the API server over the catalogue
func (c *Container) Server() (*api.Server, error) {
	cat, err := c.Catalog()
	if err != nil {
		return nil, err
	}
	return api.NewServer(cat, c.config, c.metrics, c.registry, c.logger), nil
}

// WriteMetrics writes the gathered metrics to path in the textfile format
func (c *Container) WriteMetrics(path string) error {
	return metrics.WriteTextfile(path, c.registry)
}

// Close releases the catalogue if it was opened
func (c *Container) Close() error {
	if c.catalog == nil {
		return nil
	}
	err := c.catalog.Close()
	c.catalog = nil
	return err
}
