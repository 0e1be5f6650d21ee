// Package metrics holds the Prometheus metrics for log processing and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssargent/isulog/pkg/errs"
	"github.com/ssargent/isulog/pkg/isulog"
)

const (
	statusSuccess   = "success"
	statusError     = "error"
	statusIntegrity = "integrity_error"
)

// Metrics holds all Prometheus metrics for isulog
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Log operation metrics
	logOperationsTotal   *prometheus.CounterVec
	logOperationDuration *prometheus.HistogramVec
	recordsTotal         *prometheus.CounterVec
	logBytesTotal        *prometheus.CounterVec

	// Catalogue metrics
	catalogEntries prometheus.Gauge

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec
}

// New creates all metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "isulog_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "isulog_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "isulog_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		logOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "isulog_log_operations_total",
				Help: "Total number of uninstall log loads and saves",
			},
			[]string{"operation", "status"},
		),

		logOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "isulog_log_operation_duration_seconds",
				Help:    "Uninstall log load and save duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "isulog_records_total",
				Help: "Total number of records processed, by operation and record type",
			},
			[]string{"operation", "type"},
		),

		logBytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "isulog_log_bytes_total",
				Help: "Total bytes of uninstall logs read or written",
			},
			[]string{"operation"},
		),

		catalogEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "isulog_catalog_entries",
				Help: "Number of logs stored in the catalogue",
			},
		),

		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "isulog_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),
	}
}

func operationStatus(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errs.IsIntegrity(err):
		return statusIntegrity
	default:
		return statusError
	}
}

func (m *Metrics) recordOperation(operation string, lg *isulog.Log, size int64, err error, duration time.Duration) {
	m.logOperationsTotal.WithLabelValues(operation, operationStatus(err)).Inc()
	m.logOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil || lg == nil {
		return
	}
	if size > 0 {
		m.logBytesTotal.WithLabelValues(operation).Add(float64(size))
	}
	for _, tc := range lg.Summary().Types {
		m.recordsTotal.WithLabelValues(operation, tc.Name).Add(float64(tc.Count))
	}
}

// RecordLoad records one log load. lg may be nil when err is set.
func (m *Metrics) RecordLoad(lg *isulog.Log, size int64, err error, duration time.Duration) {
	m.recordOperation("load", lg, size, err, duration)
}

// RecordSave records one log save.
func (m *Metrics) RecordSave(lg *isulog.Log, size int64, err error, duration time.Duration) {
	m.recordOperation("save", lg, size, err, duration)
}

// SetCatalogEntries updates the catalogue size gauge
func (m *Metrics) SetCatalogEntries(n int) {
	m.catalogEntries.Set(float64(n))
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.authRequestsTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Capture the status code written by the handler
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// WriteTextfile writes the metrics gathered by g to path in the text exposition
// format, for collection by a node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
