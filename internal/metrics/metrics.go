package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Business Metrics
	ChargesInitiated      *prometheus.CounterVec
	ConfirmationsIngested *prometheus.CounterVec
	ResolutionsTotal      *prometheus.CounterVec
	StatusConflicts       prometheus.Counter
	PollTimeouts          prometheus.Counter

	// Provider Metrics
	ProviderCallsTotal   *prometheus.CounterVec
	ProviderCallDuration *prometheus.HistogramVec

	// Database Metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueriesTotal  *prometheus.CounterVec

	// Validation Metrics
	ValidationErrors   *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payments_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "payments_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),

		ChargesInitiated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_charges_initiated_total",
				Help: "Total number of charge initiations",
			},
			[]string{"provider", "status"},
		),
		ConfirmationsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_confirmations_ingested_total",
				Help: "Total number of inbound confirmations by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
		ResolutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_resolutions_total",
				Help: "Total number of status resolutions by answering source",
			},
			[]string{"source", "status"},
		),
		StatusConflicts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payments_status_conflicts_total",
				Help: "Total number of conflicting terminal writes retained as anomalies",
			},
		),
		PollTimeouts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payments_poll_timeouts_total",
				Help: "Total number of polls exhausted without a terminal status",
			},
		),

		ProviderCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_provider_calls_total",
				Help: "Total number of outbound provider calls",
			},
			[]string{"provider", "operation", "status"},
		),
		ProviderCallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payments_provider_call_duration_seconds",
				Help:    "Duration of outbound provider calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"provider", "operation"},
		),

		DBQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payments_db_query_duration_seconds",
				Help:    "Duration of database queries in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"operation", "table"},
		),
		DBQueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_db_queries_total",
				Help: "Total number of database queries",
			},
			[]string{"operation", "table", "status"},
		),

		ValidationErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_validation_errors_total",
				Help: "Total number of validation errors",
			},
			[]string{"field", "tag"},
		),
		ValidationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payments_validation_duration_seconds",
				Help:    "Duration of validation operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"endpoint"},
		),
	}
}

// --- Recording Methods ---

func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
}

func (m *Metrics) RecordChargeInitiated(provider, status string) {
	m.ChargesInitiated.WithLabelValues(provider, status).Inc()
}

func (m *Metrics) RecordConfirmationIngested(channel, outcome string) {
	m.ConfirmationsIngested.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) RecordResolution(source, status string) {
	m.ResolutionsTotal.WithLabelValues(source, status).Inc()
}

func (m *Metrics) RecordStatusConflict() {
	m.StatusConflicts.Inc()
}

func (m *Metrics) RecordPollTimeout() {
	m.PollTimeouts.Inc()
}

func (m *Metrics) RecordProviderCall(provider, operation, status string, duration time.Duration) {
	m.ProviderCallsTotal.WithLabelValues(provider, operation, status).Inc()
	m.ProviderCallDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordDBQuery(operation, table, status string, duration time.Duration) {
	m.DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func (m *Metrics) RecordValidationError(field, tag string) {
	m.ValidationErrors.WithLabelValues(field, tag).Inc()
}

func (m *Metrics) RecordValidationDuration(endpoint string, duration time.Duration) {
	m.ValidationDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
