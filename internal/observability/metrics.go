package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcomes recorded by Metrics.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the Prometheus collectors for the data-access core.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Operations counts service operations by name and outcome.
	Operations *prometheus.CounterVec
	// AuthAttempts counts Authenticate calls by result (success, failure).
	AuthAttempts *prometheus.CounterVec
	// DatabaseQueryLatency records repository latency by operation and table.
	DatabaseQueryLatency *prometheus.HistogramVec
	// CacheResults counts cache lookups by result (hit, miss, error).
	CacheResults *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warbler_operations_total",
			Help: "Total number of data-access operations by name and outcome",
		}, []string{"operation", "outcome"}),
		AuthAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warbler_auth_attempts_total",
			Help: "Total number of authentication attempts by result",
		}, []string{"result"}),
		DatabaseQueryLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "warbler_database_query_latency_seconds",
			Help:    "Database query latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "table"}),
		CacheResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warbler_cache_results_total",
			Help: "Total number of cache lookups by result",
		}, []string{"result"}),
	}
}

// RecordOperation counts one operation, classifying err into an outcome.
// Rejections are caller mistakes (validation, constraint, permission).
func (m *Metrics) RecordOperation(operation string, err error, rejected func(error) bool) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	switch {
	case err == nil:
	case rejected != nil && rejected(err):
		outcome = OutcomeRejected
	default:
		outcome = OutcomeError
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
}

// RecordAuth counts an authentication attempt.
func (m *Metrics) RecordAuth(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.AuthAttempts.WithLabelValues(result).Inc()
}

// RecordCache counts a cache lookup result.
func (m *Metrics) RecordCache(result string) {
	if m == nil {
		return
	}
	m.CacheResults.WithLabelValues(result).Inc()
}

// ObserveQuery records the latency of a database query that began at start.
func (m *Metrics) ObserveQuery(operation, table string, start time.Time) {
	if m == nil {
		return
	}
	m.DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
