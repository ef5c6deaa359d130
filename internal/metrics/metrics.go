// Package metrics instruments the solver (C9) and the top-level evaluate
// pipeline with Prometheus counters/histograms, grounded on the corpus's
// promauto-vector idiom (internal/metrics in the securities-api backend),
// and exposes the collector set to OpenTelemetry's Prometheus exporter so
// the same registry also serves an OTel metrics pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EvaluationsTotal counts evaluate/expand/compress/solve/convert calls
	// by operation and outcome.
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amfn_evaluations_total",
			Help: "Total pipeline operations by name and outcome",
		},
		[]string{"operation", "status"},
	)

	// EvaluationDuration tracks wall time per operation.
	EvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "amfn_evaluation_duration_seconds",
			Help:    "Pipeline operation duration",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation"},
	)

	// SolverIterations records the iteration count a solve() call converged
	// (or failed to converge) at.
	SolverIterations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "amfn_solver_iterations",
			Help:    "Iterations consumed per solve() call",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"status"},
	)

	// RateCacheRequests counts internal/ratecache hits and misses.
	RateCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amfn_rate_cache_requests_total",
			Help: "Exchange-rate cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordEvaluation records one pipeline operation's outcome and duration.
func RecordEvaluation(operation, status string, seconds float64) {
	EvaluationsTotal.WithLabelValues(operation, status).Inc()
	EvaluationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordSolverIterations records how many iterations a solve() call took.
func RecordSolverIterations(status string, iterations int) {
	SolverIterations.WithLabelValues(status).Observe(float64(iterations))
}

// RecordRateCacheResult records a rate-cache hit or miss.
func RecordRateCacheResult(result string) {
	RateCacheRequests.WithLabelValues(result).Inc()
}
