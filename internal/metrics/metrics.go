// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Recommendation Metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"kind", "method"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Latency of recommendation requests in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"kind", "method"},
	)

	RecommendResultSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_result_size",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 5, 10, 20, 50},
		},
		[]string{"kind"},
	)

	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	RecommendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_errors_total",
			Help: "Total number of failed recommendation requests",
		},
		[]string{"kind", "reason"},
	)

	// Training Metrics
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_training_runs_total",
			Help: "Total number of model training runs",
		},
		[]string{"model", "status"}, // status: success, error, skipped
	)

	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_training_duration_seconds",
			Help:    "Duration of model training in seconds",
			Buckets: []float64{.01, .1, .5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"model"},
	)

	ModelReady = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_model_ready",
			Help: "Whether a model is trained and used for fusion (1) or not (0)",
		},
		[]string{"model"},
	)

	ModelEvaluation = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_model_evaluation",
			Help: "Latest holdout evaluation metric per model",
		},
		[]string{"model", "metric"},
	)

	// Data Metrics
	InteractionsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_interactions_ingested_total",
			Help: "Total number of interactions written to the interaction store",
		},
	)

	GraphExports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graph_exports_total",
			Help: "Total number of interaction graph exports to the graph database",
		},
		[]string{"status"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through a circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request with its status code and duration.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records a served recommendation request.
func RecordRecommendation(kind, method string, results int, duration time.Duration) {
	RecommendRequestsTotal.WithLabelValues(kind, method).Inc()
	RecommendDuration.WithLabelValues(kind, method).Observe(duration.Seconds())
	RecommendResultSize.WithLabelValues(kind).Observe(float64(results))
}

// RecordRecommendError records a failed recommendation request.
func RecordRecommendError(kind, reason string) {
	RecommendErrors.WithLabelValues(kind, reason).Inc()
}

// RecordCacheLookup records a recommendation cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		RecommendCacheHits.Inc()
	} else {
		RecommendCacheMisses.Inc()
	}
}

// RecordTraining records a training run for one model.
// A nil err with skipped=true means the run was skipped for lack of data.
func RecordTraining(model string, duration time.Duration, skipped bool, err error) {
	status := "success"
	switch {
	case err != nil:
		status = "error"
	case skipped:
		status = "skipped"
	}
	TrainingRunsTotal.WithLabelValues(model, status).Inc()
	if !skipped {
		TrainingDuration.WithLabelValues(model).Observe(duration.Seconds())
	}
}

// SetModelReady updates the readiness gauge for a model.
func SetModelReady(model string, ready bool) {
	v := 0.0
	if ready {
		v = 1
	}
	ModelReady.WithLabelValues(model).Set(v)
}

// RecordEvaluation stores the latest holdout metric value for a model.
func RecordEvaluation(model, metric string, value float64) {
	ModelEvaluation.WithLabelValues(model, metric).Set(value)
}

// RecordInteractionsIngested counts interactions written to the store.
func RecordInteractionsIngested(n int) {
	InteractionsIngested.Add(float64(n))
}

// RecordGraphExport records a graph database export attempt.
func RecordGraphExport(err error) {
	if err != nil {
		GraphExports.WithLabelValues("error").Inc()
		return
	}
	GraphExports.WithLabelValues("success").Inc()
}

// SetCircuitBreakerState records the state of a breaker as 0 (closed),
// 1 (half-open) or 2 (open).
func SetCircuitBreakerState(name string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordCircuitBreakerTransition counts a breaker state change.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordCircuitBreakerRequest counts a call through a breaker by result:
// success, failure or rejected.
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}
