// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the scoring service:
// - API endpoint latency and throughput
// - Recommendation serving by tier
// - Score cache efficiency
// - Signal ingestion and pipeline health
// - Embedding provider latency and circuit breaker state
// - DuckDB analytics query performance
// - WebSocket connections

var (
	// API Endpoint Metrics
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
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation responses by candidate tier",
		},
		[]string{"tier"}, // "semantic", "preference", "fallback"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time to assemble a ranked recommendation response",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// Score Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rec_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rec_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rec_cache_entries",
			Help: "Current number of cached recommendation lists",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rec_cache_evictions_total",
			Help: "Total number of recommendation cache entries evicted by expiry or capacity",
		},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rec_cache_invalidations_total",
			Help: "Total number of recommendation cache invalidations",
		},
		[]string{"reason"}, // "signal", "weights"
	)

	// Signal Pipeline Metrics
	SignalsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signals_recorded_total",
			Help: "Total number of interaction signals accepted for publishing",
		},
		[]string{"action"},
	)

	SignalsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signals_processed_total",
			Help: "Total number of signal events persisted by the analytics consumer",
		},
	)

	SignalsPoisoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signals_poisoned_total",
			Help: "Total number of signal events routed to the poison queue",
		},
	)

	// Embedding Provider Metrics
	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_requests_total",
			Help: "Total number of embedding provider requests",
		},
		[]string{"status"}, // "ok", "error"
	)

	EmbeddingRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "embedding_request_duration_seconds",
			Help:    "Embedding provider request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Analytics Store Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// WebSocket Metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of connected WebSocket clients",
		},
	)

	// Tuning Surface Metrics
	WeightUpdates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weight_updates_total",
			Help: "Total number of accepted scoring weight updates",
		},
	)

	CatalogMoviesImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_movies_imported_total",
			Help: "Total number of movies accepted through catalog import",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records a served recommendation response.
func RecordRecommendation(tier string, duration time.Duration) {
	RecommendationsServed.WithLabelValues(tier).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordDBQuery records an analytics store query metric
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordEmbeddingRequest records an embedding provider call.
func RecordEmbeddingRequest(duration time.Duration, err error) {
	EmbeddingRequestDuration.Observe(duration.Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	EmbeddingRequests.WithLabelValues(status).Inc()
}
