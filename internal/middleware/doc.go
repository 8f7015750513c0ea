// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package middleware provides HTTP middleware shared by the API router.
//
// All middleware use the chi-compatible func(http.Handler) http.Handler
// shape and compose through chi's Use/With:
//
//   - RequestID assigns or propagates X-Request-ID and seeds the request
//     context for log correlation.
//   - Logger derives a request-scoped child logger and writes an access
//     log line when the handler returns.
//   - PrometheusMetrics records request counts, latencies, and the
//     in-flight gauge, labeled by the matched route pattern.
//   - Compression gzips responses for clients that accept it.
//   - PerformanceMonitor keeps a sliding window of request timings and
//     aggregates per-endpoint percentiles for the status endpoint.
//
// Ordering matters: RequestID must run before Logger so the access log
// carries the request ID, and PrometheusMetrics should wrap the route
// subtree rather than the whole mux so unmatched paths do not pollute
// the endpoint label.
package middleware
