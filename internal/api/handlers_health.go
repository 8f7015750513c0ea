// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/reelrank/reelrank/internal/middleware"
	"github.com/reelrank/reelrank/internal/recommend"
)

// catalogStatus summarizes the movie catalog for the status endpoint.
type catalogStatus struct {
	Movies int      `json:"movies"`
	Genres []string `json:"genres,omitempty"`
}

// cacheStatus summarizes the recommendation result cache.
type cacheStatus struct {
	Hits           int64   `json:"hits"`
	Misses         int64   `json:"misses"`
	Evictions      int64   `json:"evictions"`
	TotalKeys      int     `json:"total_keys"`
	HitRatePercent float64 `json:"hit_rate_percent"`
}

// pipelineStatus summarizes the signal fan-out pipeline.
type pipelineStatus struct {
	Running          bool  `json:"running"`
	Handlers         int   `json:"handlers"`
	SignalsStored    int64 `json:"signals_stored"`
	SignalsBroadcast int64 `json:"signals_broadcast"`
	ParseErrors      int64 `json:"parse_errors"`
}

// embeddingStatus summarizes the embedding provider circuit.
type embeddingStatus struct {
	Enabled      bool   `json:"enabled"`
	CircuitState string `json:"circuit_state,omitempty"`
}

// statusResponse aggregates operational state for the status endpoint.
type statusResponse struct {
	Status           string                     `json:"status"`
	Version          string                     `json:"version"`
	UptimeSeconds    float64                    `json:"uptime_seconds"`
	Engine           recommend.Status           `json:"engine"`
	Catalog          catalogStatus              `json:"catalog"`
	Cache            *cacheStatus               `json:"cache,omitempty"`
	Pipeline         *pipelineStatus            `json:"pipeline,omitempty"`
	Embedding        *embeddingStatus           `json:"embedding,omitempty"`
	WebSocketClients int                        `json:"websocket_clients"`
	Endpoints        []middleware.EndpointStats `json:"endpoints,omitempty"`
}

// HealthLive handles GET /api/v1/health/live
// Liveness probe: 200 whenever the process is serving.
//
// @Summary Kubernetes liveness probe
// @Description Returns 200 OK if the process is alive, regardless of external dependencies.
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rw.Success(map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /api/v1/health/ready
// Readiness probe: 200 only when the stores can serve traffic.
//
// @Summary Kubernetes readiness probe
// @Description Returns 200 OK only when the movie store is open and, if enabled, the analytics store answers a ping. Returns 503 with per-check detail otherwise.
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse "Service is ready"
// @Failure 503 {object} APIResponse "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	storeOpen := h.db != nil && !h.db.IsClosed()

	analyticsReady := true
	if h.analytics != nil {
		analyticsReady = h.analytics.Ping(r.Context()) == nil
	}

	checks := map[string]any{
		"store_open":      storeOpen,
		"analytics_ready": analyticsReady,
	}

	if !storeOpen || !analyticsReady {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service is not ready", checks)
		return
	}

	rw.Success(map[string]any{
		"ready":  true,
		"checks": checks,
	})
}

// Status handles GET /api/v1/status
// Returns an operational snapshot of the whole engine.
//
// Each section degrades independently: a failing catalog count zeroes
// that section instead of failing the endpoint.
//
// @Summary Get engine status
// @Description Returns engine counters, catalog size, cache hit rates, signal pipeline state, embedding circuit state, connected WebSocket clients, and per-endpoint latency percentiles.
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse{data=statusResponse} "Engine status"
// @Router /status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()

	status := statusResponse{
		Status:        "ok",
		Version:       "1.0.0",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Engine:        h.engine.Status(),
	}

	if count, err := h.catalog.Count(ctx); err == nil {
		status.Catalog.Movies = count
	} else {
		h.logger.Warn().Err(err).Msg("catalog count unavailable for status")
	}
	if genres, err := h.catalog.Genres(ctx); err == nil {
		status.Catalog.Genres = genres
	}

	if h.resultCache != nil {
		stats := h.resultCache.GetStats()
		status.Cache = &cacheStatus{
			Hits:           stats.Hits,
			Misses:         stats.Misses,
			Evictions:      stats.Evictions,
			TotalKeys:      stats.TotalKeys,
			HitRatePercent: h.resultCache.HitRate(),
		}
	}

	if h.pipeline != nil {
		stats := h.pipeline.Stats()
		status.Pipeline = &pipelineStatus{
			Running:          stats.Running,
			Handlers:         stats.Handlers,
			SignalsStored:    stats.Analytics.Stored,
			SignalsBroadcast: stats.Broadcast.Broadcast,
			ParseErrors:      stats.Analytics.ParseErrors + stats.Broadcast.ParseErrors,
		}
	}

	if h.embedder != nil {
		status.Embedding = &embeddingStatus{Enabled: true}
		if breaker, ok := h.embedder.(interface{ State() gobreaker.State }); ok {
			status.Embedding.CircuitState = breaker.State().String()
		}
	}

	if h.wsHub != nil {
		status.WebSocketClients = h.wsHub.ClientCount()
	}
	if h.perfMon != nil {
		status.Endpoints = h.perfMon.Stats()
	}

	rw.Success(status)
}
