// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/analytics"
	"github.com/reelrank/reelrank/internal/auth"
	"github.com/reelrank/reelrank/internal/cache"
	"github.com/reelrank/reelrank/internal/middleware"
	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/signals"
	ws "github.com/reelrank/reelrank/internal/websocket"
)

// Engine is the recommendation engine surface the handlers depend on.
type Engine interface {
	GenerateRecommendations(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	RecordLearningSignal(ctx context.Context, sig recommend.Signal) error
	GetWeights(ctx context.Context) (*recommend.WeightDocument, error)
	SetWeights(ctx context.Context, partial map[string]float64, updatedBy string) (*recommend.WeightDocument, error)
	Status() recommend.Status
}

// Catalog is the movie catalog surface the handlers depend on.
type Catalog interface {
	recommend.CatalogStore
	ImportBatch(ctx context.Context, movies []recommend.Movie) (imported, skipped int, err error)
	Count(ctx context.Context) (int, error)
	Genres(ctx context.Context) ([]string, error)
}

// AnalyticsStore is the signal analytics surface the handlers depend on.
// It is optional; without one the stats endpoint reports unavailable.
type AnalyticsStore interface {
	Snapshot(ctx context.Context, since time.Time, topN int) (*analytics.Stats, error)
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, websocket origin check (this file)
//   - handlers_helpers.go: Shared decode and validation helpers
//   - handlers_recommend.go: Recommendation endpoint
//   - handlers_signals.go: Signal ingestion and stats endpoints
//   - handlers_weights.go: Weight tuning endpoints
//   - handlers_movies.go: Movie lookup, similarity, and catalog import endpoints
//   - handlers_health.go: Liveness, readiness, and status endpoints
//   - handlers_auth.go: Token exchange endpoint
//   - handlers_ws.go: WebSocket upgrade endpoint
type Handler struct {
	config      Config
	engine      Engine
	catalog     Catalog
	analytics   AnalyticsStore
	embedder    recommend.EmbeddingProvider
	resultCache *cache.Cache
	db          *badger.DB
	auth        *auth.Manager
	wsHub       *ws.Hub
	pipeline    *signals.Pipeline
	perfMon     *middleware.PerformanceMonitor
	logger      zerolog.Logger
	startTime   time.Time
}

// NewHandler creates a new API handler with the required dependencies.
//
// Optional infrastructure (analytics store, embedding provider, result
// cache, signal pipeline) is attached through the Set* methods after
// construction; handlers degrade cleanly when one is absent.
//
// Example:
//
//	handler := api.NewHandler(cfg.Server, engine, catalog, db, authManager, wsHub, logger)
//	handler.SetAnalytics(analyticsStore)
//	router := api.NewRouter(handler, authManager, logger)
//	http.ListenAndServe(cfg.Server.Addr(), router.SetupChi())
//
//nolint:gocritic // zerolog.Logger is passed by value per its own API
func NewHandler(cfg Config, engine Engine, catalog Catalog, db *badger.DB, authManager *auth.Manager, wsHub *ws.Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		config:    cfg,
		engine:    engine,
		catalog:   catalog,
		db:        db,
		auth:      authManager,
		wsHub:     wsHub,
		perfMon:   middleware.NewPerformanceMonitor(1000, logger), // Keep last 1000 requests
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
	}
}

// SetAnalytics attaches the signal analytics store. Without one the
// stats endpoint responds 503 and readiness skips the analytics ping.
func (h *Handler) SetAnalytics(store AnalyticsStore) {
	h.analytics = store
}

// SetEmbedder attaches the embedding provider used by the similar-movies
// endpoint. Without one the endpoint returns an empty list.
func (h *Handler) SetEmbedder(provider recommend.EmbeddingProvider) {
	h.embedder = provider
}

// SetResultCache attaches the recommendation result cache so the status
// endpoint can report hit rates.
func (h *Handler) SetResultCache(c *cache.Cache) {
	h.resultCache = c
}

// SetPipeline attaches the signal pipeline so the status endpoint can
// report fan-out health.
func (h *Handler) SetPipeline(p *signals.Pipeline) {
	h.pipeline = p
}

// PerformanceMonitor exposes the per-endpoint latency tracker so the
// router can install its middleware on the API subtree.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout for protection against slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins.
//
// An empty Origin header is rejected: browser WebSockets always include
// one, and allowing its absence would bypass the CORS policy entirely.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		h.logger.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	for _, allowedOrigin := range h.config.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	// Origin not in allowed list - sanitize origin to prevent log injection
	h.logger.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// sanitizeLogValue removes control characters from strings to prevent
// log injection through attacker-controlled header values.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
