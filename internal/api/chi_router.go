// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/reelrank/reelrank/internal/auth"
	"github.com/reelrank/reelrank/internal/middleware"
)

// Router wires handlers, middleware, and the Chi mux together.
type Router struct {
	handler       *Handler
	auth          *auth.Manager
	chiMiddleware *ChiMiddleware
	logger        zerolog.Logger
}

// NewRouter creates a router for the given handler set.
func NewRouter(handler *Handler, authManager *auth.Manager, logger zerolog.Logger) *Router {
	return &Router{
		handler:       handler,
		auth:          authManager,
		chiMiddleware: NewChiMiddlewareFromConfig(handler.config),
		logger:        logger,
	}
}

// SetupChi builds the complete HTTP handler tree.
//
// Middleware that wraps the ResponseWriter (logging, metrics,
// compression, timeouts) is applied per route group, never globally,
// so the WebSocket upgrade path keeps the raw writer it needs for
// connection hijacking.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// ========================
	// Health Endpoints
	// ========================

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Authentication Endpoints
	// ========================

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())
		r.Use(APISecurityHeaders())
		r.Use(middleware.Logger(router.logger))
		r.Post("/token", router.handler.ExchangeToken)
	})

	// ========================
	// Core API Endpoints
	// ========================

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		// The upgrade route takes only rate limiting and identity.
		// Timeout and body-wrapping middleware would break the
		// long-lived connection.
		r.With(
			router.chiMiddleware.RateLimitWebSocket(),
			router.auth.Identify,
		).Get("/ws", router.handler.WebSocket)

		// REST endpoints
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(middleware.Logger(router.logger))
			r.Use(middleware.PrometheusMetrics)
			r.Use(router.handler.perfMon.Middleware)
			r.Use(middleware.Compression)
			r.Use(chimiddleware.Timeout(router.handler.config.RequestTimeout))
			r.Use(router.auth.Identify)
			r.Use(chiPathValue)

			r.Post("/recommendations", router.handler.Recommendations)
			r.Post("/signals", router.handler.RecordSignal)
			r.Get("/weights", router.handler.GetWeights)
			r.Get("/status", router.handler.Status)
			r.Get("/movies/{id}", router.handler.GetMovie)
			r.Get("/movies/{id}/similar", router.handler.SimilarMovies)

			// Admin operations
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitWrite())
				r.Use(router.auth.RequireAdmin)

				r.Put("/weights", router.handler.UpdateWeights)
				r.Get("/signals/stats", router.handler.SignalStats)
				r.Post("/admin/catalog/import", router.handler.ImportCatalog)
			})
		})
	})

	// ========================
	// Observability
	// ========================

	r.Handle("/metrics", promhttp.Handler())

	if router.handler.config.SwaggerEnabled {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("list"),
			httpSwagger.DomID("swagger-ui"),
		))
	}

	return r
}
