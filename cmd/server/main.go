// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package main is the entry point for the Reelrank server application.
//
// Reelrank is a self-hosted movie recommendation engine. It scores a
// movie catalog against per-user taste profiles, explains every ranked
// result, and adapts the profiles from recorded learning signals. The
// server exposes a REST API for recommendations, catalog lookups,
// signal ingestion, and weight administration, plus a WebSocket feed of
// recorded signals.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Stores: BadgerDB catalog, interaction, and weight stores
//  3. Analytics: DuckDB learning-signal log (optional)
//  4. Embedding: External semantic similarity provider (optional)
//  5. WebSocket Hub: Real-time signal broadcasts to connected clients
//  6. Signal Pipeline: Watermill router, in-process or NATS JetStream
//  7. Recommendation Engine: Scoring, ranking, explanation, and learning
//  8. Authentication: Bearer token auth or open mode
//  9. HTTP Server: REST API with Swagger documentation
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, BADGER_PATH, AUTH_SECRET, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// For bearer authentication (recommended):
//   - AUTH_ENABLED=true
//   - AUTH_SECRET: 32+ character secret for token signing
//   - ADMIN_USERNAME: Admin username
//   - ADMIN_PASSWORD_HASH: bcrypt hash of the admin password
//
// # Build Tags
//
// Optional build tags enable additional functionality:
//
//	go build -tags nats ./cmd/server  # Enable NATS JetStream signal transport
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete
//   - Drains the signal pipeline and flushes pending analytics inserts
//   - Closes the stores and, if enabled, the NATS components
//
// # Example Usage
//
// Development (no auth, in-memory stores):
//
//	export AUTH_ENABLED=false
//	export BADGER_IN_MEMORY=true
//	./reelrank
//
// Production:
//
//	export AUTH_ENABLED=true
//	export AUTH_SECRET=$(openssl rand -base64 32)
//	export ADMIN_USERNAME=admin
//	export ADMIN_PASSWORD_HASH='$2a$10$...'
//	export BADGER_PATH=/data/reelrank
//	export DUCKDB_PATH=/data/signals.duckdb
//	./reelrank
//
// # Port 7335
//
// The default port 7335 spells "REEL" on a phone keypad.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/reelrank/reelrank/docs" // Import generated swagger docs
	"github.com/reelrank/reelrank/internal/analytics"
	"github.com/reelrank/reelrank/internal/api"
	"github.com/reelrank/reelrank/internal/auth"
	"github.com/reelrank/reelrank/internal/cache"
	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/embedding"
	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/signals"
	"github.com/reelrank/reelrank/internal/store"
	"github.com/reelrank/reelrank/internal/supervisor"
	"github.com/reelrank/reelrank/internal/supervisor/services"
	ws "github.com/reelrank/reelrank/internal/websocket"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Config not yet available, report with the default logger
		logging.New(logging.DefaultConfig()).Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize the root zerolog logger with configuration
	logger := logging.New(cfg.Logging)

	logger.Info().Msg("Starting Reelrank with supervisor tree")
	logger.Info().
		Str("store_path", cfg.Store.Path).
		Bool("in_memory", cfg.Store.InMemory).
		Bool("auth_enabled", cfg.Auth.Enabled).
		Bool("analytics_enabled", cfg.Analytics.Enabled).
		Bool("embedding_enabled", cfg.Embedding.Enabled).
		Msg("Configuration loaded")

	// Open BadgerDB and build the catalog, interaction, and weight
	// stores on top of the shared handle
	db, err := store.Open(cfg.Store)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing store")
		}
	}()

	catalog, err := store.NewBadgerCatalog(db, cfg.Store.TopRatedIndexSize, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build catalog index")
	}
	interactions := store.NewBadgerInteractionStore(db)
	weights := store.NewBadgerWeightStore(db)
	if count, err := catalog.Count(context.Background()); err == nil {
		logger.Info().Int("movies", count).Msg("Stores initialized")
	}

	// Optional DuckDB signal log. Failure is non-fatal: scoring and
	// learning work without it, only signal statistics degrade.
	analyticsStore := initAnalytics(cfg, logger)
	if analyticsStore != nil {
		defer func() {
			if err := analyticsStore.Close(); err != nil {
				logger.Error().Err(err).Msg("Error closing analytics store")
			}
		}()
	}

	// Optional external semantic similarity provider
	embedder, err := embedding.FromConfig(cfg.Embedding, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to configure embedding provider")
	}
	if embedder != nil {
		logger.Info().Str("url", cfg.Embedding.URL).Msg("Embedding provider enabled")
	} else {
		logger.Info().Msg("Embedding provider disabled - semantic retrieval tier unavailable")
	}

	// Result cache runs its own cleanup goroutine until stopped
	resultCache := cache.New(cfg.Cache)
	defer resultCache.Stop()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger(logger)

	// Create supervisor tree
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// WebSocket hub for real-time signal broadcasts (started under
	// supervision below)
	wsHub := ws.NewHub(logger)

	// The sink interface must stay nil when the store is absent; a
	// typed-nil *analytics.Store would defeat the pipeline's nil checks.
	var sink signals.AnalyticsSink
	if analyticsStore != nil {
		sink = analyticsStore
	}

	// Signal transport: NATS JetStream when built with -tags nats and
	// enabled, otherwise the in-process Watermill transport.
	natsComponents, err := InitNATS(cfg, sink, wsHub, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize NATS transport")
	}
	AddNATSToSupervisor(tree, natsComponents)

	var pipeline *signals.Pipeline
	switch {
	case natsComponents != nil:
		// The NATS build runs the pipeline inside NATSComponents
		pipeline = natsComponents.Pipeline()
	case cfg.Signals.Enabled:
		pipeline, err = signals.NewPipeline(cfg.Signals, sink, wsHub, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create signal pipeline")
		}
		logger.Info().Msg("Signal pipeline created (in-process transport)")
	default:
		logger.Info().Msg("Signal pipeline disabled (SIGNALS_ENABLED=false)")
	}

	// The publisher interface must stay nil when no pipeline runs, for
	// the same typed-nil reason as the sink above.
	var recorder recommend.SignalPublisher
	if pipeline != nil {
		recorder = pipeline.Publisher()
	}

	engine, err := recommend.NewEngine(cfg.Engine, recommend.Dependencies{
		Catalog:      catalog,
		Embeddings:   embedder,
		Interactions: interactions,
		Weights:      weights,
		Cache:        resultCache,
		Publisher:    recorder,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	logger.Info().Msg("Recommendation engine ready")

	authManager, err := auth.NewManager(cfg.Auth, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize authentication")
	}
	if cfg.Auth.Enabled {
		logger.Info().Msg("Bearer token authentication enabled")
	} else {
		logger.Warn().Msg("============================================================")
		logger.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_ENABLED=false)")
		logger.Warn().Msg("  ")
		logger.Warn().Msg("  All endpoints are publicly accessible without authentication!")
		logger.Warn().Msg("  This mode should ONLY be used for:")
		logger.Warn().Msg("    - Local development")
		logger.Warn().Msg("    - Completely isolated private networks")
		logger.Warn().Msg("    - CI/CD testing environments")
		logger.Warn().Msg("  ")
		logger.Warn().Msg("  NEVER use AUTH_ENABLED=false in production or on public networks!")
		logger.Warn().Msg("============================================================")
	}

	if cfg.Server.RateLimitDisabled {
		logger.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
		logger.Warn().Msg("This should only be used for load testing!")
	}

	handler := api.NewHandler(cfg.Server, engine, catalog, db, authManager, wsHub, logger)
	if analyticsStore != nil {
		handler.SetAnalytics(analyticsStore)
	}
	if embedder != nil {
		handler.SetEmbedder(embedder)
	}
	handler.SetResultCache(resultCache)
	if pipeline != nil {
		handler.SetPipeline(pipeline)
	}

	router := api.NewRouter(handler, authManager, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer services: periodic signal retention and value log GC.
	// Value log GC needs an on-disk store, the pruner needs analytics.
	var gcDB services.ValueLogGC
	if !cfg.Store.InMemory {
		gcDB = db
	}
	var pruner services.SignalPruner
	if analyticsStore != nil {
		pruner = analyticsStore
	}
	tree.AddDataService(services.NewMaintenanceService(pruner, gcDB, services.MaintenanceConfig{
		RunOnStartup:   false,
		Interval:       time.Hour,
		GCDiscardRatio: 0.5,
	}, logger))
	logger.Info().Msg("Store maintenance added to supervisor tree")

	// Messaging layer services
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	logger.Info().Msg("WebSocket hub added to supervisor tree")
	if pipeline != nil && natsComponents == nil {
		tree.AddMessagingService(services.NewSignalPipelineService(pipeline))
		logger.Info().Msg("Signal pipeline added to supervisor tree")
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logger.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logger.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logger.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logger.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logger.Info().Msg("Application stopped gracefully")
}

// initAnalytics opens the DuckDB learning-signal log.
//
// Returns nil if analytics is disabled or initialization fails. The
// failure is non-fatal: recommendations and profile learning work
// without the signal log, only signal statistics and retention pruning
// are unavailable.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initAnalytics(cfg *config.Config, logger zerolog.Logger) *analytics.Store {
	if !cfg.Analytics.Enabled {
		logger.Info().Msg("Analytics store disabled (ANALYTICS_ENABLED=false)")
		return nil
	}

	analyticsStore, err := analytics.Open(cfg.Analytics, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to open analytics store")
		logger.Info().Msg("Analytics disabled - continuing without the signal log")
		return nil
	}

	logger.Info().Str("path", cfg.Analytics.Path).Msg("Analytics store initialized")
	return analyticsStore
}
