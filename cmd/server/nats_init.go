// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

//go:build nats

package main

import (
	"context"
	"fmt"
	"sync"

	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/signals"
	ws "github.com/reelrank/reelrank/internal/websocket"
)

// NATSComponents holds all NATS-related components for lifecycle management.
type NATSComponents struct {
	server   *signals.EmbeddedServer
	natsConn *natsgo.Conn

	// Pipeline bound to the JetStream transport. Its publisher is the
	// one the recommendation engine records signals through.
	pipeline *signals.Pipeline

	logger zerolog.Logger

	shutdownComplete chan struct{}
	mu               sync.Mutex
	running          bool
}

// InitNATS initializes the NATS JetStream signal transport when
// NATS_ENABLED=true.
//
// Parameters:
//   - cfg: Application configuration with NATS settings
//   - sink: Analytics sink for the persistence consumer (optional, can be nil)
//   - wsHub: WebSocket hub for real-time signal broadcasts
//   - logger: Root logger
//
// The returned components own the embedded server (if configured), the
// NATS connection, and the signal pipeline bound to the stream. They are
// started and stopped by the supervisor tree, see AddNATSToSupervisor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func InitNATS(cfg *config.Config, sink signals.AnalyticsSink, wsHub *ws.Hub, logger zerolog.Logger) (*NATSComponents, error) {
	if !cfg.Signals.NATS.Enabled {
		logger.Info().Msg("NATS signal transport disabled (NATS_ENABLED=false)")
		return nil, nil
	}
	if !cfg.Signals.Enabled {
		logger.Warn().Msg("NATS_ENABLED=true but the signal pipeline is disabled (SIGNALS_ENABLED=false)")
		return nil, nil
	}

	logger.Info().Msg("Initializing NATS signal transport...")

	natsCfg := cfg.Signals.NATS
	components := &NATSComponents{
		logger:           logger.With().Str("component", "nats").Logger(),
		shutdownComplete: make(chan struct{}),
	}

	// Step 1: Start the embedded NATS server if enabled
	var natsURL string
	if natsCfg.EmbeddedServer {
		server, err := signals.NewEmbeddedServer(natsCfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		components.server = server
		natsURL = server.ClientURL()
		logger.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	} else {
		natsURL = natsCfg.URL
		logger.Info().Str("url", natsURL).Msg("Using external NATS server")
	}

	// Step 2: Connect and provision the signal stream
	wmLogger := signals.NewWatermillLogger(logger)
	nc, err := signals.Connect(natsCfg, natsURL, wmLogger)
	if err != nil {
		components.shutdownConnection(context.Background())
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	components.natsConn = nc
	logger.Info().Msg("NATS connection established")

	stream, err := signals.EnsureStream(context.Background(), nc, natsCfg)
	if err != nil {
		components.shutdownConnection(context.Background())
		return nil, fmt.Errorf("ensure stream exists: %w", err)
	}
	streamInfo := stream.CachedInfo()
	logger.Info().
		Str("name", streamInfo.Config.Name).
		Strs("subjects", streamInfo.Config.Subjects).
		Dur("max_age", streamInfo.Config.MaxAge).
		Msg("JetStream stream ready")

	// Step 3: Create the JetStream publisher and durable subscriber
	pub, err := signals.NewNATSPublisher(natsCfg, natsURL, wmLogger)
	if err != nil {
		components.shutdownConnection(context.Background())
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	sub, err := signals.NewNATSSubscriber(natsCfg, natsURL, wmLogger)
	if err != nil {
		components.shutdownConnection(context.Background())
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	// Step 4: Build the signal pipeline over the JetStream transport
	pipeline, err := signals.NewPipelineWithTransport(cfg.Signals, pub, sub, sink, wsHub, logger)
	if err != nil {
		components.shutdownConnection(context.Background())
		return nil, fmt.Errorf("create signal pipeline: %w", err)
	}
	components.pipeline = pipeline

	components.mu.Lock()
	components.running = true
	components.mu.Unlock()

	logger.Info().Msg("NATS signal transport initialized successfully")
	return components, nil
}

// Start runs the signal pipeline router on the NATS transport.
// This is called by the supervisor tree after InitNATS.
func (c *NATSComponents) Start(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.pipeline == nil {
		return nil
	}

	c.logger.Info().Msg("Starting signal pipeline on NATS transport...")
	if err := c.pipeline.Start(ctx); err != nil {
		return fmt.Errorf("start signal pipeline: %w", err)
	}

	c.logger.Info().Msg("All NATS components started")
	return nil
}

// Shutdown gracefully stops all NATS components.
//
// Shutdown order is critical for clean termination:
//  1. Stop the pipeline first (drains the router, closes the transport)
//  2. Close the NATS connection
//  3. Shutdown the embedded server last
func (c *NATSComponents) Shutdown(ctx context.Context) {
	if c == nil {
		return
	}

	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	c.logger.Info().Msg("Shutting down NATS components...")

	c.shutdownPipeline()
	c.shutdownConnection(ctx)

	close(c.shutdownComplete)
	c.logger.Info().Msg("NATS shutdown complete")
}

// shutdownPipeline drains the router and closes the transport.
func (c *NATSComponents) shutdownPipeline() {
	if c.pipeline == nil {
		return
	}
	if err := c.pipeline.Stop(); err != nil {
		c.logger.Error().Err(err).Msg("Error stopping signal pipeline")
	}
	c.logger.Info().Msg("Signal pipeline stopped")
}

// shutdownConnection closes the NATS connection and embedded server.
// Also used to unwind partial initialization, so each component is
// individually nil-checked.
func (c *NATSComponents) shutdownConnection(ctx context.Context) {
	if c.natsConn != nil {
		c.natsConn.Close()
		c.logger.Info().Msg("NATS connection closed")
	}
	if c.server != nil {
		if err := c.server.Shutdown(ctx); err != nil {
			c.logger.Error().Err(err).Msg("Error shutting down NATS server")
		}
		c.logger.Info().Msg("Embedded NATS server stopped")
	}
}

// IsRunning returns whether NATS components are active.
func (c *NATSComponents) IsRunning() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Pipeline returns the signal pipeline bound to the NATS transport.
// Returns nil if NATS is not initialized.
func (c *NATSComponents) Pipeline() *signals.Pipeline {
	if c == nil {
		return nil
	}
	return c.pipeline
}
