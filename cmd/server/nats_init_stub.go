// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

//go:build !nats

package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/signals"
	ws "github.com/reelrank/reelrank/internal/websocket"
)

// NATSComponents is a stub for non-NATS builds.
type NATSComponents struct{}

// InitNATS is a no-op stub for non-NATS builds.
// Returns nil to indicate NATS is not available; the caller falls back
// to the in-process signal transport.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func InitNATS(cfg *config.Config, _ signals.AnalyticsSink, _ *ws.Hub, logger zerolog.Logger) (*NATSComponents, error) {
	if cfg.Signals.NATS.Enabled {
		logger.Warn().Msg("NATS_ENABLED=true but NATS support not compiled (build with -tags nats)")
	}
	return nil, nil
}

// Start is a no-op stub for non-NATS builds.
func (c *NATSComponents) Start(_ context.Context) error {
	return nil
}

// Shutdown is a no-op stub for non-NATS builds.
func (c *NATSComponents) Shutdown(_ context.Context) {}

// IsRunning returns false for non-NATS builds.
func (c *NATSComponents) IsRunning() bool {
	return false
}

// Pipeline returns nil for non-NATS builds.
func (c *NATSComponents) Pipeline() *signals.Pipeline {
	return nil
}
