// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package config

import (
	"github.com/reelrank/reelrank/internal/analytics"
	"github.com/reelrank/reelrank/internal/api"
	"github.com/reelrank/reelrank/internal/auth"
	"github.com/reelrank/reelrank/internal/cache"
	"github.com/reelrank/reelrank/internal/embedding"
	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/signals"
	"github.com/reelrank/reelrank/internal/store"
)

// Config is the root configuration for the Reelrank server. Each
// section is owned by the package it configures; this package only
// composes them, loads the layered sources, and validates the result.
//
// The struct is immutable after Load returns and safe for concurrent
// reads without synchronization.
type Config struct {
	Server    api.Config       `koanf:"server"`    // HTTP server, CORS, and rate limiting
	Auth      auth.Config      `koanf:"auth"`      // Bearer authentication and the admin token exchange
	Store     store.Config     `koanf:"store"`     // BadgerDB catalog, interaction, and weight stores
	Analytics analytics.Config `koanf:"analytics"` // Optional: DuckDB learning-signal log
	Embedding embedding.Config `koanf:"embedding"` // Optional: external semantic similarity provider
	Cache     cache.Config     `koanf:"cache"`     // In-memory recommendation cache
	Engine    recommend.Config `koanf:"engine"`    // Scoring, ranking, and learning knobs
	Signals   signals.Config   `koanf:"signals"`   // Signal pipeline router and optional NATS transport
	Logging   logging.Config   `koanf:"logging"`
}

// Load reads configuration from built-in defaults, an optional YAML
// config file, and environment variables, in that order of precedence
// (later sources override earlier ones). The file is located via
// CONFIG_PATH or the standard search paths.
//
// See LoadWithKoanf for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
