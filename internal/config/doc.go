// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

/*
Package config composes, loads, and validates the Reelrank server
configuration.

Each configuration section is owned by the package it configures (the
api package owns the server section, the store package owns the store
section, and so on). This package assembles those sections into one
root Config, loads the layered sources with Koanf, and runs every
section's validation before the result is handed to the rest of the
application.

# Configuration Sources

Configuration is loaded in order of precedence (later overrides
earlier):

 1. Built-in defaults
 2. YAML config file (config.yaml, or the path in CONFIG_PATH)
 3. Environment variables

# Configuration Structure

The root Config groups settings by component:

  - server: HTTP listen address, timeouts, CORS, rate limiting
  - auth: bearer authentication and the admin token exchange
  - store: BadgerDB catalog, interaction, and weight stores
  - analytics: DuckDB learning-signal log (optional)
  - embedding: external semantic similarity provider (optional)
  - cache: in-memory recommendation cache
  - engine: scoring, ranking, and learning knobs
  - signals: signal pipeline router and NATS transport (optional)
  - logging: level, format, caller reporting

# Environment Variables

Every commonly tuned setting has an environment variable. The full
mapping lives in envTransformFunc; the most used ones:

HTTP Server:
  - HTTP_HOST: bind address (default: 0.0.0.0)
  - HTTP_PORT: listen port (default: 7335)
  - CORS_ORIGINS: comma-separated allowed origins
  - RATE_LIMIT_REQUESTS: requests per window per IP (default: 300)
  - DISABLE_RATE_LIMIT: turn rate limiting off (default: false)

Authentication:
  - AUTH_ENABLED: require bearer tokens on admin routes (default: false)
  - AUTH_SECRET: HMAC signing secret, minimum 32 characters
  - ADMIN_USERNAME: account accepted by the token exchange
  - ADMIN_PASSWORD_HASH: bcrypt hash of the admin password

Storage:
  - BADGER_PATH: catalog store directory (default: ./data/reelrank)
  - DUCKDB_PATH: signal log file (default: ./data/signals.duckdb)
  - ANALYTICS_ENABLED: keep the DuckDB signal log (default: true)

Embedding Provider:
  - EMBEDDING_ENABLED: enable semantic search (default: false)
  - EMBEDDING_URL: provider base URL
  - EMBEDDING_API_KEY: sent as X-API-Key when set

Signal Pipeline:
  - SIGNALS_ENABLED: fan signals out to analytics and websockets (default: true)
  - NATS_ENABLED: use NATS JetStream as the transport (default: false)
  - NATS_URL: broker URL (default: nats://localhost:4222)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("failed to load config: %v", err)
	}

	fmt.Printf("listening on %s\n", cfg.Server.Addr())

# Validation

Load validates before returning. Each section validates itself and the
first failure is reported with its section name, for example:

	configuration validation failed: auth: auth secret must be at least 32 characters

Disabled optional sections (auth, analytics, embedding, NATS) skip
their own checks, so a fresh install with no configuration at all
starts cleanly.

# Thread Safety

The Config struct is immutable after Load returns and safe for
concurrent reads from multiple goroutines without synchronization. For
hot reload, load a fresh Config with WatchConfigFile and swap the
pointer under a lock.
*/
package config
