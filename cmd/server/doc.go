// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

/*
Package main is the entry point for the Reelrank server application.

Reelrank is a self-hosted movie recommendation engine that ranks a
catalog against per-user taste profiles, explains every result with a
score breakdown, and adapts the profiles online from recorded learning
signals.

# Application Architecture

The server implements a layered architecture with Suture v4 process
supervision:

	RootSupervisor ("reelrank")
	├── DataSupervisor ("data-layer")
	│   └── Store maintenance (signal retention + BadgerDB value log GC)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (real-time signal broadcasts)
	│   └── Signal Pipeline (in-process) or NATS components (-tags nats)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (REST API + Swagger)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Stores: BadgerDB catalog, interaction, and weight stores
 4. Analytics: DuckDB learning-signal log (optional)
 5. Embedding: External semantic similarity provider (optional)
 6. Signal Pipeline: Watermill router over in-process or NATS transport
 7. Recommendation Engine: Scoring, ranking, explanation, learning
 8. Authentication: Bearer tokens, or open mode for development
 9. Supervisor Tree: Suture v4 process supervision
 10. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest
priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=7335               # HTTP server port ("REEL" on a phone keypad)
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Authentication
	AUTH_ENABLED=true
	AUTH_SECRET=<32+ chars>      # Token signing secret
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD_HASH=<bcrypt> # bcrypt hash of the admin password

	# Stores
	BADGER_PATH=./data/reelrank  # Catalog, profiles, weights
	BADGER_IN_MEMORY=false       # RAM-only stores for tests
	DUCKDB_PATH=./data/signals.duckdb
	ANALYTICS_ENABLED=true

	# Embedding provider (optional)
	EMBEDDING_ENABLED=false
	EMBEDDING_URL=http://localhost:8000
	EMBEDDING_API_KEY=<api-key>

	# Signal transport (requires -tags nats)
	NATS_ENABLED=false
	NATS_EMBEDDED=true           # In-process broker, no external NATS
	NATS_URL=nats://localhost:4222

See config.yaml.example for the complete configuration reference.

# Build Tags

Optional build tags enable additional functionality:

	go build ./cmd/server              # Standard build, in-process signal transport
	go build -tags nats ./cmd/server   # Enable NATS JetStream signal transport

Build tags affect supervisor tree composition:
  - nats: Replaces the SignalPipelineService with NATSComponentsService
    in the messaging layer, adding durable JetStream delivery

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Waits for in-flight requests (configurable timeout)
 3. Drains the signal pipeline router
 4. Flushes pending analytics inserts and closes DuckDB
 5. Closes the BadgerDB stores
 6. Reports any services that failed to stop

# Usage Examples

Development (no auth, volatile stores):

	export AUTH_ENABLED=false
	export BADGER_IN_MEMORY=true
	go run ./cmd/server

Production:

	export AUTH_ENABLED=true
	export AUTH_SECRET=$(openssl rand -base64 32)
	export ADMIN_USERNAME=admin
	export ADMIN_PASSWORD_HASH='$2a$10$...'
	export BADGER_PATH=/data/reelrank
	export DUCKDB_PATH=/data/signals.duckdb
	./reelrank

Docker:

	docker run -d \
	  -e AUTH_ENABLED=false \
	  -e BADGER_PATH=/data/reelrank \
	  -v reelrank-data:/data \
	  -p 7335:7335 \
	  ghcr.io/reelrank/reelrank

# API Documentation

Swagger documentation is available at /swagger/index.html when the
server is running. The API is organized into categories:

  - Health: Liveness, readiness, engine status
  - Recommendations: Personalized, explained, paginated rankings
  - Signals: Learning signal ingestion and analytics
  - Movies: Catalog lookups and similar-movie queries
  - Weights: Scoring weight inspection and administration
  - Catalog: Administrative catalog import
  - WebSocket: Real-time signal feed

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/recommend: Scoring, ranking, and learning engine
  - internal/signals: Signal pipeline and transports
*/
package main
