// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package main provides the Reelrank HTTP server
//
// The Reelrank API serves personalized, explained movie recommendations
// and records the learning signals that adapt each user's taste profile.
//
// @title Reelrank API
// @version 1.0
// @description Movie recommendation scoring and personalization engine
// @description
// @description ## Features
// @description
// @description - **Personalized Ranking**: Multi-component scoring (semantic, preference, quality, recency, popularity, diversity) against per-user taste profiles
// @description - **Explained Results**: Every recommendation carries its score breakdown and human-readable reasons
// @description - **Adaptive Profiles**: Learning signals (view, click, save, rate, skip, remove, watch_time) shift genre affinities online
// @description - **Semantic Retrieval**: Optional external embedding service for free-text queries
// @description - **Real-time Updates**: WebSocket feed of recorded signals
// @description - **Signal Analytics**: DuckDB-backed aggregation over the signal log
// @description
// @description ## Authentication
// @description
// @description Protected endpoints require a bearer token in the Authorization header.
// @description Use `/api/v1/auth/token` to exchange admin credentials for a token.
// @description Admin-only endpoints (weight updates, catalog import, signal stats) additionally require the admin role.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 300 requests per minute per IP address.
// @description Rate limit headers are included in responses: `X-RateLimit-Limit`, `X-RateLimit-Remaining`, `X-RateLimit-Reset`.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "success": false,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message",
// @description     "request_id": "..."
// @description   },
// @description   "meta": {
// @description     "request_id": "...",
// @description     "timestamp": "2026-08-25T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/reelrank/reelrank/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:7335
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by /api/v1/auth/token. Format: "Bearer {token}".
//
// @tag.name Health
// @tag.description Liveness, readiness, and engine status endpoints
//
// @tag.name Auth
// @tag.description Credential exchange for bearer tokens
//
// @tag.name Recommendations
// @tag.description Personalized, explained, paginated movie recommendations
//
// @tag.name Signals
// @tag.description Learning signal ingestion and analytics
//
// @tag.name Movies
// @tag.description Catalog lookups and similarity queries
//
// @tag.name Catalog
// @tag.description Administrative catalog import
//
// @tag.name Weights
// @tag.description Scoring weight inspection and administration
//
// @tag.name WebSocket
// @tag.description Real-time signal feed for connected clients
package main
