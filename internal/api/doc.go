// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package api exposes the recommendation engine over HTTP.
//
// The router is chi-based; every endpoint responds with the APIResponse
// envelope and is grouped under /api/v1 with per-group rate limits.
// Handler methods are split across files by concern:
//
//   - handlers.go: Handler struct, constructor, WebSocket origin check
//   - handlers_recommend.go: recommendation generation
//   - handlers_signals.go: learning signal intake and analytics stats
//   - handlers_weights.go: scoring weight read/update
//   - handlers_movies.go: catalog lookup, similarity, bulk import
//   - handlers_health.go: liveness, readiness, operational status
//   - handlers_auth.go: admin token exchange
//   - handlers_ws.go: WebSocket upgrade onto the live event hub
//
// Error mapping is uniform: recommend.ErrInvalidInput and validation
// failures become 400 with field details, recommend.ErrNotFound becomes
// 404, auth failures become 401/403, and everything else is a 500 whose
// detail stays in the server log.
package api
