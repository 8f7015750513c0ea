// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package embedding provides the HTTP client for the external
// embedding service that backs the semantic recommendation tier.
//
// The client wraps every call in a circuit breaker and a token-bucket
// rate limiter, and memoizes responses in a small LRU so repeated
// searches for the same taste summary stay in-process. When semantic
// search is disabled the package hands the engine a nil provider and
// the tier is skipped entirely.
package embedding
