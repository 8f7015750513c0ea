// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package recommend implements the movie recommendation scoring and
// personalization engine.
//
// # Architecture
//
// The engine turns a user request into a ranked, explained list of movies
// through three cooperating parts:
//
//   - Multi-Factor Scorer: blends semantic similarity, aggregate rating,
//     popularity, recency, and learned genre preference under a normalized
//     weight vector
//   - Fallback Orchestrator: degrades gracefully through semantic,
//     preference-based, and top-rated tiers, transitioning only on empty
//     tiers and padding partial ones
//   - Learning Signal Recorder: folds user interactions into a bounded
//     behavioral profile and invalidates cached results for that user
//
// # Design Principles
//
//   - Deterministic: identical requests produce identical rankings
//   - Degradable: provider failures downgrade to the next tier, never error
//   - Auditable: every request carries an ID and structured logs
//   - Observable: Prometheus metrics for tiers, cache, and signals
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, recommend.Dependencies{
//	    Catalog:      catalogStore,
//	    Embeddings:   embeddingClient,
//	    Interactions: interactionStore,
//	    Weights:      weightStore,
//	    Cache:        resultCache,
//	    Logger:       logger,
//	})
//
//	resp, err := engine.GenerateRecommendations(ctx, recommend.Request{
//	    UserID: "u-123",
//	    Query:  "mind-bending sci-fi",
//	    Limit:  10,
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Scoring is pure; per-user profile
// writes are serialized by the interaction store; cached computations are
// deduplicated so concurrent identical requests share one computation.
package recommend
