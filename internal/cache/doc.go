// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package cache provides the in-memory caching primitives shared across
// the service: a TTL result cache that collapses concurrent computations
// for the same key onto one in-flight call, a generic LRU for memoizing
// upstream responses, and a bounded rank heap backing the catalog's
// top-rated index.
//
// The result cache supports prefix invalidation so that per-user entries
// can be dropped when a learning signal lands, and a full sweep when the
// global scoring weights change.
package cache
