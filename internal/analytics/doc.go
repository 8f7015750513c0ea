// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package analytics persists learning signals to DuckDB for offline
// analysis and the signal statistics API.
//
// The store is an append-only audit log: the pipeline's analytics
// consumer inserts every delivered signal event, keyed by event ID so
// redeliveries collapse into a single row. Aggregate queries (action
// counts, unique users, per-movie activity) run directly against the
// log; retention pruning keeps it bounded.
//
// The store is optional. When disabled the pipeline simply runs
// without a persistence sink and the statistics endpoint reports the
// store as unavailable.
package analytics
