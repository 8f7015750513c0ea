// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package store implements the persistence layer on BadgerDB: the movie
// catalog, the per-user interaction documents (behavioral profile,
// ratings, watchlist), and the scoring weight configuration.
//
// All stores share one DB handle opened by Open. Documents are JSON
// encoded under typed key prefixes (movie:, profile:, ratings:,
// watchlist:, weights:). Read-modify-write operations run as retried
// optimistic transactions; the catalog additionally keeps in-memory
// genre and top-rated indexes so candidate queries never scan the
// database.
package store
