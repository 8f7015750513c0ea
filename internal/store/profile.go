// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package store

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/reelrank/reelrank/internal/recommend"
)

// Key prefixes for per-user interaction documents.
const (
	profileKeyPrefix   = "profile:"
	ratingsKeyPrefix   = "ratings:"
	watchlistKeyPrefix = "watchlist:"
)

// BadgerInteractionStore persists behavioral profiles, ratings, and
// watchlists in BadgerDB. Read-modify-write operations run in retried
// optimistic transactions, so concurrent signals for the same user
// serialize instead of losing updates.
type BadgerInteractionStore struct {
	db *badger.DB
}

// NewBadgerInteractionStore creates the interaction store over db.
func NewBadgerInteractionStore(db *badger.DB) *BadgerInteractionStore {
	return &BadgerInteractionStore{db: db}
}

// GetBehavioralProfile returns the learned profile for userID, or
// ErrNotFound when the user has none yet.
func (s *BadgerInteractionStore) GetBehavioralProfile(ctx context.Context, userID string) (*recommend.BehavioralProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", recommend.ErrInvalidInput)
	}

	var profile recommend.BehavioralProfile
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = readJSON(txn, profileKeyPrefix+userID, &profile)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("profile %s: %w", userID, recommend.ErrNotFound)
	}
	return &profile, nil
}

// SaveBehavioralProfile stores a profile wholesale, replacing any
// existing document for the user.
func (s *BadgerInteractionStore) SaveBehavioralProfile(ctx context.Context, profile *recommend.BehavioralProfile) error {
	if profile == nil || profile.UserID == "" {
		return fmt.Errorf("%w: profile with user id required", recommend.ErrInvalidInput)
	}

	return updateWithRetry(s.db, func(txn *badger.Txn) error {
		return writeJSON(txn, profileKeyPrefix+profile.UserID, profile)
	})
}

// UpdateBehavioralProfile atomically applies a mutation to the user's
// profile, creating an empty profile first if none exists. The updated
// profile is returned after the write commits. An error from apply
// aborts the transaction without writing.
func (s *BadgerInteractionStore) UpdateBehavioralProfile(ctx context.Context, userID string, apply func(*recommend.BehavioralProfile) error) (*recommend.BehavioralProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", recommend.ErrInvalidInput)
	}
	if apply == nil {
		return nil, fmt.Errorf("%w: apply function required", recommend.ErrInvalidInput)
	}

	var updated *recommend.BehavioralProfile
	err := updateWithRetry(s.db, func(txn *badger.Txn) error {
		profile := recommend.NewBehavioralProfile(userID)
		if _, err := readJSON(txn, profileKeyPrefix+userID, profile); err != nil {
			return err
		}
		if err := apply(profile); err != nil {
			return err
		}
		updated = profile
		return writeJSON(txn, profileKeyPrefix+userID, profile)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetRatings returns the user's star ratings keyed by movie ID. A user
// with no ratings yields an empty map.
func (s *BadgerInteractionStore) GetRatings(ctx context.Context, userID string) (map[string]float64, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", recommend.ErrInvalidInput)
	}

	ratings := make(map[string]float64)
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := readJSON(txn, ratingsKeyPrefix+userID, &ratings)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

// GetWatchlist returns the user's watchlist in insertion order. A user
// with no watchlist yields an empty result.
func (s *BadgerInteractionStore) GetWatchlist(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", recommend.ErrInvalidInput)
	}

	var list []string
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := readJSON(txn, watchlistKeyPrefix+userID, &list)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// RecordInteraction maintains the durable side documents derived from a
// signal: save and remove update the watchlist, rate updates the
// ratings map. Other actions only affect the profile and are a no-op
// here.
func (s *BadgerInteractionStore) RecordInteraction(ctx context.Context, sig recommend.Signal) error {
	if sig.UserID == "" || sig.MovieID == "" {
		return fmt.Errorf("%w: signal with user and movie id required", recommend.ErrInvalidInput)
	}

	switch sig.Action {
	case recommend.ActionSave:
		return s.addToWatchlist(sig.UserID, sig.MovieID)
	case recommend.ActionRemove:
		return s.removeFromWatchlist(sig.UserID, sig.MovieID)
	case recommend.ActionRate:
		if sig.Value == nil {
			return nil
		}
		return s.setRating(sig.UserID, sig.MovieID, *sig.Value)
	default:
		return nil
	}
}

func (s *BadgerInteractionStore) addToWatchlist(userID, movieID string) error {
	return updateWithRetry(s.db, func(txn *badger.Txn) error {
		var list []string
		if _, err := readJSON(txn, watchlistKeyPrefix+userID, &list); err != nil {
			return err
		}
		for _, id := range list {
			if id == movieID {
				return nil
			}
		}
		list = append(list, movieID)
		return writeJSON(txn, watchlistKeyPrefix+userID, list)
	})
}

func (s *BadgerInteractionStore) removeFromWatchlist(userID, movieID string) error {
	return updateWithRetry(s.db, func(txn *badger.Txn) error {
		var list []string
		if _, err := readJSON(txn, watchlistKeyPrefix+userID, &list); err != nil {
			return err
		}
		kept := list[:0]
		for _, id := range list {
			if id != movieID {
				kept = append(kept, id)
			}
		}
		if len(kept) == len(list) {
			return nil
		}
		return writeJSON(txn, watchlistKeyPrefix+userID, kept)
	})
}

func (s *BadgerInteractionStore) setRating(userID, movieID string, value float64) error {
	return updateWithRetry(s.db, func(txn *badger.Txn) error {
		ratings := make(map[string]float64)
		if _, err := readJSON(txn, ratingsKeyPrefix+userID, &ratings); err != nil {
			return err
		}
		ratings[movieID] = value
		return writeJSON(txn, ratingsKeyPrefix+userID, ratings)
	})
}
