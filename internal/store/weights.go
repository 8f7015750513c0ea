// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/reelrank/reelrank/internal/recommend"
)

// weightsKey is the single document holding the scoring configuration.
const weightsKey = "weights:config"

// BadgerWeightStore persists the scoring weight document. Until the
// first update the store serves the built-in defaults without writing
// anything.
type BadgerWeightStore struct {
	db *badger.DB
}

// NewBadgerWeightStore creates the weight store over db.
func NewBadgerWeightStore(db *badger.DB) *BadgerWeightStore {
	return &BadgerWeightStore{db: db}
}

// Get returns the current weight document, or the defaults when none
// has been stored yet.
func (s *BadgerWeightStore) Get(ctx context.Context) (*recommend.WeightDocument, error) {
	var doc recommend.WeightDocument
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = readJSON(txn, weightsKey, &doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return recommend.DefaultWeightDocument(), nil
	}
	return &doc, nil
}

// Update merges partial weight overrides onto the current vector,
// validates and normalizes the result, and persists it with a bumped
// version. The stored document's dynamic-weights flag is preserved.
func (s *BadgerWeightStore) Update(ctx context.Context, partial map[string]float64, updatedBy string) (*recommend.WeightDocument, error) {
	if len(partial) == 0 {
		return nil, fmt.Errorf("%w: no weight overrides provided", recommend.ErrInvalidInput)
	}

	var updated *recommend.WeightDocument
	err := updateWithRetry(s.db, func(txn *badger.Txn) error {
		current := recommend.DefaultWeightDocument()
		var stored recommend.WeightDocument
		found, err := readJSON(txn, weightsKey, &stored)
		if err != nil {
			return err
		}
		if found {
			current = &stored
		}

		merged := current.Vector().ToMap()
		for key, value := range partial {
			merged[key] = value
		}
		vector, err := recommend.WeightsFromMap(merged)
		if err != nil {
			return err
		}
		if err := vector.Validate(); err != nil {
			return err
		}

		doc := recommend.NewWeightDocument(vector.Normalize(), nextVersion(current.Version), updatedBy)
		doc.Meta.DynamicWeightsEnabled = current.Meta.DynamicWeightsEnabled
		updated = doc
		return writeJSON(txn, weightsKey, doc)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// nextVersion increments the numeric document version. An unparsable
// version restarts the sequence from the stored document's baseline.
func nextVersion(current string) string {
	n, err := strconv.Atoi(current)
	if err != nil || n < 1 {
		n = 1
	}
	return strconv.Itoa(n + 1)
}
