// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"math"
	"time"
)

// Weight component keys as they appear in configuration, the persisted
// document, and the weights API.
const (
	WeightKeySemantic   = "semantic"
	WeightKeyRating     = "rating"
	WeightKeyPopularity = "popularity"
	WeightKeyRecency    = "recency"
	WeightKeyPreference = "preference"
)

// WeightKeys lists the five canonical component keys in scoring order.
var WeightKeys = []string{
	WeightKeySemantic,
	WeightKeyRating,
	WeightKeyPopularity,
	WeightKeyRecency,
	WeightKeyPreference,
}

// weightSumTolerance is the accepted deviation from 1.0 for a normalized
// vector, covering float64 accumulation error.
const weightSumTolerance = 1e-9

// WeightVector holds the relative importance of each scoring factor.
// A vector is usable once normalized: components in [0,1], sum exactly 1
// within tolerance.
type WeightVector struct {
	Semantic   float64 `json:"semantic" koanf:"semantic"`
	Rating     float64 `json:"rating" koanf:"rating"`
	Popularity float64 `json:"popularity" koanf:"popularity"`
	Recency    float64 `json:"recency" koanf:"recency"`
	Preference float64 `json:"preference" koanf:"preference"`
}

// DefaultWeights returns the shipped weight vector.
// Semantic similarity dominates because query-driven requests are the
// primary path; the remaining mass is split over catalog signals.
func DefaultWeights() WeightVector {
	return WeightVector{
		Semantic:   0.40,
		Rating:     0.25,
		Popularity: 0.15,
		Recency:    0.10,
		Preference: 0.10,
	}
}

// Sum returns the total of all components.
func (w WeightVector) Sum() float64 {
	return w.Semantic + w.Rating + w.Popularity + w.Recency + w.Preference
}

// Normalize scales the vector so components sum to 1.
// An all-zero vector cannot be scaled and falls back to DefaultWeights;
// callers that must reject zero-sum input validate before normalizing.
func (w WeightVector) Normalize() WeightVector {
	sum := w.Sum()
	if sum == 0 {
		return DefaultWeights()
	}
	return WeightVector{
		Semantic:   w.Semantic / sum,
		Rating:     w.Rating / sum,
		Popularity: w.Popularity / sum,
		Recency:    w.Recency / sum,
		Preference: w.Preference / sum,
	}
}

// Validate checks that every component is in [0,1] and the sum is positive.
// It does not require the sum to be 1; Normalize handles scaling.
func (w WeightVector) Validate() error {
	components := map[string]float64{
		WeightKeySemantic:   w.Semantic,
		WeightKeyRating:     w.Rating,
		WeightKeyPopularity: w.Popularity,
		WeightKeyRecency:    w.Recency,
		WeightKeyPreference: w.Preference,
	}
	for _, key := range WeightKeys {
		v := components[key]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidInputf("weight %q must be a finite number", key)
		}
		if v < 0 || v > 1 {
			return invalidInputf("weight %q must be in [0,1], got %v", key, v)
		}
	}
	if w.Sum() == 0 {
		return invalidInputf("weights must not all be zero")
	}
	return nil
}

// IsNormalized reports whether the components sum to 1 within tolerance.
func (w WeightVector) IsNormalized() bool {
	return math.Abs(w.Sum()-1) <= weightSumTolerance
}

// ToMap returns the vector keyed by the canonical component names.
func (w WeightVector) ToMap() map[string]float64 {
	return map[string]float64{
		WeightKeySemantic:   w.Semantic,
		WeightKeyRating:     w.Rating,
		WeightKeyPopularity: w.Popularity,
		WeightKeyRecency:    w.Recency,
		WeightKeyPreference: w.Preference,
	}
}

// WeightsFromMap builds a vector from a canonical-keyed map.
// Unknown keys and out-of-range values are rejected with ErrInvalidInput.
// Missing keys default to zero, which supports partial updates when the
// caller merges over an existing vector first.
func WeightsFromMap(m map[string]float64) (WeightVector, error) {
	var w WeightVector
	for key, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return WeightVector{}, invalidInputf("weight %q must be a finite number", key)
		}
		if v < 0 || v > 1 {
			return WeightVector{}, invalidInputf("weight %q must be in [0,1], got %v", key, v)
		}
		switch key {
		case WeightKeySemantic:
			w.Semantic = v
		case WeightKeyRating:
			w.Rating = v
		case WeightKeyPopularity:
			w.Popularity = v
		case WeightKeyRecency:
			w.Recency = v
		case WeightKeyPreference:
			w.Preference = v
		default:
			return WeightVector{}, invalidInputf("unknown weight key %q", key)
		}
	}
	return w, nil
}

// WeightEntry is one component of the persisted weight document.
type WeightEntry struct {
	Base        float64 `json:"base"`
	Description string  `json:"description,omitempty"`
}

// WeightMeta carries operational metadata for the weight document.
type WeightMeta struct {
	DynamicWeightsEnabled bool      `json:"dynamicWeightsEnabled"`
	LastManualUpdate      time.Time `json:"lastManualUpdate,omitempty"`
	LastUpdatedBy         string    `json:"lastUpdatedBy,omitempty"`
}

// WeightDocument is the persisted scoring configuration.
//
// Version is a monotonically increasing sequence rendered as a string so
// clients can compare configurations without parsing semantics into it.
type WeightDocument struct {
	Weights     map[string]WeightEntry `json:"weights"`
	Meta        WeightMeta             `json:"meta"`
	Version     string                 `json:"version"`
	LastUpdated time.Time              `json:"lastUpdated"`
}

// weightDescriptions documents each factor in the persisted default.
var weightDescriptions = map[string]string{
	WeightKeySemantic:   "Embedding similarity between the request text and the movie",
	WeightKeyRating:     "Aggregate critic and audience rating, 0-10 normalized",
	WeightKeyPopularity: "Raw popularity against the configured reference value",
	WeightKeyRecency:    "Release-year decay over the configured horizon",
	WeightKeyPreference: "Learned genre affinity from the behavioral profile",
}

// DefaultWeightDocument returns the document persisted on first start.
func DefaultWeightDocument() *WeightDocument {
	return NewWeightDocument(DefaultWeights(), "1", "system")
}

// NewWeightDocument builds a document from a normalized vector.
func NewWeightDocument(w WeightVector, version, updatedBy string) *WeightDocument {
	now := time.Now().UTC()
	entries := make(map[string]WeightEntry, len(WeightKeys))
	for key, base := range w.ToMap() {
		entries[key] = WeightEntry{Base: base, Description: weightDescriptions[key]}
	}
	return &WeightDocument{
		Weights: entries,
		Meta: WeightMeta{
			DynamicWeightsEnabled: false,
			LastManualUpdate:      now,
			LastUpdatedBy:         updatedBy,
		},
		Version:     version,
		LastUpdated: now,
	}
}

// Vector extracts the weight vector from the document.
func (d *WeightDocument) Vector() WeightVector {
	if d == nil || len(d.Weights) == 0 {
		return DefaultWeights()
	}
	return WeightVector{
		Semantic:   d.Weights[WeightKeySemantic].Base,
		Rating:     d.Weights[WeightKeyRating].Base,
		Popularity: d.Weights[WeightKeyPopularity].Base,
		Recency:    d.Weights[WeightKeyRecency].Base,
		Preference: d.Weights[WeightKeyPreference].Base,
	}
}
