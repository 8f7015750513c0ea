// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"fmt"
	"time"
)

// Config holds all engine tuning parameters.
// Zero values are replaced by defaults in Validate via DefaultConfig;
// construct with DefaultConfig() and override selectively.
type Config struct {
	// DefaultLimit is the result count used when a request omits one.
	// Default: 10
	DefaultLimit int `koanf:"default_limit"`

	// MaxLimit caps the per-page result count.
	// Default: 50
	MaxLimit int `koanf:"max_limit"`

	// CandidateMultiplier controls how many candidates each tier fetches
	// relative to the requested limit, leaving room for filtering.
	// Default: 3
	CandidateMultiplier int `koanf:"candidate_multiplier"`

	// SemanticThreshold is the minimum similarity for semantic matches
	// when the request does not override it.
	// Default: 0.7
	SemanticThreshold float64 `koanf:"semantic_threshold"`

	// CacheTTL is how long computed recommendation lists stay fresh.
	// Default: 5m
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// ScoreWorkers bounds the concurrent scoring goroutines per request.
	// Default: 8
	ScoreWorkers int `koanf:"score_workers"`

	// Scoring tunes the multi-factor scorer.
	Scoring ScoringConfig `koanf:"scoring"`

	// Learning tunes the signal recorder and profile updates.
	Learning LearningConfig `koanf:"learning"`
}

// ScoringConfig tunes factor normalization, confidence, and discovery
// classification.
type ScoringConfig struct {
	// ReferencePopularity is the raw popularity treated as "fully
	// popular"; higher values normalize to 1.
	// Default: 100
	ReferencePopularity float64 `koanf:"reference_popularity"`

	// RecencyHorizonYears is the age at which the recency factor reaches
	// zero under linear decay.
	// Default: 25
	RecencyHorizonYears int `koanf:"recency_horizon_years"`

	// ConfidenceMultiplier scales raw score into confidence before tier
	// caps apply. Kept configurable for calibration experiments.
	// Default: 1.2
	ConfidenceMultiplier float64 `koanf:"confidence_multiplier"`

	// SemanticConfidenceCap bounds confidence when semantic similarity
	// backed the score.
	// Default: 0.9
	SemanticConfidenceCap float64 `koanf:"semantic_confidence_cap"`

	// PreferenceConfidenceCap bounds confidence for preference-only
	// results.
	// Default: 0.4
	PreferenceConfidenceCap float64 `koanf:"preference_confidence_cap"`

	// FallbackConfidenceCap bounds confidence for catalog-fallback
	// results, the lowest tier.
	// Default: 0.3
	FallbackConfidenceCap float64 `koanf:"fallback_confidence_cap"`

	// TopGenreCount is how many of the user's strongest genres define
	// "familiar territory" for discovery classification.
	// Default: 5
	TopGenreCount int `koanf:"top_genre_count"`

	// SafeAffinityThreshold is the minimum preference factor for a
	// fully-familiar movie to classify as safe.
	// Default: 0.6
	SafeAffinityThreshold float64 `koanf:"safe_affinity_threshold"`

	// StrongRatingNorm is the normalized rating above which an
	// out-of-profile movie counts as an adventure pick.
	// Default: 0.7
	StrongRatingNorm float64 `koanf:"strong_rating_norm"`

	// StrongPopularityNorm is the normalized popularity above which an
	// out-of-profile movie counts as an adventure pick.
	// Default: 0.5
	StrongPopularityNorm float64 `koanf:"strong_popularity_norm"`
}

// LearningConfig tunes how signals move genre affinity.
type LearningConfig struct {
	// MaxRecentSignals bounds the per-profile signal history.
	// Default: 200
	MaxRecentSignals int `koanf:"max_recent_signals"`

	// FixedStep is the base affinity step for unvalued actions.
	// Default: 0.1
	FixedStep float64 `koanf:"fixed_step"`

	// StrongStep is the affinity step for decisive actions (remove,
	// extreme ratings, completed watches).
	// Default: 0.2
	StrongStep float64 `koanf:"strong_step"`

	// RatingPivot is the star rating treated as neutral; values above
	// push affinity up, below push it down.
	// Default: 3.0
	RatingPivot float64 `koanf:"rating_pivot"`

	// RatingScale is the maximum star rating.
	// Default: 5.0
	RatingScale float64 `koanf:"rating_scale"`

	// CompletedWatchSeconds is the watch_time value treated as a
	// completed viewing.
	// Default: 2400
	CompletedWatchSeconds float64 `koanf:"completed_watch_seconds"`

	// AbandonedWatchSeconds is the watch_time value below which a
	// viewing counts as abandoned.
	// Default: 600
	AbandonedWatchSeconds float64 `koanf:"abandoned_watch_seconds"`
}

// DefaultConfig returns production-ready engine defaults.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:        10,
		MaxLimit:            50,
		CandidateMultiplier: 3,
		SemanticThreshold:   0.7,
		CacheTTL:            5 * time.Minute,
		ScoreWorkers:        8,
		Scoring: ScoringConfig{
			ReferencePopularity:     100,
			RecencyHorizonYears:     25,
			ConfidenceMultiplier:    1.2,
			SemanticConfidenceCap:   0.9,
			PreferenceConfidenceCap: 0.4,
			FallbackConfidenceCap:   0.3,
			TopGenreCount:           5,
			SafeAffinityThreshold:   0.6,
			StrongRatingNorm:        0.7,
			StrongPopularityNorm:    0.5,
		},
		Learning: LearningConfig{
			MaxRecentSignals:      200,
			FixedStep:             0.1,
			StrongStep:            0.2,
			RatingPivot:           3.0,
			RatingScale:           5.0,
			CompletedWatchSeconds: 2400,
			AbandonedWatchSeconds: 600,
		},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit must be >= default_limit, got %d < %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.CandidateMultiplier < 1 {
		return fmt.Errorf("candidate_multiplier must be >= 1, got %d", c.CandidateMultiplier)
	}
	if c.SemanticThreshold <= 0 || c.SemanticThreshold > 1 {
		return fmt.Errorf("semantic_threshold must be in (0,1], got %v", c.SemanticThreshold)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %v", c.CacheTTL)
	}
	if c.ScoreWorkers < 1 {
		return fmt.Errorf("score_workers must be >= 1, got %d", c.ScoreWorkers)
	}
	if err := c.Scoring.validate(); err != nil {
		return err
	}
	return c.Learning.validate()
}

func (s *ScoringConfig) validate() error {
	if s.ReferencePopularity <= 0 {
		return fmt.Errorf("reference_popularity must be positive, got %v", s.ReferencePopularity)
	}
	if s.RecencyHorizonYears <= 0 {
		return fmt.Errorf("recency_horizon_years must be positive, got %d", s.RecencyHorizonYears)
	}
	if s.ConfidenceMultiplier <= 0 {
		return fmt.Errorf("confidence_multiplier must be positive, got %v", s.ConfidenceMultiplier)
	}
	for name, bound := range map[string]float64{
		"semantic_confidence_cap":   s.SemanticConfidenceCap,
		"preference_confidence_cap": s.PreferenceConfidenceCap,
		"fallback_confidence_cap":   s.FallbackConfidenceCap,
	} {
		if bound <= 0 || bound > 1 {
			return fmt.Errorf("%s must be in (0,1], got %v", name, bound)
		}
	}
	if s.TopGenreCount < 1 {
		return fmt.Errorf("top_genre_count must be >= 1, got %d", s.TopGenreCount)
	}
	if s.SafeAffinityThreshold < 0 || s.SafeAffinityThreshold > 1 {
		return fmt.Errorf("safe_affinity_threshold must be in [0,1], got %v", s.SafeAffinityThreshold)
	}
	return nil
}

func (l *LearningConfig) validate() error {
	if l.MaxRecentSignals < 1 {
		return fmt.Errorf("max_recent_signals must be >= 1, got %d", l.MaxRecentSignals)
	}
	if l.FixedStep <= 0 || l.FixedStep > 1 {
		return fmt.Errorf("fixed_step must be in (0,1], got %v", l.FixedStep)
	}
	if l.StrongStep <= 0 || l.StrongStep > 1 {
		return fmt.Errorf("strong_step must be in (0,1], got %v", l.StrongStep)
	}
	if l.RatingScale <= 0 {
		return fmt.Errorf("rating_scale must be positive, got %v", l.RatingScale)
	}
	if l.RatingPivot <= 0 || l.RatingPivot >= l.RatingScale {
		return fmt.Errorf("rating_pivot must be in (0,%v), got %v", l.RatingScale, l.RatingPivot)
	}
	if l.AbandonedWatchSeconds < 0 || l.AbandonedWatchSeconds >= l.CompletedWatchSeconds {
		return fmt.Errorf("abandoned_watch_seconds must be in [0,completed_watch_seconds), got %v", l.AbandonedWatchSeconds)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() Config {
	return *c
}
