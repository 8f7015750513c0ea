// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"time"
)

// Scorer computes weighted multi-factor scores for candidate movies.
// It is pure and safe for concurrent use; all state lives in the input.
type Scorer struct {
	cfg ScoringConfig
}

// NewScorer creates a scorer with the given tuning.
func NewScorer(cfg ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// ScoreInput carries everything needed to score one movie.
//
// Similarity is non-nil only for candidates produced by semantic search.
// Profile may be nil (anonymous or cold-start users). Weights must be
// normalized. Source selects the confidence cap tier.
type ScoreInput struct {
	Movie      Movie
	Similarity *float64
	Profile    *BehavioralProfile
	Weights    WeightVector
	Source     Method
	Now        time.Time
}

// Scored is the scorer output for one movie.
type Scored struct {
	Score      float64
	Confidence float64
	Factors    FactorBreakdown
	Discovery  DiscoveryFactor
}

// Score computes the weighted score, confidence, and discovery factor.
// A movie missing every scoring attribute yields score 0; the orchestrator
// excludes such candidates from results.
func (s *Scorer) Score(in ScoreInput) Scored {
	factors := FactorBreakdown{
		Semantic:   s.semanticFactor(in.Similarity),
		Rating:     s.ratingFactor(in.Movie.Rating),
		Popularity: s.popularityFactor(in.Movie.Popularity),
		Recency:    s.recencyFactor(in.Movie.Year, in.Now),
		Preference: s.preferenceFactor(in.Movie.Genres, in.Profile),
	}

	w := in.Weights
	score := w.Semantic*factors.Semantic +
		w.Rating*factors.Rating +
		w.Popularity*factors.Popularity +
		w.Recency*factors.Recency +
		w.Preference*factors.Preference

	return Scored{
		Score:      score,
		Confidence: s.confidence(score, in.Source),
		Factors:    factors,
		Discovery:  s.classifyDiscovery(in.Movie.Genres, in.Profile, factors),
	}
}

// semanticFactor clamps provider similarity into [0,1]; absent similarity
// contributes nothing.
func (s *Scorer) semanticFactor(similarity *float64) float64 {
	if similarity == nil {
		return 0
	}
	return clamp01(*similarity)
}

// ratingFactor normalizes a 0-10 aggregate rating.
func (s *Scorer) ratingFactor(rating float64) float64 {
	return clamp01(rating / 10)
}

// popularityFactor normalizes raw popularity against the reference value,
// saturating at 1.
func (s *Scorer) popularityFactor(popularity float64) float64 {
	if popularity <= 0 {
		return 0
	}
	return clamp01(popularity / s.cfg.ReferencePopularity)
}

// recencyFactor decays linearly with release age, reaching 0 at the
// horizon. Unknown years contribute nothing; future years count as new.
func (s *Scorer) recencyFactor(year int, now time.Time) float64 {
	if year <= 0 {
		return 0
	}
	age := now.Year() - year
	if age <= 0 {
		return 1
	}
	return clamp01(1 - float64(age)/float64(s.cfg.RecencyHorizonYears))
}

// preferenceFactor averages the user's affinity across the movie's genres.
// No profile, no genres, or no overlap all yield 0.
func (s *Scorer) preferenceFactor(genres []string, profile *BehavioralProfile) float64 {
	if profile == nil || len(genres) == 0 {
		return 0
	}
	var sum float64
	for _, g := range genres {
		sum += profile.Affinity(g)
	}
	return clamp01(sum / float64(len(genres)))
}

// confidence scales score by the calibration multiplier and applies the
// tier cap: semantic results may reach 0.9, preference-only results stay
// under a flat 0.4 ceiling, catalog fallback under 0.3.
func (s *Scorer) confidence(score float64, source Method) float64 {
	base := score * s.cfg.ConfidenceMultiplier

	var ceiling float64
	switch source {
	case MethodSemantic:
		ceiling = s.cfg.SemanticConfidenceCap
	case MethodPreference:
		ceiling = s.cfg.PreferenceConfidenceCap
	default:
		ceiling = s.cfg.FallbackConfidenceCap
	}

	if base > ceiling {
		base = ceiling
	}
	return clamp01(base)
}

// classifyDiscovery buckets a movie by how far it sits from the user's
// established taste. Checks run safe, stretch, adventure; the first match
// wins so ambiguous cases land in the more conservative bucket. An empty
// profile has no familiar territory and can never produce safe.
func (s *Scorer) classifyDiscovery(genres []string, profile *BehavioralProfile, factors FactorBreakdown) DiscoveryFactor {
	top := profile.TopGenres(s.cfg.TopGenreCount)
	if len(genres) > 0 && len(top) > 0 {
		topSet := make(map[string]bool, len(top))
		for _, g := range top {
			topSet[g] = true
		}
		overlap := 0
		for _, g := range genres {
			if topSet[g] {
				overlap++
			}
		}
		switch {
		case overlap == len(genres) && factors.Preference >= s.cfg.SafeAffinityThreshold:
			return DiscoverySafe
		case overlap > 0:
			return DiscoveryStretch
		}
	}

	if factors.Rating >= s.cfg.StrongRatingNorm || factors.Popularity >= s.cfg.StrongPopularityNorm {
		return DiscoveryAdventure
	}
	return DiscoveryStretch
}

// clamp01 bounds v into [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
