// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"math"
	"testing"
	"time"
)

// fixedNow pins scoring time so recency assertions are stable.
var fixedNow = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

func testProfile(affinity map[string]float64) *BehavioralProfile {
	p := NewBehavioralProfile("u-test")
	for g, a := range affinity {
		p.GenreAffinity[g] = a
	}
	return p
}

func floatClose(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScorerFactorNormalization(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultConfig().Scoring)

	t.Run("rating scales to 0-10", func(t *testing.T) {
		t.Parallel()
		if got := s.ratingFactor(7.5); !floatClose(got, 0.75) {
			t.Errorf("ratingFactor(7.5) = %v, want 0.75", got)
		}
		if got := s.ratingFactor(0); got != 0 {
			t.Errorf("ratingFactor(0) = %v, want 0", got)
		}
		if got := s.ratingFactor(12); got != 1 {
			t.Errorf("ratingFactor(12) = %v, want 1", got)
		}
	})

	t.Run("popularity saturates at reference", func(t *testing.T) {
		t.Parallel()
		if got := s.popularityFactor(50); !floatClose(got, 0.5) {
			t.Errorf("popularityFactor(50) = %v, want 0.5", got)
		}
		if got := s.popularityFactor(250); got != 1 {
			t.Errorf("popularityFactor(250) = %v, want 1", got)
		}
		if got := s.popularityFactor(0); got != 0 {
			t.Errorf("popularityFactor(0) = %v, want 0", got)
		}
	})

	t.Run("recency decays to zero at horizon", func(t *testing.T) {
		t.Parallel()
		if got := s.recencyFactor(fixedNow.Year(), fixedNow); got != 1 {
			t.Errorf("recencyFactor(current year) = %v, want 1", got)
		}
		if got := s.recencyFactor(fixedNow.Year()-25, fixedNow); got != 0 {
			t.Errorf("recencyFactor(-25y) = %v, want 0", got)
		}
		if got := s.recencyFactor(fixedNow.Year()-10, fixedNow); !floatClose(got, 0.6) {
			t.Errorf("recencyFactor(-10y) = %v, want 0.6", got)
		}
		if got := s.recencyFactor(fixedNow.Year()-40, fixedNow); got != 0 {
			t.Errorf("recencyFactor(-40y) = %v, want 0", got)
		}
		if got := s.recencyFactor(0, fixedNow); got != 0 {
			t.Errorf("recencyFactor(unknown year) = %v, want 0", got)
		}
		if got := s.recencyFactor(fixedNow.Year()+2, fixedNow); got != 1 {
			t.Errorf("recencyFactor(future year) = %v, want 1", got)
		}
	})

	t.Run("preference averages genre affinity", func(t *testing.T) {
		t.Parallel()
		p := testProfile(map[string]float64{"Drama": 0.8, "Crime": 0.4})
		if got := s.preferenceFactor([]string{"Drama", "Crime"}, p); !floatClose(got, 0.6) {
			t.Errorf("preferenceFactor = %v, want 0.6", got)
		}
		if got := s.preferenceFactor([]string{"Drama", "Western"}, p); !floatClose(got, 0.4) {
			t.Errorf("preferenceFactor with unknown genre = %v, want 0.4", got)
		}
		if got := s.preferenceFactor([]string{"Drama"}, nil); got != 0 {
			t.Errorf("preferenceFactor(nil profile) = %v, want 0", got)
		}
		if got := s.preferenceFactor(nil, p); got != 0 {
			t.Errorf("preferenceFactor(no genres) = %v, want 0", got)
		}
	})

	t.Run("semantic clamps provider similarity", func(t *testing.T) {
		t.Parallel()
		sim := 1.3
		if got := s.semanticFactor(&sim); got != 1 {
			t.Errorf("semanticFactor(1.3) = %v, want 1", got)
		}
		if got := s.semanticFactor(nil); got != 0 {
			t.Errorf("semanticFactor(nil) = %v, want 0", got)
		}
	})
}

func TestScorerScoreWeightedSum(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultConfig().Scoring)
	sim := 0.9
	in := ScoreInput{
		Movie: Movie{
			ID:         "m1",
			Title:      "Test Movie",
			Genres:     []string{"Drama"},
			Rating:     8,
			Popularity: 50,
			Year:       fixedNow.Year(),
		},
		Similarity: &sim,
		Profile:    testProfile(map[string]float64{"Drama": 0.8}),
		Weights:    DefaultWeights(),
		Source:     MethodSemantic,
		Now:        fixedNow,
	}

	got := s.Score(in)

	// 0.4*0.9 + 0.25*0.8 + 0.15*0.5 + 0.1*1.0 + 0.1*0.8
	if !floatClose(got.Score, 0.815) {
		t.Errorf("Score = %v, want 0.815", got.Score)
	}
	if !floatClose(got.Confidence, 0.9) {
		t.Errorf("Confidence = %v, want capped 0.9", got.Confidence)
	}
	if got.Discovery != DiscoverySafe {
		t.Errorf("Discovery = %q, want %q", got.Discovery, DiscoverySafe)
	}
	if !floatClose(got.Factors.Preference, 0.8) {
		t.Errorf("Factors.Preference = %v, want 0.8", got.Factors.Preference)
	}
}

func TestScorerScoreMissingAttributes(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultConfig().Scoring)
	got := s.Score(ScoreInput{
		Movie:   Movie{ID: "m1", Title: "Unknown"},
		Weights: DefaultWeights(),
		Source:  MethodFallback,
		Now:     fixedNow,
	})

	if got.Score != 0 {
		t.Errorf("Score = %v, want 0 for attribute-free movie", got.Score)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", got.Confidence)
	}
}

func TestScorerConfidenceCaps(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Scoring
	s := NewScorer(cfg)

	tests := []struct {
		name   string
		score  float64
		source Method
		want   float64
	}{
		{
			name:   "semantic caps at 0.9",
			score:  0.95,
			source: MethodSemantic,
			want:   0.9,
		},
		{
			name:   "semantic below cap scales by multiplier",
			score:  0.5,
			source: MethodSemantic,
			want:   0.6,
		},
		{
			name:   "preference caps at 0.4",
			score:  0.8,
			source: MethodPreference,
			want:   0.4,
		},
		{
			name:   "fallback caps at 0.3",
			score:  0.8,
			source: MethodFallback,
			want:   0.3,
		},
		{
			name:   "zero score stays zero",
			score:  0,
			source: MethodSemantic,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := s.confidence(tt.score, tt.source); !floatClose(got, tt.want) {
				t.Errorf("confidence(%v, %s) = %v, want %v", tt.score, tt.source, got, tt.want)
			}
		})
	}
}

func TestScorerConfidenceMonotonic(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultConfig().Scoring)
	prev := -1.0
	for score := 0.0; score <= 1.0; score += 0.05 {
		c := s.confidence(score, MethodSemantic)
		if c < prev {
			t.Fatalf("confidence(%v) = %v dropped below previous %v", score, c, prev)
		}
		prev = c
	}
}

func TestClassifyDiscovery(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig().Scoring
	s := NewScorer(cfg)
	profile := testProfile(map[string]float64{
		"Drama":  0.9,
		"Crime":  0.8,
		"Sci-Fi": 0.7,
	})

	tests := []struct {
		name    string
		genres  []string
		profile *BehavioralProfile
		factors FactorBreakdown
		want    DiscoveryFactor
	}{
		{
			name:    "subset of top genres with high affinity is safe",
			genres:  []string{"Drama", "Crime"},
			profile: profile,
			factors: FactorBreakdown{Preference: 0.85},
			want:    DiscoverySafe,
		},
		{
			name:    "subset with weak affinity stays stretch",
			genres:  []string{"Drama"},
			profile: profile,
			factors: FactorBreakdown{Preference: 0.3},
			want:    DiscoveryStretch,
		},
		{
			name:    "partial overlap is stretch",
			genres:  []string{"Drama", "Western"},
			profile: profile,
			factors: FactorBreakdown{Preference: 0.9, Rating: 0.9},
			want:    DiscoveryStretch,
		},
		{
			name:    "no overlap with strong rating is adventure",
			genres:  []string{"Western"},
			profile: profile,
			factors: FactorBreakdown{Rating: 0.85},
			want:    DiscoveryAdventure,
		},
		{
			name:    "no overlap with strong popularity is adventure",
			genres:  []string{"Western"},
			profile: profile,
			factors: FactorBreakdown{Popularity: 0.6},
			want:    DiscoveryAdventure,
		},
		{
			name:    "no overlap and weak signals is stretch",
			genres:  []string{"Western"},
			profile: profile,
			factors: FactorBreakdown{Rating: 0.4},
			want:    DiscoveryStretch,
		},
		{
			name:    "empty profile never safe even with strong rating",
			genres:  []string{"Drama"},
			profile: nil,
			factors: FactorBreakdown{Rating: 0.9},
			want:    DiscoveryAdventure,
		},
		{
			name:    "empty profile with weak signals is stretch",
			genres:  []string{"Drama"},
			profile: nil,
			factors: FactorBreakdown{Rating: 0.4},
			want:    DiscoveryStretch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := s.classifyDiscovery(tt.genres, tt.profile, tt.factors)
			if got != tt.want {
				t.Errorf("classifyDiscovery() = %q, want %q", got, tt.want)
			}
		})
	}
}
