// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.Learning.MaxRecentSignals != 200 {
		t.Errorf("MaxRecentSignals = %d, want 200", cfg.Learning.MaxRecentSignals)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "zero default limit",
			mutate: func(c *Config) { c.DefaultLimit = 0 },
		},
		{
			name:   "max limit below default",
			mutate: func(c *Config) { c.MaxLimit = 5 },
		},
		{
			name:   "zero candidate multiplier",
			mutate: func(c *Config) { c.CandidateMultiplier = 0 },
		},
		{
			name:   "threshold above one",
			mutate: func(c *Config) { c.SemanticThreshold = 1.5 },
		},
		{
			name:   "zero cache ttl",
			mutate: func(c *Config) { c.CacheTTL = 0 },
		},
		{
			name:   "zero score workers",
			mutate: func(c *Config) { c.ScoreWorkers = 0 },
		},
		{
			name:   "zero reference popularity",
			mutate: func(c *Config) { c.Scoring.ReferencePopularity = 0 },
		},
		{
			name:   "confidence cap above one",
			mutate: func(c *Config) { c.Scoring.SemanticConfidenceCap = 1.2 },
		},
		{
			name:   "zero recency horizon",
			mutate: func(c *Config) { c.Scoring.RecencyHorizonYears = 0 },
		},
		{
			name:   "zero signal bound",
			mutate: func(c *Config) { c.Learning.MaxRecentSignals = 0 },
		},
		{
			name:   "pivot above scale",
			mutate: func(c *Config) { c.Learning.RatingPivot = 6 },
		},
		{
			name:   "abandoned above completed",
			mutate: func(c *Config) { c.Learning.AbandonedWatchSeconds = 3000 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.DefaultLimit = 99
	if cfg.DefaultLimit == 99 {
		t.Error("Clone() shares state with the original")
	}
}

func TestRequestPrepare(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	tests := []struct {
		name          string
		req           Request
		wantPage      int
		wantLimit     int
		wantThreshold float64
	}{
		{
			name:          "zero values get defaults",
			req:           Request{},
			wantPage:      1,
			wantLimit:     10,
			wantThreshold: 0.7,
		},
		{
			name:          "negative page becomes first",
			req:           Request{Page: -3, Limit: 20, SemanticThreshold: 0.8},
			wantPage:      1,
			wantLimit:     20,
			wantThreshold: 0.8,
		},
		{
			name:          "limit clamped to max",
			req:           Request{Page: 2, Limit: 500},
			wantPage:      2,
			wantLimit:     50,
			wantThreshold: 0.7,
		},
		{
			name:          "threshold above one resets",
			req:           Request{SemanticThreshold: 7},
			wantPage:      1,
			wantLimit:     10,
			wantThreshold: 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := tt.req
			req.prepare(&cfg)
			if req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", req.Page, tt.wantPage)
			}
			if req.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", req.Limit, tt.wantLimit)
			}
			if req.SemanticThreshold != tt.wantThreshold {
				t.Errorf("SemanticThreshold = %v, want %v", req.SemanticThreshold, tt.wantThreshold)
			}
		})
	}
}

func TestTopGenresOrdering(t *testing.T) {
	t.Parallel()

	p := NewBehavioralProfile("u1")
	p.GenreAffinity["Drama"] = 0.9
	p.GenreAffinity["Crime"] = 0.7
	p.GenreAffinity["Comedy"] = 0.7
	p.GenreAffinity["Horror"] = 0.2
	p.GenreAffinity["Western"] = 0

	got := p.TopGenres(3)
	want := []string{"Drama", "Comedy", "Crime"}
	if len(got) != len(want) {
		t.Fatalf("TopGenres(3) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TopGenres(3)[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if all := p.TopGenres(10); len(all) != 4 {
		t.Errorf("TopGenres(10) = %v, want the 4 positive genres", all)
	}
	var nilProfile *BehavioralProfile
	if nilProfile.TopGenres(3) != nil {
		t.Error("nil profile TopGenres should be nil")
	}
}
