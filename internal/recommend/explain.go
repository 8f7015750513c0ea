// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"fmt"
	"math"
)

// ExplainInput gathers the evidence available for one recommended movie.
type ExplainInput struct {
	Movie      Movie
	Factors    FactorBreakdown
	Similarity *float64
	// Threshold is the semantic threshold the request ran with; a
	// similarity at or above it justifies a storyline explanation.
	Threshold float64
	Discovery DiscoveryFactor
	// OnWatchlist is true when the movie is on the user's watchlist.
	OnWatchlist bool
	// RecentlyInteracted is true when the movie appears in the user's
	// recent signal history.
	RecentlyInteracted bool
}

// Explain produces the single best reason for a recommendation.
//
// Rules are tried in priority order and the first match wins: a memory hit
// (the system recognizes the movie from the user's own history) beats a
// storyline match, which beats the generic primary reason derived from the
// strongest scoring factor.
func Explain(in ExplainInput) Explanation {
	badge := BadgeFor(in.Discovery)

	if in.OnWatchlist {
		return Explanation{
			Kind:   ReasonMemoryHit,
			Reason: fmt.Sprintf("%s is already on your watchlist", in.Movie.Title),
			Badge:  badge,
		}
	}
	if in.RecentlyInteracted {
		return Explanation{
			Kind:   ReasonMemoryHit,
			Reason: fmt.Sprintf("You explored %s recently", in.Movie.Title),
			Badge:  badge,
		}
	}

	if in.Similarity != nil && *in.Similarity >= in.Threshold {
		return Explanation{
			Kind:   ReasonStorylineMatch,
			Reason: fmt.Sprintf("Closely matches the story you asked for (%d%% match)", int(math.Round(*in.Similarity*100))),
			Badge:  badge,
		}
	}

	return Explanation{
		Kind:   ReasonPrimary,
		Reason: primaryReason(in.Movie, in.Factors),
		Badge:  badge,
	}
}

// primaryReason phrases the strongest contributing factor.
func primaryReason(m Movie, f FactorBreakdown) string {
	strongest := "rating"
	value := f.Rating
	if f.Preference > value {
		strongest, value = "preference", f.Preference
	}
	if f.Popularity > value {
		strongest, value = "popularity", f.Popularity
	}
	if f.Recency > value {
		strongest, value = "recency", f.Recency
	}

	if value <= 0 {
		return "Broadly recommended from the catalog"
	}

	switch strongest {
	case "preference":
		if len(m.Genres) > 0 {
			return fmt.Sprintf("Matches your taste in %s", m.Genres[0])
		}
		return "Matches your viewing taste"
	case "popularity":
		return "Popular with audiences right now"
	case "recency":
		return fmt.Sprintf("A recent release from %d", m.Year)
	default:
		return fmt.Sprintf("Highly rated at %.1f/10", m.Rating)
	}
}

// BadgeFor maps a discovery factor to its UI badge.
// The mapping is a pure function of the factor.
func BadgeFor(d DiscoveryFactor) Badge {
	switch d {
	case DiscoverySafe:
		return Badge{Label: "Safe Pick", Severity: "success"}
	case DiscoveryAdventure:
		return Badge{Label: "Adventure", Severity: "warning"}
	default:
		return Badge{Label: "Stretch", Severity: "info"}
	}
}
