// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Sentinel errors used across the engine and its stores.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Store implementations wrap their native not-found conditions in it.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a caller-supplied value that cannot be
	// processed. The API layer maps it to a 400-class response.
	ErrInvalidInput = errors.New("invalid input")
)

// invalidInputf wraps ErrInvalidInput with a descriptive message.
func invalidInputf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Movie is a catalog entry as seen by the scoring engine.
//
// Rating is the aggregate critic/audience score on a 0-10 scale.
// Popularity is an unbounded raw popularity figure normalized against a
// configurable reference during scoring. Zero values mean the attribute is
// unknown and contribute nothing to the score.
type Movie struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Genres     []string `json:"genres,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	Popularity float64  `json:"popularity,omitempty"`
	Year       int      `json:"year,omitempty"`
	Overview   string   `json:"overview,omitempty"`
}

// SimilarityMatch is a single result from the embedding provider.
type SimilarityMatch struct {
	MovieID    string  `json:"movieId"`
	Similarity float64 `json:"similarity"`
}

// Method identifies the recommendation tier that produced a result list.
type Method string

// Recommendation methods, ordered from most to least personalized.
const (
	MethodSemantic   Method = "semantic"
	MethodPreference Method = "preference-based"
	MethodFallback   Method = "fallback"
)

// DiscoveryFactor classifies how adventurous a recommendation is relative
// to the user's established taste.
type DiscoveryFactor string

// Discovery factors, ordered from most to least conservative.
const (
	DiscoverySafe      DiscoveryFactor = "safe"
	DiscoveryStretch   DiscoveryFactor = "stretch"
	DiscoveryAdventure DiscoveryFactor = "adventure"
)

// Action is a learning signal action type.
type Action string

// Supported learning signal actions.
const (
	ActionView      Action = "view"
	ActionClick     Action = "click"
	ActionSave      Action = "save"
	ActionRate      Action = "rate"
	ActionSkip      Action = "skip"
	ActionRemove    Action = "remove"
	ActionWatchTime Action = "watch_time"
)

// ParseAction validates a raw action string.
// Unknown actions are rejected with a descriptive ErrInvalidInput wrap.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionView, ActionClick, ActionSave, ActionRate, ActionSkip, ActionRemove, ActionWatchTime:
		return Action(s), nil
	default:
		return "", invalidInputf("unknown signal action %q (expected one of view, click, save, rate, skip, remove, watch_time)", s)
	}
}

// Valid reports whether the action is one of the supported values.
func (a Action) Valid() bool {
	_, err := ParseAction(string(a))
	return err == nil
}

// ReasonKind identifies which explanation rule matched for a movie.
type ReasonKind string

// Explanation kinds in priority order; the first applicable one wins.
const (
	ReasonMemoryHit      ReasonKind = "memory_hit"
	ReasonStorylineMatch ReasonKind = "storyline_match"
	ReasonPrimary        ReasonKind = "primary_reason"
)

// Badge is the UI affordance derived from a discovery factor.
type Badge struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
}

// Explanation is the single best reason a movie was recommended.
type Explanation struct {
	Kind   ReasonKind `json:"kind"`
	Reason string     `json:"reason"`
	Badge  Badge      `json:"badge"`
}

// FactorBreakdown holds the normalized per-factor values that entered the
// weighted sum, for transparency and debugging.
type FactorBreakdown struct {
	Semantic   float64 `json:"semantic"`
	Rating     float64 `json:"rating"`
	Popularity float64 `json:"popularity"`
	Recency    float64 `json:"recency"`
	Preference float64 `json:"preference"`
}

// ScoredMovie is a catalog entry with its computed score, confidence,
// discovery classification, and explanation.
type ScoredMovie struct {
	Movie       Movie           `json:"movie"`
	Score       float64         `json:"score"`
	Confidence  float64         `json:"confidence"`
	Factors     FactorBreakdown `json:"factors"`
	Discovery   DiscoveryFactor `json:"discoveryFactor"`
	Explanation Explanation     `json:"explanation"`
	Source      Method          `json:"source"`
	Similarity  *float64        `json:"similarity,omitempty"`
}

// Insights summarizes how a recommendation list was produced.
type Insights struct {
	Method          Method  `json:"method"`
	SemanticMatches int     `json:"semanticMatches"`
	TotalCandidates int     `json:"totalCandidates"`
	DiversityScore  float64 `json:"diversityScore"`
}

// Pagination describes the returned slice of the full ranked list.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	Limit        int  `json:"limit"`
	HasMore      bool `json:"hasMore"`
	TotalResults int  `json:"totalResults"`
}

// Request holds the recommendation request parameters.
//
// UserID may be empty for anonymous requests; scoring then proceeds without
// preference signal and learning is disabled. Mood, when set, augments the
// semantic query text.
type Request struct {
	UserID            string   `json:"userId"`
	Query             string   `json:"query,omitempty"`
	PreferredGenres   []string `json:"preferredGenres,omitempty"`
	Mood              string   `json:"mood,omitempty"`
	Page              int      `json:"page,omitempty"`
	Limit             int      `json:"limit,omitempty"`
	SemanticThreshold float64  `json:"semanticThreshold,omitempty"`
}

// prepare applies defaults and clamps request parameters in place.
func (r *Request) prepare(cfg *Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit <= 0 {
		r.Limit = cfg.DefaultLimit
	}
	if r.Limit > cfg.MaxLimit {
		r.Limit = cfg.MaxLimit
	}
	if r.SemanticThreshold <= 0 || r.SemanticThreshold > 1 {
		r.SemanticThreshold = cfg.SemanticThreshold
	}
	sort.Strings(r.PreferredGenres)
}

// semanticText returns the text submitted to the embedding provider.
// Mood is appended so "feel-good" and similar qualifiers steer the search.
func (r *Request) semanticText() string {
	switch {
	case r.Query != "" && r.Mood != "":
		return r.Query + " " + r.Mood
	case r.Query != "":
		return r.Query
	default:
		return r.Mood
	}
}

// Response is the full recommendation result for one request.
type Response struct {
	Movies      []ScoredMovie `json:"movies"`
	Insights    Insights      `json:"insights"`
	Pagination  Pagination    `json:"pagination"`
	RequestID   string        `json:"requestId"`
	GeneratedAt time.Time     `json:"generatedAt"`
	CacheHit    bool          `json:"cacheHit"`
}

// SignalContext carries where and how an interaction happened.
type SignalContext struct {
	PageType           string `json:"pageType,omitempty"`
	RecommendationType string `json:"recommendationType,omitempty"`
	PositionInList     int    `json:"positionInList,omitempty"`
	SessionID          string `json:"sessionId,omitempty"`
}

// Signal is a single recorded user interaction.
// Value is optional and action-specific: a star rating for rate, watched
// seconds for watch_time.
type Signal struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	MovieID   string        `json:"movieId"`
	Action    Action        `json:"action"`
	Value     *float64      `json:"value,omitempty"`
	Context   SignalContext `json:"context"`
	CreatedAt time.Time     `json:"createdAt"`
}

// BehavioralProfile is the per-user learned state.
//
// GenreAffinity values live in [0,1] and are updated incrementally, never
// overwritten wholesale. SeenMovieIDs tracks consumed movies (rated or
// watched) for candidate exclusion. RecentSignals is bounded; the oldest
// entries are dropped once the cap is reached.
type BehavioralProfile struct {
	UserID        string             `json:"userId"`
	GenreAffinity map[string]float64 `json:"genreAffinity"`
	SeenMovieIDs  map[string]bool    `json:"seenMovieIds,omitempty"`
	RecentSignals []Signal           `json:"recentSignals,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	Version       int64              `json:"version"`
}

// NewBehavioralProfile creates an empty profile for a user.
func NewBehavioralProfile(userID string) *BehavioralProfile {
	now := time.Now().UTC()
	return &BehavioralProfile{
		UserID:        userID,
		GenreAffinity: make(map[string]float64),
		SeenMovieIDs:  make(map[string]bool),
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
}

// Seen reports whether the user has consumed the movie. Nil-safe.
func (p *BehavioralProfile) Seen(movieID string) bool {
	if p == nil || p.SeenMovieIDs == nil {
		return false
	}
	return p.SeenMovieIDs[movieID]
}

// Affinity returns the user's affinity for a genre, 0 when unknown. Nil-safe.
func (p *BehavioralProfile) Affinity(genre string) float64 {
	if p == nil || p.GenreAffinity == nil {
		return 0
	}
	return p.GenreAffinity[genre]
}

// TopGenres returns up to n genres with positive affinity, strongest first.
// Equal affinities are ordered by name for deterministic results. Nil-safe.
func (p *BehavioralProfile) TopGenres(n int) []string {
	if p == nil || len(p.GenreAffinity) == 0 || n <= 0 {
		return nil
	}

	type genreAffinity struct {
		genre    string
		affinity float64
	}
	ranked := make([]genreAffinity, 0, len(p.GenreAffinity))
	for g, a := range p.GenreAffinity {
		if a > 0 {
			ranked = append(ranked, genreAffinity{genre: g, affinity: a})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].affinity != ranked[j].affinity {
			return ranked[i].affinity > ranked[j].affinity
		}
		return ranked[i].genre < ranked[j].genre
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	genres := make([]string, len(ranked))
	for i, ga := range ranked {
		genres[i] = ga.genre
	}
	return genres
}

// CatalogStore provides read access to the movie catalog.
//
// FindByGenreOverlap returns movies sharing at least one genre with the
// given set, ordered by rating descending. FindTopRated returns the
// highest-rated movies in the catalog. Implementations return errors only
// for infrastructure failures; an unknown ID is ErrNotFound.
type CatalogStore interface {
	FindByID(ctx context.Context, id string) (*Movie, error)
	FindByGenreOverlap(ctx context.Context, genres []string, limit int) ([]Movie, error)
	FindTopRated(ctx context.Context, limit int) ([]Movie, error)
}

// EmbeddingProvider performs semantic similarity search over the catalog.
// The engine treats every provider failure as zero matches and falls
// through to the next tier; errors never propagate to callers.
type EmbeddingProvider interface {
	SearchSimilar(ctx context.Context, text string, threshold float64, limit int) ([]SimilarityMatch, error)
}

// InteractionStore persists per-user interaction state.
//
// UpdateBehavioralProfile performs an atomic read-modify-write for one
// user: apply receives the current profile (created lazily when absent),
// mutates it, and the result is persisted before any concurrent writer for
// the same user proceeds. Returning an error from apply aborts the write.
//
// RecordInteraction maintains the durable side documents derived from
// signals: save/remove update the watchlist, rate updates the ratings map.
type InteractionStore interface {
	GetRatings(ctx context.Context, userID string) (map[string]float64, error)
	GetWatchlist(ctx context.Context, userID string) ([]string, error)
	GetBehavioralProfile(ctx context.Context, userID string) (*BehavioralProfile, error)
	SaveBehavioralProfile(ctx context.Context, profile *BehavioralProfile) error
	UpdateBehavioralProfile(ctx context.Context, userID string, apply func(*BehavioralProfile) error) (*BehavioralProfile, error)
	RecordInteraction(ctx context.Context, sig Signal) error
}

// WeightStore persists the scoring weight configuration.
type WeightStore interface {
	Get(ctx context.Context) (*WeightDocument, error)
	Update(ctx context.Context, partial map[string]float64, updatedBy string) (*WeightDocument, error)
}

// SignalPublisher forwards recorded signals to the telemetry pipeline.
// Publishing is fire-and-forget; failures are logged and swallowed.
type SignalPublisher interface {
	PublishSignal(ctx context.Context, sig *Signal) error
}
