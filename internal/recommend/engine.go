// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/metrics"
)

// ResultCache stores computed recommendation responses.
//
// GetOrCompute must collapse concurrent callers of the same key onto a
// single compute invocation and must keep that computation running even
// when individual callers abandon their request. A compute error is
// returned to every waiter and nothing is cached for the key.
type ResultCache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (any, error)) (any, bool, error)
	InvalidatePrefix(prefix string) int
}

// Dependencies are the collaborators the engine is assembled from.
//
// Embeddings and Publisher are optional: a nil provider disables the
// semantic tier, a nil publisher disables the signal pipeline. Everything
// else is required.
type Dependencies struct {
	Catalog      CatalogStore
	Embeddings   EmbeddingProvider
	Interactions InteractionStore
	Weights      WeightStore
	Cache        ResultCache
	Publisher    SignalPublisher
	Logger       zerolog.Logger
}

// Engine orchestrates candidate retrieval, scoring, explanation, caching,
// and learning. It is safe for concurrent use.
type Engine struct {
	cfg          Config
	logger       zerolog.Logger
	catalog      CatalogStore
	embeddings   EmbeddingProvider
	interactions InteractionStore
	weights      WeightStore
	cache        ResultCache
	scorer       *Scorer
	recorder     *Recorder

	requestCount    atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
	errorCount      atomic.Int64
	semanticServed  atomic.Int64
	prefServed      atomic.Int64
	fallbackServed  atomic.Int64
}

// NewEngine creates a recommendation engine.
func NewEngine(cfg Config, deps Dependencies) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if deps.Catalog == nil {
		return nil, errors.New("catalog store is required")
	}
	if deps.Interactions == nil {
		return nil, errors.New("interaction store is required")
	}
	if deps.Weights == nil {
		return nil, errors.New("weight store is required")
	}
	if deps.Cache == nil {
		return nil, errors.New("result cache is required")
	}

	logger := deps.Logger.With().Str("component", "engine").Logger()
	return &Engine{
		cfg:          cfg,
		logger:       logger,
		catalog:      deps.Catalog,
		embeddings:   deps.Embeddings,
		interactions: deps.Interactions,
		weights:      deps.Weights,
		cache:        deps.Cache,
		scorer:       NewScorer(cfg.Scoring),
		recorder:     NewRecorder(cfg, deps.Catalog, deps.Interactions, deps.Cache, deps.Publisher, deps.Logger),
	}, nil
}

// GenerateRecommendations produces a ranked, explained, paginated list.
//
// Identical concurrent requests share one computation through the result
// cache; each caller still receives its own response copy with a fresh
// request ID. Errors from the catalog propagate; embedding provider
// failures degrade to the next retrieval tier instead.
func (e *Engine) GenerateRecommendations(ctx context.Context, req Request) (*Response, error) {
	e.requestCount.Add(1)
	req.prepare(&e.cfg)

	key, err := requestKey(req)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	v, hit, err := e.cache.GetOrCompute(ctx, key, e.cfg.CacheTTL, func(cctx context.Context) (any, error) {
		return e.compute(cctx, req)
	})
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	resp, ok := v.(*Response)
	if !ok {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("unexpected cache payload %T for key %s", v, key)
	}

	if hit {
		e.cacheHits.Add(1)
	} else {
		e.cacheMisses.Add(1)
	}
	return resp.withRequestIdentity(hit), nil
}

// RecordLearningSignal folds one user interaction into the behavioral
// profile. See Recorder.Record for degradation semantics.
func (e *Engine) RecordLearningSignal(ctx context.Context, sig Signal) error {
	return e.recorder.Record(ctx, sig)
}

// GetWeights returns the active scoring weight document.
func (e *Engine) GetWeights(ctx context.Context) (*WeightDocument, error) {
	return e.weights.Get(ctx)
}

// SetWeights applies a partial weight update. Provided factors keep their
// relative proportions through normalization; omitted factors are rescaled
// with them. Every cached recommendation is invalidated because weights
// affect all users.
func (e *Engine) SetWeights(ctx context.Context, partial map[string]float64, updatedBy string) (*WeightDocument, error) {
	doc, err := e.weights.Update(ctx, partial, updatedBy)
	if err != nil {
		return nil, err
	}
	invalidated := e.cache.InvalidatePrefix(cacheKeyPrefix)
	metrics.WeightUpdates.Inc()
	metrics.CacheInvalidations.WithLabelValues("weights").Add(float64(invalidated))
	e.logger.Info().
		Str("version", doc.Version).
		Str("updated_by", updatedBy).
		Int("invalidated", invalidated).
		Msg("scoring weights updated")
	return doc, nil
}

// Status is an operational snapshot of engine counters.
type Status struct {
	Requests         int64 `json:"requests"`
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
	Errors           int64 `json:"errors"`
	Signals          int64 `json:"signals"`
	SignalFailures   int64 `json:"signal_failures"`
	SemanticServed   int64 `json:"semantic_served"`
	PreferenceServed int64 `json:"preference_served"`
	FallbackServed   int64 `json:"fallback_served"`
}

// Status returns current counter values.
func (e *Engine) Status() Status {
	signals, failures := e.recorder.Counts()
	return Status{
		Requests:         e.requestCount.Load(),
		CacheHits:        e.cacheHits.Load(),
		CacheMisses:      e.cacheMisses.Load(),
		Errors:           e.errorCount.Load(),
		Signals:          signals,
		SignalFailures:   failures,
		SemanticServed:   e.semanticServed.Load(),
		PreferenceServed: e.prefServed.Load(),
		FallbackServed:   e.fallbackServed.Load(),
	}
}

// compute runs the full retrieval and scoring pipeline for one request.
//
// Tiers are tried in order: semantic search, genre preference, top-rated
// fallback. A tier hands over only when it contributes nothing; a partial
// tier keeps its results and later tiers pad the list up to the requested
// window. The insights method names the first tier that contributed.
func (e *Engine) compute(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	sc := scoringContext{
		weights:   e.loadWeights(ctx),
		profile:   e.loadProfile(ctx, req.UserID),
		now:       time.Now().UTC(),
		threshold: req.SemanticThreshold,
	}
	sc.watchlist = e.loadWatchlist(ctx, req.UserID)
	sc.recent = recentMovieIDs(sc.profile)

	target := req.Page * req.Limit
	fetchLimit := target * e.cfg.CandidateMultiplier

	var (
		assembled []ScoredMovie
		included  = make(map[string]bool)
		insights  Insights
	)
	appendBlock := func(block []ScoredMovie, method Method) {
		for _, m := range block {
			if included[m.Movie.ID] {
				continue
			}
			// The first contributing tier keeps its full ranked block;
			// later tiers only pad up to the requested window.
			if insights.Method != "" && len(assembled) >= target {
				return
			}
			included[m.Movie.ID] = true
			assembled = append(assembled, m)
		}
		if len(assembled) > 0 && insights.Method == "" {
			insights.Method = method
		}
	}

	semantic, matches, err := e.semanticTier(ctx, req, sc, fetchLimit)
	if err != nil {
		return nil, err
	}
	insights.SemanticMatches = matches
	insights.TotalCandidates += matches
	appendBlock(semantic, MethodSemantic)

	if len(assembled) < target {
		preferred, fetched, err := e.preferenceTier(ctx, req, sc, fetchLimit)
		if err != nil {
			return nil, err
		}
		insights.TotalCandidates += fetched
		appendBlock(preferred, MethodPreference)
	}

	if len(assembled) < target {
		fallback, fetched, err := e.fallbackTier(ctx, sc, fetchLimit)
		if err != nil {
			return nil, err
		}
		insights.TotalCandidates += fetched
		appendBlock(fallback, MethodFallback)
	}

	if insights.Method == "" {
		insights.Method = MethodFallback
	}
	e.countServed(insights.Method)
	metrics.RecordRecommendation(string(insights.Method), time.Since(start))

	page, pagination := paginate(assembled, req.Page, req.Limit)
	insights.DiversityScore = diversityScore(page)

	e.logger.Debug().
		Str("method", string(insights.Method)).
		Int("candidates", insights.TotalCandidates).
		Int("results", pagination.TotalResults).
		Dur("duration", time.Since(start)).
		Msg("recommendations computed")

	return &Response{
		Movies:      page,
		Insights:    insights,
		Pagination:  pagination,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// scoringContext bundles the per-request state shared by all tiers.
type scoringContext struct {
	weights   WeightVector
	profile   *BehavioralProfile
	watchlist map[string]bool
	recent    map[string]bool
	now       time.Time
	threshold float64
}

// candidate pairs a catalog movie with its optional semantic similarity.
type candidate struct {
	movie      Movie
	similarity *float64
}

// semanticTier runs embedding search and resolves matches against the
// catalog. Provider failures and a missing provider both yield zero
// results so the orchestrator falls through; catalog failures propagate.
func (e *Engine) semanticTier(ctx context.Context, req Request, sc scoringContext, fetchLimit int) ([]ScoredMovie, int, error) {
	if e.embeddings == nil {
		return nil, 0, nil
	}
	text := req.semanticText()
	if text == "" {
		return nil, 0, nil
	}

	found, err := e.embeddings.SearchSimilar(ctx, text, req.SemanticThreshold, fetchLimit)
	if err != nil {
		e.logger.Warn().Err(err).Msg("semantic search unavailable, falling through")
		return nil, 0, nil
	}
	if len(found) == 0 {
		return nil, 0, nil
	}

	cands := make([]candidate, 0, len(found))
	for _, m := range found {
		movie, err := e.catalog.FindByID(ctx, m.MovieID)
		if errors.Is(err, ErrNotFound) {
			// Embedding index can lag catalog deletions.
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("resolving semantic match %s: %w", m.MovieID, err)
		}
		sim := m.Similarity
		cands = append(cands, candidate{movie: *movie, similarity: &sim})
	}
	return e.scoreCandidates(ctx, cands, MethodSemantic, sc), len(found), nil
}

// preferenceTier fetches candidates overlapping the request's preferred
// genres and the profile's strongest learned genres.
func (e *Engine) preferenceTier(ctx context.Context, req Request, sc scoringContext, fetchLimit int) ([]ScoredMovie, int, error) {
	genres := preferenceGenres(req, sc.profile, e.cfg.Scoring.TopGenreCount)
	if len(genres) == 0 {
		return nil, 0, nil
	}

	movies, err := e.catalog.FindByGenreOverlap(ctx, genres, fetchLimit)
	if err != nil {
		return nil, 0, fmt.Errorf("loading preference candidates: %w", err)
	}
	cands := make([]candidate, 0, len(movies))
	for _, m := range movies {
		cands = append(cands, candidate{movie: m})
	}
	return e.scoreCandidates(ctx, cands, MethodPreference, sc), len(movies), nil
}

// fallbackTier fetches the top-rated catalog slice. It is the tier of last
// resort and serves anonymous cold-start requests.
func (e *Engine) fallbackTier(ctx context.Context, sc scoringContext, fetchLimit int) ([]ScoredMovie, int, error) {
	movies, err := e.catalog.FindTopRated(ctx, fetchLimit)
	if err != nil {
		return nil, 0, fmt.Errorf("loading fallback candidates: %w", err)
	}
	cands := make([]candidate, 0, len(movies))
	for _, m := range movies {
		cands = append(cands, candidate{movie: m})
	}
	return e.scoreCandidates(ctx, cands, MethodFallback, sc), len(movies), nil
}

// preferenceGenres merges explicit request genres with the profile's top
// learned genres, request genres first, duplicates removed.
func preferenceGenres(req Request, profile *BehavioralProfile, topN int) []string {
	seen := make(map[string]bool, len(req.PreferredGenres))
	genres := make([]string, 0, len(req.PreferredGenres)+topN)
	for _, g := range req.PreferredGenres {
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		genres = append(genres, g)
	}
	for _, g := range profile.TopGenres(topN) {
		if seen[g] {
			continue
		}
		seen[g] = true
		genres = append(genres, g)
	}
	return genres
}

// scoreCandidates scores a candidate batch on a bounded worker pool,
// drops seen and zero-score movies, and ranks the survivors by score
// descending with title as the deterministic tiebreaker.
func (e *Engine) scoreCandidates(ctx context.Context, cands []candidate, source Method, sc scoringContext) []ScoredMovie {
	if len(cands) == 0 {
		return nil
	}

	workers := e.cfg.ScoreWorkers
	if workers > len(cands) {
		workers = len(cands)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]*ScoredMovie, len(cands))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.scoreOne(cands[i], source, sc)
			}
		}()
	}

feed:
	for i := range cands {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	scored := make([]ScoredMovie, 0, len(cands))
	for _, r := range results {
		if r != nil {
			scored = append(scored, *r)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Movie.Title < scored[j].Movie.Title
	})
	return scored
}

// scoreOne scores a single candidate and attaches its explanation.
// Seen movies and zero scores are filtered by returning nil.
func (e *Engine) scoreOne(c candidate, source Method, sc scoringContext) *ScoredMovie {
	if sc.profile.Seen(c.movie.ID) {
		return nil
	}

	scored := e.scorer.Score(ScoreInput{
		Movie:      c.movie,
		Similarity: c.similarity,
		Profile:    sc.profile,
		Weights:    sc.weights,
		Source:     source,
		Now:        sc.now,
	})
	if scored.Score <= 0 {
		return nil
	}

	explanation := Explain(ExplainInput{
		Movie:              c.movie,
		Factors:            scored.Factors,
		Similarity:         c.similarity,
		Threshold:          sc.threshold,
		Discovery:          scored.Discovery,
		OnWatchlist:        sc.watchlist[c.movie.ID],
		RecentlyInteracted: sc.recent[c.movie.ID],
	})

	return &ScoredMovie{
		Movie:       c.movie,
		Score:       scored.Score,
		Confidence:  scored.Confidence,
		Factors:     scored.Factors,
		Discovery:   scored.Discovery,
		Explanation: explanation,
		Source:      source,
		Similarity:  c.similarity,
	}
}

// loadWeights reads the active weight vector, degrading to defaults when
// the store is unavailable so recommendations keep flowing.
func (e *Engine) loadWeights(ctx context.Context) WeightVector {
	doc, err := e.weights.Get(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("weight store unavailable, using defaults")
		return DefaultWeights()
	}
	return doc.Vector().Normalize()
}

// loadProfile returns the user's behavioral profile, bootstrapping an
// ephemeral one from explicit ratings for users with no learned profile
// yet. Anonymous requests and load failures yield nil.
func (e *Engine) loadProfile(ctx context.Context, userID string) *BehavioralProfile {
	if userID == "" {
		return nil
	}
	profile, err := e.interactions.GetBehavioralProfile(ctx, userID)
	if err == nil {
		return profile
	}
	if !errors.Is(err, ErrNotFound) {
		e.logger.Warn().Err(err).Str("user_id", userID).Msg("behavioral profile unavailable")
		return nil
	}
	return e.bootstrapProfile(ctx, userID)
}

// bootstrapProfile derives a cold-start profile from the user's explicit
// ratings. The result is ephemeral: it seeds this request's scoring but is
// not persisted, so the learned profile stays signal-driven.
func (e *Engine) bootstrapProfile(ctx context.Context, userID string) *BehavioralProfile {
	ratings, err := e.interactions.GetRatings(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			e.logger.Warn().Err(err).Str("user_id", userID).Msg("ratings unavailable for cold-start profile")
		}
		return nil
	}
	if len(ratings) == 0 {
		return nil
	}

	profile := NewBehavioralProfile(userID)
	for movieID, value := range ratings {
		profile.SeenMovieIDs[movieID] = true
		movie, err := e.catalog.FindByID(ctx, movieID)
		if err != nil {
			continue
		}
		v := value
		delta := affinityDelta(ActionRate, &v, e.cfg.Learning)
		if delta == 0 {
			continue
		}
		for _, g := range movie.Genres {
			profile.GenreAffinity[g] = adjustAffinity(profile.GenreAffinity[g], delta)
		}
	}
	e.logger.Debug().
		Str("user_id", userID).
		Int("ratings", len(ratings)).
		Msg("cold-start profile bootstrapped from ratings")
	return profile
}

// loadWatchlist returns the user's watchlist as a set. Watchlisted movies
// are never excluded from results; the set feeds memory-hit explanations.
func (e *Engine) loadWatchlist(ctx context.Context, userID string) map[string]bool {
	if userID == "" {
		return nil
	}
	ids, err := e.interactions.GetWatchlist(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			e.logger.Warn().Err(err).Str("user_id", userID).Msg("watchlist unavailable")
		}
		return nil
	}
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// recentMovieIDs collects the movie IDs from the profile's recent signals.
func recentMovieIDs(profile *BehavioralProfile) map[string]bool {
	if profile == nil || len(profile.RecentSignals) == 0 {
		return nil
	}
	set := make(map[string]bool, len(profile.RecentSignals))
	for _, sig := range profile.RecentSignals {
		set[sig.MovieID] = true
	}
	return set
}

// countServed bumps the per-method counter for a computed response.
func (e *Engine) countServed(method Method) {
	switch method {
	case MethodSemantic:
		e.semanticServed.Add(1)
	case MethodPreference:
		e.prefServed.Add(1)
	case MethodFallback:
		e.fallbackServed.Add(1)
	}
}

// paginate slices the assembled list into the requested page window.
func paginate(movies []ScoredMovie, page, limit int) ([]ScoredMovie, Pagination) {
	total := len(movies)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return movies[start:end], Pagination{
		CurrentPage:  page,
		Limit:        limit,
		HasMore:      end < total,
		TotalResults: total,
	}
}

// diversityScore is the number of distinct genres across the delivered
// movies divided by the movie count, rounded to two decimals.
func diversityScore(movies []ScoredMovie) float64 {
	if len(movies) == 0 {
		return 0
	}
	genres := make(map[string]bool)
	for _, m := range movies {
		for _, g := range m.Movie.Genres {
			genres[g] = true
		}
	}
	return math.Round(float64(len(genres))/float64(len(movies))*100) / 100
}

// cacheKeyPrefix namespaces recommendation entries in the shared cache.
const cacheKeyPrefix = "rec:"

// userCachePrefix is the cache prefix covering one user's entries.
func userCachePrefix(userID string) string {
	return cacheKeyPrefix + userID + ":"
}

// requestKey derives the deterministic cache key for a prepared request.
// Map marshaling sorts keys, so equivalent requests hash identically.
func requestKey(req Request) (string, error) {
	params := map[string]any{
		"query":     req.Query,
		"genres":    req.PreferredGenres,
		"mood":      req.Mood,
		"page":      req.Page,
		"limit":     req.Limit,
		"threshold": req.SemanticThreshold,
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encoding cache key: %w", err)
	}
	sum := sha256.Sum256(raw)
	return userCachePrefix(req.UserID) + hex.EncodeToString(sum[:8]), nil
}

// withRequestIdentity copies the response with per-call identity fields.
// The cached instance is shared between callers and must stay untouched.
func (r *Response) withRequestIdentity(hit bool) *Response {
	out := *r
	out.Movies = make([]ScoredMovie, len(r.Movies))
	copy(out.Movies, r.Movies)
	out.RequestID = uuid.New().String()
	out.GeneratedAt = time.Now().UTC()
	out.CacheHit = hit
	return &out
}
