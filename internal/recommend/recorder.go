// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/metrics"
)

// Recorder folds learning signals into behavioral profiles.
//
// Recording is fire-and-forget telemetry: after input validation, every
// failure is logged on a dedicated telemetry channel and swallowed so a
// broken profile store can never break the user-facing request path.
type Recorder struct {
	cfg          Config
	logger       zerolog.Logger
	telemetry    zerolog.Logger
	catalog      CatalogStore
	interactions InteractionStore
	cache        ResultCache
	publisher    SignalPublisher

	signalCount  atomic.Int64
	failureCount atomic.Int64
}

// NewRecorder creates a signal recorder.
// Publisher may be nil when the signal pipeline is disabled.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecorder(cfg Config, catalog CatalogStore, interactions InteractionStore, cache ResultCache, publisher SignalPublisher, logger zerolog.Logger) *Recorder {
	return &Recorder{
		cfg:          cfg,
		logger:       logger.With().Str("component", "recorder").Logger(),
		telemetry:    logger.With().Str("component", "telemetry").Logger(),
		catalog:      catalog,
		interactions: interactions,
		cache:        cache,
		publisher:    publisher,
	}
}

// Record processes one learning signal.
//
// Anonymous signals (empty user ID) are a silent no-op. Invalid input is
// rejected with ErrInvalidInput so the API layer can answer descriptively.
// Everything after validation is best-effort: the profile update, cache
// invalidation, and pipeline publish each degrade independently.
func (r *Recorder) Record(ctx context.Context, sig Signal) error {
	if sig.UserID == "" {
		r.logger.Debug().
			Str("action", string(sig.Action)).
			Str("movie_id", sig.MovieID).
			Msg("anonymous signal ignored")
		return nil
	}
	if _, err := ParseAction(string(sig.Action)); err != nil {
		return err
	}
	if sig.MovieID == "" {
		return invalidInputf("signal movie id is required")
	}
	if sig.ID == "" {
		sig.ID = uuid.New().String()
	}
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now().UTC()
	}

	r.signalCount.Add(1)

	// Genre lookup is best-effort: signals for movies that left the
	// catalog still count toward history, just not toward affinity.
	var genres []string
	movie, err := r.catalog.FindByID(ctx, sig.MovieID)
	switch {
	case err == nil:
		genres = movie.Genres
	case errors.Is(err, ErrNotFound):
		r.logger.Debug().Str("movie_id", sig.MovieID).Msg("signal for unknown movie")
	default:
		r.recordFailure(err, "catalog lookup failed for signal")
	}

	if _, err := r.interactions.UpdateBehavioralProfile(ctx, sig.UserID, func(p *BehavioralProfile) error {
		applySignal(p, sig, genres, r.cfg.Learning)
		return nil
	}); err != nil {
		r.recordFailure(err, "behavioral profile update failed")
		return nil
	}

	if err := r.interactions.RecordInteraction(ctx, sig); err != nil {
		r.recordFailure(err, "interaction side documents update failed")
	}

	if n := r.cache.InvalidatePrefix(userCachePrefix(sig.UserID)); n > 0 {
		metrics.CacheInvalidations.WithLabelValues("signal").Add(float64(n))
		r.logger.Debug().
			Str("user_id", sig.UserID).
			Int("invalidated", n).
			Msg("user recommendation cache invalidated")
	}

	if r.publisher != nil {
		if err := r.publisher.PublishSignal(ctx, &sig); err != nil {
			r.recordFailure(err, "signal publish failed")
		}
	}

	return nil
}

// Counts returns the processed and failed signal totals.
func (r *Recorder) Counts() (signals, failures int64) {
	return r.signalCount.Load(), r.failureCount.Load()
}

// recordFailure logs on the telemetry channel and bumps the failure count.
func (r *Recorder) recordFailure(err error, msg string) {
	r.failureCount.Add(1)
	r.telemetry.Error().Err(err).Msg(msg)
}

// applySignal mutates a profile with one signal: appends to the bounded
// recent history, marks consumed movies seen, and nudges genre affinity.
func applySignal(p *BehavioralProfile, sig Signal, genres []string, cfg LearningConfig) {
	p.RecentSignals = append(p.RecentSignals, sig)
	if len(p.RecentSignals) > cfg.MaxRecentSignals {
		p.RecentSignals = p.RecentSignals[len(p.RecentSignals)-cfg.MaxRecentSignals:]
	}

	if sig.Action == ActionRate || sig.Action == ActionWatchTime {
		if p.SeenMovieIDs == nil {
			p.SeenMovieIDs = make(map[string]bool)
		}
		p.SeenMovieIDs[sig.MovieID] = true
	}

	delta := affinityDelta(sig.Action, sig.Value, cfg)
	if delta != 0 && len(genres) > 0 {
		if p.GenreAffinity == nil {
			p.GenreAffinity = make(map[string]float64)
		}
		for _, g := range genres {
			p.GenreAffinity[g] = adjustAffinity(p.GenreAffinity[g], delta)
		}
	}

	p.UpdatedAt = sig.CreatedAt
	p.Version++
}

// affinityDelta maps an action to a signed affinity step. Valued actions
// scale proportionally to the value; unvalued ones use fixed steps.
func affinityDelta(action Action, value *float64, cfg LearningConfig) float64 {
	switch action {
	case ActionView:
		return 0.25 * cfg.FixedStep
	case ActionClick:
		return 0.5 * cfg.FixedStep
	case ActionSave:
		return cfg.FixedStep
	case ActionSkip:
		return -cfg.FixedStep
	case ActionRemove:
		return -cfg.StrongStep
	case ActionRate:
		if value == nil {
			return 0
		}
		span := cfg.RatingScale - cfg.RatingPivot
		norm := (*value - cfg.RatingPivot) / span
		if norm > 1 {
			norm = 1
		}
		if norm < -1 {
			norm = -1
		}
		return norm * cfg.StrongStep
	case ActionWatchTime:
		if value == nil {
			return 0
		}
		switch {
		case *value >= cfg.CompletedWatchSeconds:
			return cfg.StrongStep
		case *value < cfg.AbandonedWatchSeconds:
			return -0.5 * cfg.FixedStep
		default:
			return 0.25 * cfg.FixedStep
		}
	}
	return 0
}

// adjustAffinity moves affinity toward 1 for positive deltas and toward 0
// for negative ones. The exponential form keeps values inside [0,1] and
// means repeated signals converge instead of saturating abruptly, and a
// negative signal moves down from the current value rather than resetting.
func adjustAffinity(current, delta float64) float64 {
	if delta >= 0 {
		return current + delta*(1-current)
	}
	return current + delta*current
}
