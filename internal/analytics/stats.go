// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/reelrank/reelrank/internal/metrics"
)

// StoredSignal is one persisted learning-signal row.
type StoredSignal struct {
	EventID            string    `json:"eventId"`
	SignalID           string    `json:"signalId"`
	UserID             string    `json:"userId"`
	MovieID            string    `json:"movieId"`
	Action             string    `json:"action"`
	Value              *float64  `json:"value,omitempty"`
	PageType           string    `json:"pageType,omitempty"`
	RecommendationType string    `json:"recommendationType,omitempty"`
	PositionInList     int       `json:"positionInList,omitempty"`
	SessionID          string    `json:"sessionId,omitempty"`
	RecordedAt         time.Time `json:"recordedAt"`
}

// MovieActivity aggregates signal volume for one movie.
type MovieActivity struct {
	MovieID     string `json:"movieId"`
	Signals     int64  `json:"signals"`
	UniqueUsers int64  `json:"uniqueUsers"`
}

// Stats is the aggregate view served by the signal statistics API.
// TotalSignals counts every row ever stored; the remaining fields are
// restricted to the requested window.
type Stats struct {
	TotalSignals int64            `json:"totalSignals"`
	UniqueUsers  int64            `json:"uniqueUsers"`
	ActionCounts map[string]int64 `json:"actionCounts"`
	TopMovies    []MovieActivity  `json:"topMovies"`
	Since        *time.Time       `json:"since,omitempty"`
	GeneratedAt  time.Time        `json:"generatedAt"`
}

// TotalSignals returns the number of rows in the signal log.
func (s *Store) TotalSignals(ctx context.Context) (int64, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	var total int64
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM learning_signals`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count signals: %w", err)
	}
	return total, nil
}

// ActionCounts returns the number of signals per action, optionally
// restricted to signals recorded at or after since. A zero since
// counts everything.
func (s *Store) ActionCounts(ctx context.Context, since time.Time) (map[string]int64, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	query := `SELECT action, COUNT(*) FROM learning_signals`
	args := []any{}
	if !since.IsZero() {
		query += ` WHERE recorded_at >= ?`
		args = append(args, since.UTC())
	}
	query += ` GROUP BY action`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query action counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var action string
		var count int64
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("scan action count: %w", err)
		}
		counts[action] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action counts: %w", err)
	}
	return counts, nil
}

// UniqueUsers returns how many distinct users recorded signals,
// optionally restricted to signals at or after since.
func (s *Store) UniqueUsers(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	query := `SELECT COUNT(DISTINCT user_id) FROM learning_signals`
	args := []any{}
	if !since.IsZero() {
		query += ` WHERE recorded_at >= ?`
		args = append(args, since.UTC())
	}

	var users int64
	if err := s.conn.QueryRowContext(ctx, query, args...).Scan(&users); err != nil {
		return 0, fmt.Errorf("count unique users: %w", err)
	}
	return users, nil
}

// RecentByUser returns the user's most recent signals, newest first.
func (s *Store) RecentByUser(ctx context.Context, userID string, limit int) ([]StoredSignal, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT event_id, signal_id, user_id, movie_id, action, value,
		       page_type, recommendation_type, position_in_list, session_id, recorded_at
		FROM learning_signals
		WHERE user_id = ?
		ORDER BY recorded_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent signals: %w", err)
	}
	defer rows.Close()

	// Empty slice rather than nil for consistent JSON serialization.
	out := []StoredSignal{}
	for rows.Next() {
		var row StoredSignal
		var value sql.NullFloat64
		if err := rows.Scan(
			&row.EventID, &row.SignalID, &row.UserID, &row.MovieID, &row.Action, &value,
			&row.PageType, &row.RecommendationType, &row.PositionInList, &row.SessionID, &row.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recent signal: %w", err)
		}
		if value.Valid {
			v := value.Float64
			row.Value = &v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent signals: %w", err)
	}
	return out, nil
}

// TopMovies returns the movies with the most signal activity in the
// window, busiest first. Ties break on movie ID for stable output.
func (s *Store) TopMovies(ctx context.Context, since time.Time, limit int) ([]MovieActivity, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT movie_id, COUNT(*) AS signals, COUNT(DISTINCT user_id) AS unique_users
		FROM learning_signals`
	args := []any{}
	if !since.IsZero() {
		query += `
		WHERE recorded_at >= ?`
		args = append(args, since.UTC())
	}
	query += `
		GROUP BY movie_id
		ORDER BY signals DESC, movie_id ASC
		LIMIT ?`
	args = append(args, limit)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query top movies: %w", err)
	}
	defer rows.Close()

	out := []MovieActivity{}
	for rows.Next() {
		var m MovieActivity
		if err := rows.Scan(&m.MovieID, &m.Signals, &m.UniqueUsers); err != nil {
			return nil, fmt.Errorf("scan top movie: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top movies: %w", err)
	}
	return out, nil
}

// Snapshot assembles the full statistics view in one call. A zero
// since leaves the windowed aggregates unrestricted.
func (s *Store) Snapshot(ctx context.Context, since time.Time, topN int) (stats *Stats, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("stats_snapshot", time.Since(start), err) }()

	total, err := s.TotalSignals(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.UniqueUsers(ctx, since)
	if err != nil {
		return nil, err
	}
	counts, err := s.ActionCounts(ctx, since)
	if err != nil {
		return nil, err
	}
	movies, err := s.TopMovies(ctx, since, topN)
	if err != nil {
		return nil, err
	}

	stats = &Stats{
		TotalSignals: total,
		UniqueUsers:  users,
		ActionCounts: counts,
		TopMovies:    movies,
		GeneratedAt:  time.Now().UTC(),
	}
	if !since.IsZero() {
		t := since.UTC()
		stats.Since = &t
	}
	return stats, nil
}

// PruneOlderThan deletes signals recorded before cutoff and returns
// how many rows were removed.
func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM learning_signals WHERE recorded_at < ?`, cutoff.UTC())
	metrics.RecordDBQuery("prune_signals", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("prune signals: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune signals rows affected: %w", err)
	}
	if deleted > 0 {
		s.logger.Info().
			Int64("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("Pruned expired signals")
	}
	return deleted, nil
}

// PruneExpired applies the configured retention window. A zero
// retention keeps everything.
func (s *Store) PruneExpired(ctx context.Context) (int64, error) {
	if s.cfg.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	return s.PruneOlderThan(ctx, cutoff)
}
