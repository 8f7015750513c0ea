// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/signals"
)

// Config holds the DuckDB analytics store settings.
type Config struct {
	// Enabled turns the analytics store on. When disabled the signal
	// pipeline runs without a persistence sink and signal statistics
	// are unavailable.
	// Default: true
	Enabled bool `koanf:"enabled"`

	// Path is the DuckDB database file. The parent directory is
	// created on open. Use ":memory:" for an ephemeral store.
	// Default: ./data/signals.duckdb
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage, e.g. "256MB" or "1GB".
	// Default: 256MB
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. Zero uses all CPUs.
	// Default: 0
	Threads int `koanf:"threads"`

	// RetentionDays bounds how long signal rows are kept. Zero keeps
	// rows forever.
	// Default: 90
	RetentionDays int `koanf:"retention_days"`
}

// DefaultConfig returns the analytics store defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Path:          "./data/signals.duckdb",
		MaxMemory:     "256MB",
		Threads:       0,
		RetentionDays: 90,
	}
}

// Validate checks the configuration. A disabled store is always valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Path == "" {
		return errors.New("analytics path required")
	}
	if c.MaxMemory == "" {
		return errors.New("analytics max memory required")
	}
	if c.Threads < 0 {
		return fmt.Errorf("analytics threads must not be negative, got %d", c.Threads)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("analytics retention days must not be negative, got %d", c.RetentionDays)
	}
	return nil
}

// Store is the DuckDB-backed learning-signal log. It satisfies the
// pipeline's analytics sink interface and serves the aggregate queries
// behind the signal statistics API.
type Store struct {
	conn   *sql.DB
	cfg    Config
	logger zerolog.Logger
}

// Open opens the DuckDB database at cfg.Path and initializes the
// schema. The caller owns the returned store and must Close it on
// shutdown.
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	if !cfg.Enabled {
		return nil, errors.New("analytics store is disabled")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analytics config: %w", err)
	}

	// Ensure the parent directory exists for file-backed databases.
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("create analytics directory %s: %w", dbDir, err)
		}
	}

	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Auto-install/auto-load are disabled so a restricted network
	// environment cannot stall the open. The signal log needs no
	// extensions.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open analytics database: %w", err)
	}

	s := &Store{
		conn:   conn,
		cfg:    cfg,
		logger: logger.With().Str("component", "analytics").Logger(),
	}
	s.configureConnectionPool()

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("ping analytics database: %w", err)
	}

	if err := s.initSchema(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("initialize analytics schema: %w", err)
	}

	s.logger.Info().
		Str("path", cfg.Path).
		Str("max_memory", cfg.MaxMemory).
		Int("retention_days", cfg.RetentionDays).
		Msg("Analytics store opened")
	return s, nil
}

// configureConnectionPool sets connection pool parameters. The log is
// write-mostly with a single logical writer, so the pool stays small.
func (s *Store) configureConnectionPool() {
	s.conn.SetMaxOpenConns(runtime.NumCPU())
	s.conn.SetMaxIdleConns(2)
	s.conn.SetConnMaxLifetime(time.Hour)
	s.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// schemaStatements returns the table and index creation SQL. Event ID
// is the primary key: under an at-least-once transport the same event
// may be delivered more than once, and the duplicate insert must
// collapse into the existing row.
func schemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS learning_signals (
			event_id TEXT PRIMARY KEY,
			signal_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			movie_id TEXT NOT NULL,
			action TEXT NOT NULL,
			value DOUBLE,
			page_type TEXT,
			recommendation_type TEXT,
			position_in_list INTEGER,
			session_id TEXT,
			recorded_at TIMESTAMP NOT NULL,
			stored_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_user_time ON learning_signals (user_id, recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_action_time ON learning_signals (action, recorded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_movie ON learning_signals (movie_id)`,
	}
}

// initSchema creates the signal log table and its indexes.
func (s *Store) initSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, stmt := range schemaStatements() {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

// InsertSignalEvent appends one delivered signal event to the log.
// Redelivered events (same event ID) are ignored.
func (s *Store) InsertSignalEvent(ctx context.Context, event *signals.SignalEvent) error {
	if event == nil {
		return errors.New("nil signal event")
	}
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	sig := event.Signal
	_, err := s.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO learning_signals
			(event_id, signal_id, user_id, movie_id, action, value,
			 page_type, recommendation_type, position_in_list, session_id, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.EventID,
		sig.ID,
		sig.UserID,
		sig.MovieID,
		string(sig.Action),
		sig.Value,
		sig.Context.PageType,
		sig.Context.RecommendationType,
		sig.Context.PositionInList,
		sig.Context.SessionID,
		sig.CreatedAt.UTC(),
	)
	metrics.RecordDBQuery("insert_signal_event", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert signal event: %w", err)
	}
	return nil
}

// Ping checks that the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if s.conn == nil {
		return errors.New("analytics connection is nil")
	}
	return s.conn.PingContext(ctx)
}

// Close checkpoints the database and closes the connection. The
// checkpoint flushes the WAL so the next open does not replay it.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := s.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to checkpoint analytics database before close")
	}

	return s.conn.Close()
}

// ensureContext attaches a 30-second timeout when the caller's context
// carries no deadline, so no query can hang the pipeline indefinitely.
func (s *Store) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}

// closeQuietly closes a resource in an error path where the close
// error is not actionable.
func closeQuietly(conn *sql.DB) {
	if conn != nil {
		_ = conn.Close()
	}
}
