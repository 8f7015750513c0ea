// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// SignalPruner defines the interface for retention enforcement on the
// analytics store. This allows the service to work with the store
// without circular imports.
//
// Satisfied by *analytics.Store from internal/analytics/stats.go:
//   - PruneExpired(ctx context.Context) (int64, error)
type SignalPruner interface {
	// PruneExpired deletes signals older than the configured retention
	// window and reports how many rows were removed.
	PruneExpired(ctx context.Context) (int64, error)
}

// ValueLogGC defines the interface for BadgerDB value log garbage
// collection.
//
// Satisfied by *badger.DB from github.com/dgraph-io/badger/v4.
type ValueLogGC interface {
	RunValueLogGC(discardRatio float64) error
}

// MaintenanceConfig holds configuration for the maintenance service.
type MaintenanceConfig struct {
	// RunOnStartup triggers a maintenance cycle when the service starts.
	RunOnStartup bool

	// Interval is how often maintenance runs.
	Interval time.Duration

	// GCDiscardRatio is the BadgerDB value log rewrite threshold. A file
	// is rewritten when at least this fraction of it is discardable.
	GCDiscardRatio float64
}

// MaintenanceService runs periodic housekeeping for the stores under
// Suture supervision. Each cycle prunes expired learning signals from
// the analytics store and reclaims BadgerDB value log space.
type MaintenanceService struct {
	pruner SignalPruner
	db     ValueLogGC
	config MaintenanceConfig
	logger zerolog.Logger
	name   string
}

// NewMaintenanceService creates a new maintenance service. Either pruner
// or db may be nil to skip that task; pass a nil db for in-memory
// deployments where value log GC is not supported.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(pruner SignalPruner, db ValueLogGC, cfg MaintenanceConfig, logger zerolog.Logger) *MaintenanceService {
	return &MaintenanceService{
		pruner: pruner,
		db:     db,
		config: cfg,
		logger: logger.With().Str("service", "maintenance").Logger(),
		name:   "store-maintenance",
	}
}

// Serve implements the suture.Service interface.
// It manages the periodic maintenance loop for the stores.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	if s.config.Interval <= 0 {
		s.config.Interval = time.Hour
	}
	if s.config.GCDiscardRatio <= 0 || s.config.GCDiscardRatio >= 1 {
		s.config.GCDiscardRatio = 0.5
	}

	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Float64("gc_discard_ratio", s.config.GCDiscardRatio).
		Msg("maintenance service starting")

	// Run on startup if configured
	if s.config.RunOnStartup {
		if err := s.run(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("startup maintenance failed (will retry on schedule)")
		}
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("maintenance service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled maintenance triggered")
			if err := s.run(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled maintenance failed")
			}
		}
	}
}

// run performs one maintenance cycle with proper context handling.
func (s *MaintenanceService) run(ctx context.Context) error {
	// Use a separate context with timeout for the cycle
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()

	if s.pruner != nil {
		// The store logs its own summary with the deleted row count
		if _, err := s.pruner.PruneExpired(runCtx); err != nil {
			return fmt.Errorf("prune expired signals: %w", err)
		}
	}

	if s.db != nil {
		if err := s.runValueLogGC(); err != nil {
			return err
		}
	}

	s.logger.Debug().
		Dur("duration", time.Since(start)).
		Msg("maintenance cycle complete")

	return nil
}

// runValueLogGC rewrites value log files until no more cleanup is
// possible. BadgerDB rewrites at most one file per call.
func (s *MaintenanceService) runValueLogGC() error {
	for {
		err := s.db.RunValueLogGC(s.config.GCDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log GC: %w", err)
		}
	}
}

// String returns the service name for logging.
func (s *MaintenanceService) String() string {
	return s.name
}
