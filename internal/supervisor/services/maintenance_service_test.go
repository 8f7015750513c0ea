// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// mockPruner is a mock implementation for testing.
type mockPruner struct {
	mu         sync.Mutex
	pruneCalls int
	pruneErr   error
	pruneDelay time.Duration
	deleted    int64
}

func (m *mockPruner) PruneExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	m.pruneCalls++
	m.mu.Unlock()

	if m.pruneDelay > 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(m.pruneDelay):
		}
	}

	return m.deleted, m.pruneErr
}

func (m *mockPruner) getPruneCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pruneCalls
}

// mockValueLogGC returns nil for the first rewrites calls, then
// badger.ErrNoRewrite, matching the real GC loop termination.
type mockValueLogGC struct {
	mu       sync.Mutex
	gcCalls  int
	rewrites int
	gcErr    error
}

func (m *mockValueLogGC) RunValueLogGC(discardRatio float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gcCalls++
	if m.gcErr != nil {
		return m.gcErr
	}
	if m.gcCalls <= m.rewrites {
		return nil
	}
	return badger.ErrNoRewrite
}

func (m *mockValueLogGC) getGCCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gcCalls
}

func TestMaintenanceService_Interface(t *testing.T) {
	// Verify MaintenanceService implements suture.Service
	var _ suture.Service = (*MaintenanceService)(nil)
}

func TestMaintenanceService_String(t *testing.T) {
	logger := zerolog.Nop()
	pruner := &mockPruner{}
	cfg := MaintenanceConfig{
		Interval: time.Hour,
	}

	service := NewMaintenanceService(pruner, &mockValueLogGC{}, cfg, logger)

	if got := service.String(); got != "store-maintenance" {
		t.Errorf("String() = %q, want %q", got, "store-maintenance")
	}
}

func TestMaintenanceService_RunOnStartup(t *testing.T) {
	logger := zerolog.Nop()
	pruner := &mockPruner{}
	gc := &mockValueLogGC{}
	cfg := MaintenanceConfig{
		RunOnStartup: true,
		Interval:     time.Hour, // Long interval to avoid scheduled runs
	}

	service := NewMaintenanceService(pruner, gc, cfg, logger)

	// Run service briefly
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_ = service.Serve(ctx)

	// Should have pruned once on startup
	if got := pruner.getPruneCalls(); got != 1 {
		t.Errorf("PruneExpired() called %d times, want 1", got)
	}
	// GC runs at least once (terminated by ErrNoRewrite)
	if got := gc.getGCCalls(); got < 1 {
		t.Errorf("RunValueLogGC() called %d times, want >= 1", got)
	}
}

func TestMaintenanceService_NoRunOnStartup(t *testing.T) {
	logger := zerolog.Nop()
	pruner := &mockPruner{}
	cfg := MaintenanceConfig{
		RunOnStartup: false,
		Interval:     time.Hour, // Long interval to avoid scheduled runs
	}

	service := NewMaintenanceService(pruner, &mockValueLogGC{}, cfg, logger)

	// Run service briefly
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_ = service.Serve(ctx)

	// Should not have pruned
	if got := pruner.getPruneCalls(); got != 0 {
		t.Errorf("PruneExpired() called %d times, want 0", got)
	}
}

func TestMaintenanceService_ScheduledRuns(t *testing.T) {
	logger := zerolog.Nop()
	pruner := &mockPruner{}
	cfg := MaintenanceConfig{
		RunOnStartup: false,
		Interval:     50 * time.Millisecond, // Short interval for testing
	}

	service := NewMaintenanceService(pruner, nil, cfg, logger)

	// Run service long enough for 2 scheduled cycles
	ctx, cancel := context.WithTimeout(context.Background(), 130*time.Millisecond)
	defer cancel()

	_ = service.Serve(ctx)

	// Should have pruned at least twice (at 50ms and 100ms)
	if got := pruner.getPruneCalls(); got < 2 {
		t.Errorf("PruneExpired() called %d times, want >= 2", got)
	}
}

func TestMaintenanceService_GCLoopUntilNoRewrite(t *testing.T) {
	logger := zerolog.Nop()
	gc := &mockValueLogGC{
		rewrites: 2, // Two files rewritten, then nothing left
	}
	cfg := MaintenanceConfig{
		RunOnStartup: true,
		Interval:     time.Hour,
	}

	service := NewMaintenanceService(nil, gc, cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_ = service.Serve(ctx)

	// Two rewrites plus the terminating ErrNoRewrite call
	if got := gc.getGCCalls(); got != 3 {
		t.Errorf("RunValueLogGC() called %d times, want 3", got)
	}
}

func TestMaintenanceService_GracefulShutdown(t *testing.T) {
	logger := zerolog.Nop()
	pruner := &mockPruner{
		pruneDelay: 50 * time.Millisecond,
	}
	cfg := MaintenanceConfig{
		RunOnStartup: true,
		Interval:     time.Hour,
	}

	service := NewMaintenanceService(pruner, nil, cfg, logger)

	// Create a context that will be canceled
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- service.Serve(ctx)
	}()

	// Wait for the startup cycle to begin, then cancel
	time.Sleep(20 * time.Millisecond)
	cancel()

	// Should complete gracefully
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not complete in time")
	}
}

func TestMaintenanceService_PruneError(t *testing.T) {
	logger := zerolog.Nop()
	pruner := &mockPruner{
		pruneErr: errors.New("duckdb locked"),
	}
	cfg := MaintenanceConfig{
		RunOnStartup: true,
		Interval:     time.Hour,
	}

	service := NewMaintenanceService(pruner, nil, cfg, logger)

	// Run service briefly - should continue despite prune error
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_ = service.Serve(ctx)

	// Should have attempted pruning despite error
	if got := pruner.getPruneCalls(); got != 1 {
		t.Errorf("PruneExpired() called %d times, want 1", got)
	}
}

func TestMaintenanceService_NilTargets(t *testing.T) {
	logger := zerolog.Nop()
	cfg := MaintenanceConfig{
		RunOnStartup: true,
		Interval:     50 * time.Millisecond,
	}

	// Both pruner and db nil - cycles are no-ops
	service := NewMaintenanceService(nil, nil, cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	err := service.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() returned %v, want context.DeadlineExceeded", err)
	}
}
