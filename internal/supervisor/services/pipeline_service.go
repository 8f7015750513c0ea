// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package services

import (
	"context"
	"fmt"
)

// SignalPipeline interface matches the signal pipeline lifecycle.
//
// This interface abstracts the pipeline's Start/Stop pattern, allowing the
// SignalPipelineService wrapper to adapt it to suture's Serve pattern
// without modifying the pipeline code.
//
// The interface is satisfied by *signals.Pipeline from internal/signals/pipeline.go:
//   - Start(ctx context.Context) error - runs the router, returns once it accepts messages
//   - Stop() error - drains the router and closes the publisher
type SignalPipeline interface {
	Start(ctx context.Context) error
	Stop() error
}

// SignalPipelineService wraps the signal pipeline as a supervised service.
//
// It adapts the Start/Stop lifecycle pattern to suture's Serve pattern:
//  1. Calls Start(ctx) to run the pipeline router
//  2. Waits for context cancellation
//  3. Calls Stop() for graceful shutdown
//
// The pipeline handles its own consumer goroutines internally via the
// Watermill router, so this wrapper simply orchestrates the lifecycle
// transitions.
type SignalPipelineService struct {
	pipeline SignalPipeline
	name     string
}

// NewSignalPipelineService creates a new signal pipeline service wrapper.
//
// Example usage:
//
//	pipeline, _ := signals.NewPipeline(cfg, analyticsStore, wsHub, logger)
//	svc := services.NewSignalPipelineService(pipeline)
//	tree.AddMessagingService(svc)
func NewSignalPipelineService(pipeline SignalPipeline) *SignalPipelineService {
	return &SignalPipelineService{
		pipeline: pipeline,
		name:     "signal-pipeline",
	}
}

// Serve implements suture.Service.
//
// This method:
//  1. Starts the pipeline (which runs the router goroutines)
//  2. Blocks until the context is canceled
//  3. Stops the pipeline (which drains in-flight messages)
//
// If Start() fails, the error is returned immediately, causing suture to
// restart the service according to its backoff policy.
func (s *SignalPipelineService) Serve(ctx context.Context) error {
	// Start the pipeline - this spawns router goroutines and returns
	// once the router is accepting messages
	if err := s.pipeline.Start(ctx); err != nil {
		return fmt.Errorf("signal pipeline start failed: %w", err)
	}

	// Wait for shutdown signal
	<-ctx.Done()

	// Stop the pipeline - this blocks until in-flight messages are
	// drained, up to the router's close timeout
	if err := s.pipeline.Stop(); err != nil {
		return fmt.Errorf("signal pipeline stop failed: %w", err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *SignalPipelineService) String() string {
	return s.name
}
