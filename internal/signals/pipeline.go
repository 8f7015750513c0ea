// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package signals

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
)

// Config holds the signal pipeline settings.
type Config struct {
	// Enabled toggles the pipeline. When off, recorded signals update
	// profiles but are not fanned out to analytics or websockets.
	// Default: true
	Enabled bool `koanf:"enabled"`

	// Router holds the consumer middleware settings.
	Router RouterConfig `koanf:"router"`

	// NATS holds the external broker settings. Only honored in builds
	// with the nats tag; otherwise the in-process transport is used.
	NATS NATSConfig `koanf:"nats"`
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Router:  DefaultRouterConfig(),
		NATS:    DefaultNATSConfig(),
	}
}

// Pipeline owns the signal transport, the publisher handed to the
// recorder, and the router running the analytics and broadcast
// consumers.
type Pipeline struct {
	publisher *Publisher
	router    *Router
	logger    watermill.LoggerAdapter

	analyticsHandler *AnalyticsHandler
	broadcastHandler *BroadcastHandler
}

// PipelineStats holds combined statistics from all pipeline
// components.
type PipelineStats struct {
	Running   bool
	Handlers  int
	Analytics AnalyticsHandlerStats
	Broadcast BroadcastHandlerStats
}

// NewPipeline builds the pipeline on the in-process transport. Either
// sink or broadcaster may be nil to skip that consumer path.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipeline(cfg Config, sink AnalyticsSink, broadcaster Broadcaster, logger zerolog.Logger) (*Pipeline, error) {
	wmLogger := NewWatermillLogger(logger)
	pubsub := NewInProcessPubSub(wmLogger)
	return newPipeline(cfg, pubsub, pubsub, sink, broadcaster, wmLogger)
}

// NewPipelineWithTransport builds the pipeline over an external broker
// transport, such as the NATS JetStream publisher and subscriber.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipelineWithTransport(cfg Config, pub message.Publisher, sub message.Subscriber, sink AnalyticsSink, broadcaster Broadcaster, logger zerolog.Logger) (*Pipeline, error) {
	return newPipeline(cfg, pub, sub, sink, broadcaster, NewWatermillLogger(logger))
}

func newPipeline(cfg Config, pub message.Publisher, sub message.Subscriber, sink AnalyticsSink, broadcaster Broadcaster, wmLogger watermill.LoggerAdapter) (*Pipeline, error) {
	publisher := NewPublisher(pub, wmLogger)

	router, err := NewRouter(&cfg.Router, pub, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create signal router: %w", err)
	}

	p := &Pipeline{
		publisher: publisher,
		router:    router,
		logger:    wmLogger,
	}

	if sink != nil {
		handler, err := NewAnalyticsHandler(sink, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("create analytics handler: %w", err)
		}
		p.analyticsHandler = handler
		router.AddConsumerHandler("analytics-sink", TopicSignals, sub, handler.Handle)
	}

	if broadcaster != nil {
		handler, err := NewBroadcastHandler(broadcaster, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("create broadcast handler: %w", err)
		}
		p.broadcastHandler = handler
		router.AddConsumerHandler("signal-broadcast", TopicSignals, sub, handler.Handle)
	}

	return p, nil
}

// Start runs the router and waits for it to accept messages.
func (p *Pipeline) Start(ctx context.Context) error {
	if p.router.HandlerCount() == 0 {
		p.logger.Info("Signal pipeline has no consumers, router not started", nil)
		return nil
	}

	ready := p.router.RunAsync(ctx)
	select {
	case <-ready:
		p.logger.Info("Signal pipeline started", watermill.LogFields{
			"handlers": p.router.HandlerCount(),
		})
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context canceled while starting signal router: %w", ctx.Err())
	}
}

// Stop drains the router, then closes the publisher and transport.
func (p *Pipeline) Stop() error {
	var errs []error

	if err := p.router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close signal router: %w", err))
	}
	if err := p.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close signal publisher: %w", err))
	}

	p.logger.Info("Signal pipeline stopped", nil)

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Publisher returns the publisher wired into the recorder.
func (p *Pipeline) Publisher() *Publisher {
	return p.publisher
}

// IsRunning reports whether the router is processing messages.
func (p *Pipeline) IsRunning() bool {
	return p.router.IsRunning()
}

// Stats returns combined counters from all pipeline components.
func (p *Pipeline) Stats() PipelineStats {
	stats := PipelineStats{
		Running:  p.router.IsRunning(),
		Handlers: p.router.HandlerCount(),
	}
	if p.analyticsHandler != nil {
		stats.Analytics = p.analyticsHandler.Stats()
	}
	if p.broadcastHandler != nil {
		stats.Broadcast = p.broadcastHandler.Stats()
	}
	return stats
}
