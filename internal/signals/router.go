// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package signals

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/reelrank/reelrank/internal/metrics"
)

// RouterConfig holds configuration for the signal router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for in-flight handlers when
	// closing.
	// Default: 30s
	CloseTimeout time.Duration `koanf:"close_timeout"`

	// RetryMaxRetries is how many times a failed handler is retried
	// before the message is poisoned.
	// Default: 5
	RetryMaxRetries int `koanf:"retry_max_retries"`

	// RetryInitialInterval is the first retry backoff delay.
	// Default: 1s
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`

	// RetryMaxInterval caps the retry backoff delay.
	// Default: 1m
	RetryMaxInterval time.Duration `koanf:"retry_max_interval"`

	// RetryMultiplier is the backoff growth factor.
	// Default: 2.0
	RetryMultiplier float64 `koanf:"retry_multiplier"`

	// ThrottlePerSecond rate limits handler throughput. Zero disables
	// throttling.
	// Default: 0
	ThrottlePerSecond int64 `koanf:"throttle_per_second"`

	// PoisonQueueTopic is where messages go after retries are
	// exhausted. Empty disables the poison queue.
	// Default: dlq.signals
	PoisonQueueTopic string `koanf:"poison_queue_topic"`
}

// DefaultRouterConfig returns production defaults for the router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      5,
		RetryInitialInterval: time.Second,
		RetryMaxInterval:     time.Minute,
		RetryMultiplier:      2.0,
		ThrottlePerSecond:    0,
		PoisonQueueTopic:     TopicPoison,
	}
}

// poisonCounter counts messages the poison queue middleware hands to
// the dead letter publisher.
type poisonCounter struct {
	message.Publisher
}

func (p poisonCounter) Publish(topic string, msgs ...*message.Message) error {
	if err := p.Publisher.Publish(topic, msgs...); err != nil {
		return err
	}
	metrics.SignalsPoisoned.Add(float64(len(msgs)))
	return nil
}

// Router wraps the watermill router with the pipeline middleware
// stack: panic recovery, exponential backoff retry, optional
// throttling, and poison queue routing for messages that keep
// failing.
type Router struct {
	router   *message.Router
	config   RouterConfig
	logger   watermill.LoggerAdapter
	running  atomic.Bool
	handlers map[string]*message.Handler
}

// NewRouter creates a router with the pipeline middleware installed.
// poisonPublisher may be nil to disable the poison queue.
func NewRouter(cfg *RouterConfig, poisonPublisher message.Publisher, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}
	if cfg == nil {
		defaultCfg := DefaultRouterConfig()
		cfg = &defaultCfg
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{
		router:   wmRouter,
		config:   *cfg,
		logger:   logger,
		handlers: make(map[string]*message.Handler),
	}

	// First added middleware is outermost. The poison queue must wrap
	// the retry chain so it only sees errors the retries gave up on,
	// and the recoverer sits innermost so panics become retryable
	// errors.
	if poisonPublisher != nil && cfg.PoisonQueueTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poisonCounter{poisonPublisher}, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poisonQueue)
	}

	retryMiddleware := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retryMiddleware.Middleware)

	if cfg.ThrottlePerSecond > 0 {
		throttle := middleware.NewThrottle(cfg.ThrottlePerSecond, time.Second)
		wmRouter.AddMiddleware(throttle.Middleware)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)

	return r, nil
}

// AddConsumerHandler registers a handler that consumes messages
// without producing output.
func (r *Router) AddConsumerHandler(
	name string,
	subscribeTopic string,
	subscriber message.Subscriber,
	handler message.NoPublishHandlerFunc,
) *message.Handler {
	h := r.router.AddConsumerHandler(
		name,
		subscribeTopic,
		subscriber,
		handler,
	)
	r.handlers[name] = h
	return h
}

// Run starts the router and blocks until context cancellation or
// Close.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// RunAsync starts the router in a goroutine and returns a channel that
// closes once it is accepting messages.
func (r *Router) RunAsync(ctx context.Context) <-chan struct{} {
	ready := make(chan struct{})

	go func() {
		go func() {
			r.running.Store(true)
			defer r.running.Store(false)
			if err := r.router.Run(ctx); err != nil {
				r.logger.Error("Signal router error", err, nil)
			}
		}()

		<-r.router.Running()
		close(ready)
	}()

	return ready
}

// Running returns a channel that closes when the router is running.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close gracefully stops the router, waiting up to CloseTimeout for
// in-flight messages.
func (r *Router) Close() error {
	return r.router.Close()
}

// IsRunning reports whether the router is processing messages.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// HandlerCount returns the number of registered handlers.
func (r *Router) HandlerCount() int {
	return len(r.handlers)
}
