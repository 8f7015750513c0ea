// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package signals

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
)

// NewInProcessPubSub creates the in-process transport used when no
// external broker is configured. The returned value is both publisher
// and subscriber; messages published before any subscriber attaches
// are dropped, which matches the fire-and-forget contract of signal
// telemetry.
func NewInProcessPubSub(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)
}

// Publisher wraps the pipeline transport behind the recorder's
// publish contract. It envelopes signals, serializes them, and tags
// messages with routing metadata.
type Publisher struct {
	publisher message.Publisher
	logger    watermill.LoggerAdapter
	mu        sync.RWMutex
	closed    bool
}

// NewPublisher creates a signal publisher on top of any watermill
// transport.
func NewPublisher(pub message.Publisher, logger watermill.LoggerAdapter) *Publisher {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}
	return &Publisher{
		publisher: pub,
		logger:    logger,
	}
}

// PublishSignal envelopes and publishes one recorded signal.
func (p *Publisher) PublishSignal(_ context.Context, sig *recommend.Signal) error {
	if sig == nil {
		return fmt.Errorf("nil signal")
	}

	event := NewSignalEvent(*sig)
	data, err := SerializeEvent(event)
	if err != nil {
		return fmt.Errorf("serialize signal event: %w", err)
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("action", string(sig.Action))
	msg.Metadata.Set("user_id", sig.UserID)

	if err := p.Publish(event.Topic(), msg); err != nil {
		return err
	}
	metrics.SignalsRecorded.WithLabelValues(string(sig.Action)).Inc()
	return nil
}

// Publish sends a raw message to the given topic.
func (p *Publisher) Publish(topic string, msg *message.Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	return p.publisher.Publish(topic, msg)
}

// Close shuts down the publisher. Further publishes fail fast.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.publisher.Close()
}

// WatermillPublisher returns the underlying transport publisher. This
// is useful for watermill components that require the native
// message.Publisher interface, such as the poison queue middleware.
func (p *Publisher) WatermillPublisher() message.Publisher {
	return p.publisher
}
