// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

//go:build !nats

package signals

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EmbeddedServer is a stub when NATS dependencies are not compiled in.
// Build with -tags=nats to enable the embedded broker.
type EmbeddedServer struct{}

// NewEmbeddedServer returns ErrNATSNotEnabled in builds without the
// nats tag.
func NewEmbeddedServer(_ NATSConfig) (*EmbeddedServer, error) {
	return nil, ErrNATSNotEnabled
}

// ClientURL returns an empty string for the stub.
func (s *EmbeddedServer) ClientURL() string {
	return ""
}

// Shutdown is a no-op stub.
func (s *EmbeddedServer) Shutdown(_ context.Context) error {
	return nil
}

// IsRunning always reports false for the stub.
func (s *EmbeddedServer) IsRunning() bool {
	return false
}

// NewNATSPublisher returns ErrNATSNotEnabled in builds without the
// nats tag.
func NewNATSPublisher(_ NATSConfig, _ string, _ watermill.LoggerAdapter) (message.Publisher, error) {
	return nil, ErrNATSNotEnabled
}

// NewNATSSubscriber returns ErrNATSNotEnabled in builds without the
// nats tag.
func NewNATSSubscriber(_ NATSConfig, _ string, _ watermill.LoggerAdapter) (message.Subscriber, error) {
	return nil, ErrNATSNotEnabled
}
