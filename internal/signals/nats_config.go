// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package signals

import (
	"errors"
	"time"
)

// ErrNATSNotEnabled is returned when NATS transport is requested
// without the nats build tag.
var ErrNATSNotEnabled = errors.New("NATS transport not available (build with -tags nats)")

// StreamName is the JetStream stream holding signal events.
const StreamName = "SIGNALS"

// NATSConfig holds the external broker settings. The fields parse in
// every build; only builds with the nats tag act on them.
type NATSConfig struct {
	// Enabled switches the pipeline from the in-process transport to
	// NATS JetStream.
	// Default: false
	Enabled bool `koanf:"enabled"`

	// EmbeddedServer runs a NATS server inside the process instead of
	// connecting to URL.
	// Default: true
	EmbeddedServer bool `koanf:"embedded_server"`

	// URL is the external NATS server address. Ignored when the
	// embedded server is enabled.
	// Default: nats://localhost:4222
	URL string `koanf:"url"`

	// StoreDir is the JetStream storage directory for the embedded
	// server.
	// Default: ./data/nats
	StoreDir string `koanf:"store_dir"`

	// MaxMemory bounds JetStream memory usage in bytes.
	// Default: 256MB
	MaxMemory int64 `koanf:"max_memory"`

	// MaxStore bounds JetStream disk usage in bytes.
	// Default: 2GB
	MaxStore int64 `koanf:"max_store"`

	// RetentionDays is how long signal events stay in the stream.
	// Default: 30
	RetentionDays int `koanf:"retention_days"`

	// DurableName prefixes durable consumer names.
	// Default: reelrank
	DurableName string `koanf:"durable_name"`

	// QueueGroup prefixes queue group names for load balancing across
	// instances.
	// Default: reelrank
	QueueGroup string `koanf:"queue_group"`

	// AckWaitTimeout is how long JetStream waits for an ack before
	// redelivering.
	// Default: 30s
	AckWaitTimeout time.Duration `koanf:"ack_wait_timeout"`

	// MaxDeliver caps redelivery attempts per message.
	// Default: 5
	MaxDeliver int `koanf:"max_deliver"`

	// MaxAckPending caps unacknowledged in-flight messages.
	// Default: 500
	MaxAckPending int `koanf:"max_ack_pending"`

	// MaxReconnects caps client reconnect attempts. Negative means
	// unlimited.
	// Default: -1
	MaxReconnects int `koanf:"max_reconnects"`

	// ReconnectWait is the delay between reconnect attempts.
	// Default: 2s
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// DefaultNATSConfig returns the broker defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		Enabled:        false,
		EmbeddedServer: true,
		URL:            "nats://localhost:4222",
		StoreDir:       "./data/nats",
		MaxMemory:      256 << 20,
		MaxStore:       2 << 30,
		RetentionDays:  30,
		DurableName:    "reelrank",
		QueueGroup:     "reelrank",
		AckWaitTimeout: 30 * time.Second,
		MaxDeliver:     5,
		MaxAckPending:  500,
		MaxReconnects:  -1,
		ReconnectWait:  2 * time.Second,
	}
}
