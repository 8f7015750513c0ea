// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package config

import (
	"fmt"
)

// Validate checks every configuration section. The first failure is
// returned wrapped with its section name so the operator can find the
// offending key.
func (c *Config) Validate() error {
	sections := []struct {
		name     string
		validate func() error
	}{
		{"server", c.Server.Validate},
		{"logging", c.Logging.Validate},
		{"auth", c.Auth.Validate},
		{"store", c.Store.Validate},
		{"analytics", c.Analytics.Validate},
		{"embedding", c.validateEmbedding},
		{"cache", c.validateCache},
		{"engine", c.Engine.Validate},
		{"signals", c.validateSignals},
	}

	for _, s := range sections {
		if err := s.validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// validateEmbedding runs the embedding package's own checks and then
// verifies the provider URL is actually reachable as a base URL. The
// package check only requires the URL to be non-empty.
func (c *Config) validateEmbedding() error {
	if err := c.Embedding.Validate(); err != nil {
		return err
	}
	if !c.Embedding.Enabled {
		return nil
	}
	if err := validateHTTPURL(c.Embedding.URL, "url"); err != nil {
		return err
	}
	return nil
}

// validateCache checks the cache section. The cache package itself
// substitutes defaults for zero values, so this only rejects values
// that are outright wrong.
func (c *Config) validateCache() error {
	if c.Cache.TTL < 0 {
		return fmt.Errorf("ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Cache.CleanupInterval < 0 {
		return fmt.Errorf("cleanup_interval must not be negative, got %s", c.Cache.CleanupInterval)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("max_entries must not be negative, got %d", c.Cache.MaxEntries)
	}
	return nil
}

// NATS limit constants. The embedded server refuses to start with less
// memory or store than this, so catch it at config time.
const (
	natsMinMemory    = 64 * 1024 * 1024  // 64MB
	natsMinStore     = 100 * 1024 * 1024 // 100MB
	natsMaxRetention = 365
	natsMinRetention = 1
)

// validateSignals checks the signal pipeline router settings and, when
// the NATS transport is enabled, the broker settings.
func (c *Config) validateSignals() error {
	r := c.Signals.Router
	if r.CloseTimeout <= 0 {
		return fmt.Errorf("router close_timeout must be positive, got %s", r.CloseTimeout)
	}
	if r.RetryMaxRetries < 0 {
		return fmt.Errorf("router retry_max_retries must not be negative, got %d", r.RetryMaxRetries)
	}
	if r.RetryInitialInterval <= 0 {
		return fmt.Errorf("router retry_initial_interval must be positive, got %s", r.RetryInitialInterval)
	}
	if r.RetryMaxInterval < r.RetryInitialInterval {
		return fmt.Errorf("router retry_max_interval must be >= retry_initial_interval, got %s < %s",
			r.RetryMaxInterval, r.RetryInitialInterval)
	}
	if r.RetryMultiplier < 1 {
		return fmt.Errorf("router retry_multiplier must be >= 1, got %v", r.RetryMultiplier)
	}
	if r.ThrottlePerSecond < 0 {
		return fmt.Errorf("router throttle_per_second must not be negative, got %d", r.ThrottlePerSecond)
	}

	n := c.Signals.NATS
	if !n.Enabled {
		return nil
	}
	if err := validateNATSURL(n.URL); err != nil {
		return fmt.Errorf("nats url is invalid: %w", err)
	}
	if n.EmbeddedServer && n.StoreDir == "" {
		return fmt.Errorf("nats store_dir required when running the embedded server")
	}
	if n.MaxMemory < natsMinMemory {
		return fmt.Errorf("nats max_memory must be at least 64MB (%d bytes)", natsMinMemory)
	}
	if n.MaxStore < natsMinStore {
		return fmt.Errorf("nats max_store must be at least 100MB (%d bytes)", natsMinStore)
	}
	if n.RetentionDays < natsMinRetention || n.RetentionDays > natsMaxRetention {
		return fmt.Errorf("nats retention_days must be between %d and %d, got %d",
			natsMinRetention, natsMaxRetention, n.RetentionDays)
	}
	if n.AckWaitTimeout <= 0 {
		return fmt.Errorf("nats ack_wait_timeout must be positive, got %s", n.AckWaitTimeout)
	}
	if n.MaxDeliver < 1 {
		return fmt.Errorf("nats max_deliver must be >= 1, got %d", n.MaxDeliver)
	}
	return nil
}
