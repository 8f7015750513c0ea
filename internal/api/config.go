// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds the HTTP server settings.
type Config struct {
	// Host is the listen address.
	// Default: 0.0.0.0
	Host string `koanf:"host"`

	// Port is the listen port.
	// Default: 7335
	Port int `koanf:"port"`

	// ReadTimeout bounds reading the request including the body.
	// Default: 15s
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds writing the response.
	// Default: 30s
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// IdleTimeout bounds keep-alive connections between requests.
	// Default: 60s
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// RequestTimeout is the per-request deadline installed by the
	// timeout middleware on API routes. WebSocket connections are
	// exempt. Default: 30s
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// ShutdownTimeout is how long graceful shutdown waits for active
	// requests to drain. Default: 15s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed CORS origins. Empty means no
	// cross-origin access; "*" allows any origin.
	// Default: [] (empty)
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests is the per-IP request budget per window on the
	// general API group. Auth and import routes carry stricter
	// built-in limits. Default: 300
	RateLimitRequests int `koanf:"rate_limit_requests"`

	// RateLimitWindow is the rate limit window.
	// Default: 1m
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled turns off all rate limiting, for tests and
	// trusted-network deployments. Default: false
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`

	// SwaggerEnabled serves the interactive API documentation under
	// /swagger/. Default: true
	SwaggerEnabled bool `koanf:"swagger_enabled"`
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              7335,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		RequestTimeout:    30 * time.Second,
		ShutdownTimeout:   15 * time.Second,
		CORSOrigins:       []string{},
		RateLimitRequests: 300,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: false,
		SwaggerEnabled:    true,
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive, got %s", c.ReadTimeout)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive, got %s", c.WriteTimeout)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle_timeout must be positive, got %s", c.IdleTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if !c.RateLimitDisabled {
		if c.RateLimitRequests <= 0 {
			return fmt.Errorf("rate_limit_requests must be positive, got %d", c.RateLimitRequests)
		}
		if c.RateLimitWindow <= 0 {
			return fmt.Errorf("rate_limit_window must be positive, got %s", c.RateLimitWindow)
		}
	}
	return nil
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
