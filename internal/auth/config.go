// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package auth

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// minSecretLength is the shortest HMAC secret accepted. Anything
// shorter is brute-forceable offline from a single captured token.
const minSecretLength = 32

// Config holds the bearer authentication settings.
type Config struct {
	// Enabled turns on bearer authentication and the admin token
	// exchange. When false every route is open and requests carry no
	// identity.
	// Default: false
	Enabled bool `koanf:"enabled"`

	// Secret signs and verifies bearer tokens (HS256). Required when
	// authentication is enabled, minimum 32 characters.
	// Default: "" (empty)
	Secret string `koanf:"secret"`

	// TokenTTL bounds the lifetime of issued tokens.
	// Default: 24h
	TokenTTL time.Duration `koanf:"token_ttl"`

	// AdminUsername names the account accepted by the token exchange.
	// Default: admin
	AdminUsername string `koanf:"admin_username"`

	// AdminPasswordHash is the bcrypt hash the token exchange verifies
	// against. Generate one with auth.HashPassword. Required when
	// authentication is enabled.
	// Default: "" (empty)
	AdminPasswordHash string `koanf:"admin_password_hash"`
}

// DefaultConfig returns the authentication defaults. Authentication
// ships disabled so a fresh install works before any secret exists.
func DefaultConfig() Config {
	return Config{
		Enabled:       false,
		TokenTTL:      24 * time.Hour,
		AdminUsername: "admin",
	}
}

// Validate checks the configuration. A disabled config is always
// valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("auth secret must be at least %d characters", minSecretLength)
	}
	if c.TokenTTL <= 0 {
		return errors.New("auth token ttl must be positive")
	}
	if c.AdminUsername == "" {
		return errors.New("auth admin username required")
	}
	if c.AdminPasswordHash == "" {
		return errors.New("auth admin password hash required")
	}
	if _, err := bcrypt.Cost([]byte(c.AdminPasswordHash)); err != nil {
		return fmt.Errorf("auth admin password hash is not a bcrypt hash: %w", err)
	}
	return nil
}
