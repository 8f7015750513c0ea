// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost balances hash strength against login latency.
const bcryptCost = 12

// Roles carried in token claims. RoleAdmin unlocks the tuning surface.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	// ErrDisabled reports that authentication is turned off in config.
	ErrDisabled = errors.New("authentication is disabled")

	// ErrInvalidCredentials reports a failed admin credential exchange.
	// The message never says which of the two credentials was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Claims are the token claims Reelrank issues and accepts.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and validates HS256 bearer tokens and verifies the
// admin credential exchange.
type Manager struct {
	enabled   bool
	secret    []byte
	ttl       time.Duration
	adminUser string
	adminHash []byte
	logger    zerolog.Logger
}

// NewManager builds a Manager from cfg. A disabled config yields a
// manager whose middleware passes every request through untouched and
// whose token operations fail with ErrDisabled.
func NewManager(cfg Config, logger zerolog.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auth config: %w", err)
	}

	return &Manager{
		enabled:   cfg.Enabled,
		secret:    []byte(cfg.Secret),
		ttl:       cfg.TokenTTL,
		adminUser: cfg.AdminUsername,
		adminHash: []byte(cfg.AdminPasswordHash),
		logger:    logger.With().Str("component", "auth").Logger(),
	}, nil
}

// Enabled reports whether bearer authentication is enforced.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// TokenTTL returns the lifetime of issued tokens.
func (m *Manager) TokenTTL() time.Duration {
	return m.ttl
}

// GenerateToken signs a token for userID carrying role.
func (m *Manager) GenerateToken(userID, role string) (string, error) {
	if !m.enabled {
		return "", ErrDisabled
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates tokenString and returns its claims. The signing
// method is pinned to HMAC so a token signed under a public-key scheme
// cannot be replayed against the shared secret.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	if !m.enabled {
		return nil, ErrDisabled
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	// Tokens minted elsewhere may only set the registered subject.
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

// ExchangeCredentials verifies the admin username and password and
// mints an admin token. Both comparisons run before the result is
// checked so response timing does not reveal which credential failed.
func (m *Manager) ExchangeCredentials(username, password string) (string, error) {
	if !m.enabled {
		return "", ErrDisabled
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.adminUser)) == 1
	passOK := bcrypt.CompareHashAndPassword(m.adminHash, []byte(password)) == nil
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}

	return m.GenerateToken(m.adminUser, RoleAdmin)
}

// HashPassword bcrypt-hashes a password for the admin_password_hash
// config entry.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
