// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testPassword = "correct-horse-battery-staple"
)

// testAdminHash is computed once with the minimum cost so the suite
// does not pay the production work factor on every test.
var testAdminHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Secret = testSecret
	cfg.AdminPasswordHash = testAdminHash
	return cfg
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	manager, err := NewManager(testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return manager
}

// --- Test: configuration ---

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid enabled config",
			mutate: func(c *Config) {},
		},
		{
			name: "disabled config needs nothing",
			mutate: func(c *Config) {
				c.Enabled = false
				c.Secret = ""
				c.AdminPasswordHash = ""
			},
		},
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.Secret = "too-short" },
			wantErr: true,
		},
		{
			name:    "zero token ttl",
			mutate:  func(c *Config) { c.TokenTTL = 0 },
			wantErr: true,
		},
		{
			name:    "empty admin username",
			mutate:  func(c *Config) { c.AdminUsername = "" },
			wantErr: true,
		},
		{
			name:    "empty admin password hash",
			mutate:  func(c *Config) { c.AdminPasswordHash = "" },
			wantErr: true,
		},
		{
			name:    "plaintext password instead of hash",
			mutate:  func(c *Config) { c.AdminPasswordHash = testPassword },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

// --- Test: token lifecycle ---

func TestGenerateAndParseToken(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t)

	tests := []struct {
		name   string
		userID string
		role   string
	}{
		{name: "user token", userID: "u-1", role: RoleUser},
		{name: "admin token", userID: "admin", role: RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := manager.GenerateToken(tt.userID, tt.role)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}
			if token == "" {
				t.Fatal("GenerateToken() returned empty token")
			}

			claims, err := manager.ParseToken(token)
			if err != nil {
				t.Fatalf("ParseToken() error = %v", err)
			}
			if claims.UserID != tt.userID {
				t.Errorf("UserID = %q, want %q", claims.UserID, tt.userID)
			}
			if claims.Role != tt.role {
				t.Errorf("Role = %q, want %q", claims.Role, tt.role)
			}
			if claims.Subject != tt.userID {
				t.Errorf("Subject = %q, want %q", claims.Subject, tt.userID)
			}

			remaining := time.Until(claims.ExpiresAt.Time)
			if remaining < 23*time.Hour || remaining > 25*time.Hour {
				t.Errorf("token lifetime = %v, want about 24h", remaining)
			}
		})
	}
}

func TestParseTokenInvalid(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "not_a_jwt_token"},
		{name: "invalid token format", token: "invalid.token.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := manager.ParseToken(tt.token)
			if err == nil {
				t.Error("ParseToken() expected error, got nil")
			}
			if claims != nil {
				t.Error("ParseToken() expected nil claims")
			}
		})
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t)

	otherCfg := testConfig()
	otherCfg.Secret = strings.Repeat("x", minSecretLength)
	other, err := NewManager(otherCfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	token, err := manager.GenerateToken("u-1", RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := other.ParseToken(token); err == nil {
		t.Error("ParseToken() expected error for token signed with another secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.TokenTTL = time.Millisecond
	manager, err := NewManager(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	token, err := manager.GenerateToken("u-1", RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	_, err = manager.ParseToken(token)
	if err == nil {
		t.Fatal("ParseToken() expected error for expired token")
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("ParseToken() error = %v, want jwt.ErrTokenExpired", err)
	}
}

func TestParseTokenRejectsUnsignedAlgorithm(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "u-1",
		Role:   RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := manager.ParseToken(token); err == nil {
		t.Error("ParseToken() expected error for alg=none token")
	}
}

func TestParseTokenFallsBackToSubject(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t)

	// A gateway minting tokens with the shared secret may only set the
	// registered subject claim.
	external := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u-9",
		"role": RoleUser,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	token, err := external.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != "u-9" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "u-9")
	}
	if claims.Role != RoleUser {
		t.Errorf("Role = %q, want %q", claims.Role, RoleUser)
	}
}

func TestDisabledManager(t *testing.T) {
	t.Parallel()

	manager, err := NewManager(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	if manager.Enabled() {
		t.Error("Enabled() = true for default config")
	}
	if _, err := manager.GenerateToken("u-1", RoleUser); !errors.Is(err, ErrDisabled) {
		t.Errorf("GenerateToken() error = %v, want ErrDisabled", err)
	}
	if _, err := manager.ParseToken("anything"); !errors.Is(err, ErrDisabled) {
		t.Errorf("ParseToken() error = %v, want ErrDisabled", err)
	}
	if _, err := manager.ExchangeCredentials("admin", testPassword); !errors.Is(err, ErrDisabled) {
		t.Errorf("ExchangeCredentials() error = %v, want ErrDisabled", err)
	}
}

// --- Test: credential exchange ---

func TestExchangeCredentials(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t)

	token, err := manager.ExchangeCredentials("admin", testPassword)
	if err != nil {
		t.Fatalf("ExchangeCredentials() error = %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != "admin" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "admin")
	}
	if claims.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", claims.Role, RoleAdmin)
	}
}

func TestExchangeCredentialsRejected(t *testing.T) {
	t.Parallel()

	manager := newTestManager(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "admin", password: "wrong"},
		{name: "wrong username", username: "root", password: testPassword},
		{name: "both wrong", username: "root", password: "wrong"},
		{name: "empty credentials", username: "", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := manager.ExchangeCredentials(tt.username, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("ExchangeCredentials() error = %v, want ErrInvalidCredentials", err)
			}
			if token != "" {
				t.Error("ExchangeCredentials() returned a token for bad credentials")
			}
		})
	}
}

// --- Test: password hashing ---

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(testPassword)); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}

	if _, err := HashPassword(""); err == nil {
		t.Error("HashPassword() expected error for empty password")
	}
}
