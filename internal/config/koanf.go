// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/reelrank/reelrank/internal/analytics"
	"github.com/reelrank/reelrank/internal/api"
	"github.com/reelrank/reelrank/internal/auth"
	"github.com/reelrank/reelrank/internal/cache"
	"github.com/reelrank/reelrank/internal/embedding"
	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/signals"
	"github.com/reelrank/reelrank/internal/store"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelrank/config.yaml",
	"/etc/reelrank/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the
// config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig assembles the built-in defaults. Every section's
// defaults live with its package; the cache section has no default
// constructor of its own so its values are set here.
func defaultConfig() *Config {
	return &Config{
		Server:    api.DefaultConfig(),
		Auth:      auth.DefaultConfig(),
		Store:     store.DefaultConfig(),
		Analytics: analytics.DefaultConfig(),
		Embedding: embedding.DefaultConfig(),
		Cache: cache.Config{
			TTL:             5 * time.Minute,
			CleanupInterval: 5 * time.Minute,
			MaxEntries:      0, // unbounded
		},
		Engine:  recommend.DefaultConfig(),
		Signals: signals.DefaultConfig(),
		Logging: logging.DefaultConfig(),
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered
// sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML config file (if one exists)
//  3. Environment variables: override any setting
//
// Precedence is ENV > file > defaults. Environment variable names are
// mapped onto koanf paths by envTransformFunc, so HTTP_PORT sets
// server.port and NATS_URL sets signals.nats.url.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none
// found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as
// comma-separated slices when supplied through the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices
// for known slice fields. Env vars come in as strings, but the config
// expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults), nothing to do.
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names onto koanf config
// paths. Only the names listed here are honored; anything else returns
// empty string and is skipped, so stray environment variables cannot
// pollute the configuration.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - BADGER_PATH -> store.path
//   - DUCKDB_PATH -> analytics.path
//   - NATS_URL -> signals.nats.url
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_read_timeout":     "server.read_timeout",
		"http_write_timeout":    "server.write_timeout",
		"http_idle_timeout":     "server.idle_timeout",
		"http_request_timeout":  "server.request_timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",
		"cors_origins":          "server.cors_origins",
		"rate_limit_requests":   "server.rate_limit_requests",
		"rate_limit_window":     "server.rate_limit_window",
		"disable_rate_limit":    "server.rate_limit_disabled",
		"swagger_enabled":       "server.swagger_enabled",

		// Auth mappings
		"auth_enabled":        "auth.enabled",
		"auth_secret":         "auth.secret",
		"auth_token_ttl":      "auth.token_ttl",
		"admin_username":      "auth.admin_username",
		"admin_password_hash": "auth.admin_password_hash",

		// Store mappings (BadgerDB)
		"badger_path":                "store.path",
		"badger_in_memory":           "store.in_memory",
		"badger_sync_writes":         "store.sync_writes",
		"badger_value_log_file_size": "store.value_log_file_size",
		"badger_top_rated_index":     "store.top_rated_index_size",

		// Analytics mappings (DuckDB)
		"analytics_enabled":        "analytics.enabled",
		"duckdb_path":              "analytics.path",
		"duckdb_max_memory":        "analytics.max_memory",
		"duckdb_threads":           "analytics.threads",
		"analytics_retention_days": "analytics.retention_days",

		// Embedding provider mappings
		"embedding_enabled":             "embedding.enabled",
		"embedding_url":                 "embedding.url",
		"embedding_api_key":             "embedding.api_key",
		"embedding_timeout":             "embedding.timeout",
		"embedding_requests_per_second": "embedding.requests_per_second",
		"embedding_burst":               "embedding.burst",
		"embedding_memo_size":           "embedding.memo_size",
		"embedding_memo_ttl":            "embedding.memo_ttl",

		// Cache mappings
		"cache_ttl":              "cache.ttl",
		"cache_cleanup_interval": "cache.cleanup_interval",
		"cache_max_entries":      "cache.max_entries",

		// Engine mappings
		"engine_default_limit":        "engine.default_limit",
		"engine_max_limit":            "engine.max_limit",
		"engine_candidate_multiplier": "engine.candidate_multiplier",
		"engine_semantic_threshold":   "engine.semantic_threshold",
		"engine_cache_ttl":            "engine.cache_ttl",
		"engine_score_workers":        "engine.score_workers",
		// Scoring knobs
		"engine_reference_popularity":      "engine.scoring.reference_popularity",
		"engine_recency_horizon_years":     "engine.scoring.recency_horizon_years",
		"engine_confidence_multiplier":     "engine.scoring.confidence_multiplier",
		"engine_semantic_confidence_cap":   "engine.scoring.semantic_confidence_cap",
		"engine_preference_confidence_cap": "engine.scoring.preference_confidence_cap",
		"engine_fallback_confidence_cap":   "engine.scoring.fallback_confidence_cap",
		"engine_top_genre_count":           "engine.scoring.top_genre_count",
		"engine_safe_affinity_threshold":   "engine.scoring.safe_affinity_threshold",
		"engine_strong_rating_norm":        "engine.scoring.strong_rating_norm",
		"engine_strong_popularity_norm":    "engine.scoring.strong_popularity_norm",
		// Learning knobs
		"engine_max_recent_signals":      "engine.learning.max_recent_signals",
		"engine_fixed_step":              "engine.learning.fixed_step",
		"engine_strong_step":             "engine.learning.strong_step",
		"engine_rating_pivot":            "engine.learning.rating_pivot",
		"engine_rating_scale":            "engine.learning.rating_scale",
		"engine_completed_watch_seconds": "engine.learning.completed_watch_seconds",
		"engine_abandoned_watch_seconds": "engine.learning.abandoned_watch_seconds",

		// Signal pipeline mappings
		"signals_enabled":    "signals.enabled",
		"signals_throttle":   "signals.router.throttle_per_second",
		"signals_retry_max":  "signals.router.retry_max_retries",
		"signals_retry_wait": "signals.router.retry_initial_interval",

		// NATS transport mappings (builds with the nats tag)
		"nats_enabled":         "signals.nats.enabled",
		"nats_embedded":        "signals.nats.embedded_server",
		"nats_url":             "signals.nats.url",
		"nats_store_dir":       "signals.nats.store_dir",
		"nats_max_memory":      "signals.nats.max_memory",
		"nats_max_store":       "signals.nats.max_store",
		"nats_retention_days":  "signals.nats.retention_days",
		"nats_durable_name":    "signals.nats.durable_name",
		"nats_queue_group":     "signals.nats.queue_group",
		"nats_ack_wait":        "signals.nats.ack_wait_timeout",
		"nats_max_deliver":     "signals.nats.max_deliver",
		"nats_max_ack_pending": "signals.nats.max_ack_pending",
		"nats_max_reconnects":  "signals.nats.max_reconnects",
		"nats_reconnect_wait":  "signals.nats.reconnect_wait",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped
	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage,
// such as hot-reload scenarios or custom configuration sources in
// tests.
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for mutex protection when swapping the
// configuration during reloads.
//
// Example usage:
//
//	var cfgMu sync.RWMutex
//	var cfg *config.Config
//
//	err := config.WatchConfigFile(configPath, func() {
//	    newCfg, err := config.Load()
//	    if err != nil {
//	        log.Error().Err(err).Msg("config reload failed")
//	        return
//	    }
//	    cfgMu.Lock()
//	    cfg = newCfg
//	    cfgMu.Unlock()
//	})
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
