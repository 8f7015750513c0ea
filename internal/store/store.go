// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
)

// maxTxnRetries bounds how often an optimistic transaction is retried
// after a write conflict before the conflict is surfaced to the caller.
// Each commit settles one competing writer, so the bound holds well
// past the contention a single user's signals can produce.
const maxTxnRetries = 10

// Config holds the BadgerDB settings shared by all stores.
type Config struct {
	// Path is the directory holding the BadgerDB data files. Ignored
	// when InMemory is set.
	// Default: ./data/reelrank
	Path string `koanf:"path"`

	// InMemory keeps all data in RAM with no files on disk. Intended
	// for tests and ephemeral deployments.
	// Default: false
	InMemory bool `koanf:"in_memory"`

	// SyncWrites fsyncs every write before acknowledging it. Slower,
	// but no acknowledged write is lost on power failure.
	// Default: false
	SyncWrites bool `koanf:"sync_writes"`

	// ValueLogFileSize bounds each value log file in bytes.
	// Default: 268435456
	ValueLogFileSize int64 `koanf:"value_log_file_size"`

	// TopRatedIndexSize bounds the in-memory ranking index the catalog
	// serves top-rated queries from. Queries larger than the bound are
	// truncated to it.
	// Default: 512
	TopRatedIndexSize int `koanf:"top_rated_index_size"`
}

// DefaultConfig returns the store configuration defaults.
func DefaultConfig() Config {
	return Config{
		Path:              "./data/reelrank",
		SyncWrites:        false,
		ValueLogFileSize:  256 << 20,
		TopRatedIndexSize: 512,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return errors.New("store path required unless in-memory")
	}
	if c.ValueLogFileSize < 1<<20 {
		return fmt.Errorf("value log file size %d below 1MB minimum", c.ValueLogFileSize)
	}
	if c.TopRatedIndexSize <= 0 {
		return fmt.Errorf("top rated index size must be positive, got %d", c.TopRatedIndexSize)
	}
	return nil
}

// Open opens the BadgerDB instance backing the stores. The caller owns
// the returned handle and must Close it on shutdown.
func Open(cfg Config) (*badger.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.ValueLogFileSize = cfg.ValueLogFileSize
	// Badger's own logger is noisy at startup; the stores log what
	// matters themselves.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	return db, nil
}

// updateWithRetry runs fn in a read-write transaction, retrying on
// optimistic-concurrency conflicts. fn must be safe to re-run: it is
// invoked once per attempt and must re-read any state it depends on
// from the transaction.
func updateWithRetry(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("transaction conflict persisted after %d attempts: %w", maxTxnRetries, err)
}

// readJSON loads and decodes the value at key into out, reporting
// whether the key existed.
func readJSON(txn *badger.Txn, key string, out any) (bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	}); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// writeJSON encodes v and stores it at key.
func writeJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}
