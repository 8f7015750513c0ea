// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/reelrank/reelrank/internal/metrics"
)

// Entry represents a cached value with its expiry time.
type Entry struct {
	Data      any
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its expiry time.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Stats tracks cache usage counters.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int
	LastCleanup time.Time
}

// Config controls cache behavior.
type Config struct {
	// TTL is the default entry lifetime. Entries stored through Set use
	// this value; GetOrCompute callers supply their own.
	// Default: 5m
	TTL time.Duration `koanf:"ttl"`

	// CleanupInterval is how often the background sweep removes expired
	// entries. Default: 5m
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	// MaxEntries bounds the number of live entries. Inserting past the
	// bound evicts the entries closest to expiry. Zero means unbounded.
	// Default: 0
	MaxEntries int `koanf:"max_entries"`
}

// Cache is an in-memory TTL cache that collapses concurrent computations
// for the same key onto a single in-flight call.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	ttl        time.Duration
	maxEntries int
	group      singleflight.Group
	stats      *Stats
	done       chan struct{}
	stopOnce   sync.Once
}

// New creates a cache and starts its background cleanup loop. Call Stop
// to halt the loop when the cache is no longer needed.
func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	c := &Cache{
		entries:    make(map[string]Entry),
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		stats:      &Stats{},
		done:       make(chan struct{}),
	}
	go c.cleanupLoop(cfg.CleanupInterval)
	return c
}

// Get retrieves a value from the cache. Expired entries are removed on
// access and count as misses.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}
	if entry.Expired(time.Now()) {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// replaced the entry since the read above.
		if cur, ok := c.entries[key]; ok && cur.Expired(time.Now()) {
			delete(c.entries, key)
			c.recordEviction()
		}
		c.mu.Unlock()
		c.recordMiss()
		return nil, false
	}
	c.recordHit()
	return entry.Data, true
}

// Set stores a value using the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a specific TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := time.Now()
	c.mu.Lock()
	c.entries[key] = Entry{Data: value, ExpiresAt: now.Add(ttl)}
	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.evictLocked(now)
	}
	live := len(c.entries)
	c.mu.Unlock()
	metrics.CacheEntries.Set(float64(live))
}

// evictLocked removes expired entries and, if the cache is still over
// its bound, drops the entries closest to expiry. Caller must hold mu.
func (c *Cache) evictLocked(now time.Time) {
	for key, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, key)
			c.recordEviction()
		}
	}
	// The scan is linear but bounded by MaxEntries, and only runs on
	// inserts that overflow the bound.
	for len(c.entries) > c.maxEntries {
		var victim string
		var earliest time.Time
		for key, entry := range c.entries {
			if victim == "" || entry.ExpiresAt.Before(earliest) {
				victim = key
				earliest = entry.ExpiresAt
			}
		}
		delete(c.entries, victim)
		c.recordEviction()
	}
}

// GetOrCompute returns the cached value for key, or runs compute to
// produce it. Concurrent callers for the same key share a single compute
// invocation. The computation runs on a context detached from the
// caller's so that one caller abandoning its request does not cancel
// work other callers are waiting on. A compute error is returned to
// every waiter and nothing is cached for the key.
//
// The second return value reports whether the value was served from the
// cache without running compute.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (any, error)) (any, bool, error) {
	if value, ok := c.Get(key); ok {
		return value, true, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// A cohort member may arrive after the value landed in the
		// cache but before the flight closed.
		c.mu.RLock()
		entry, exists := c.entries[key]
		c.mu.RUnlock()
		if exists && !entry.Expired(time.Now()) {
			return entry.Data, nil
		}

		value, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.SetWithTTL(key, value, ttl)
		return value, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Delete removes a key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	live := len(c.entries)
	c.mu.Unlock()
	metrics.CacheEntries.Set(float64(live))
}

// InvalidatePrefix removes every entry whose key starts with prefix and
// returns the number of entries removed.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	live := len(c.entries)
	c.mu.Unlock()
	if removed > 0 {
		c.stats.mu.Lock()
		c.stats.Evictions += int64(removed)
		c.stats.mu.Unlock()
		metrics.CacheEvictions.Add(float64(removed))
	}
	metrics.CacheEntries.Set(float64(live))
	return removed
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
	metrics.CacheEntries.Set(0)
}

// Len returns the number of live entries, including any not yet swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of cache statistics.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	total := len(c.entries)
	c.mu.RUnlock()

	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		TotalKeys:   total,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	total := c.stats.Hits + c.stats.Misses
	if total == 0 {
		return 0
	}
	return float64(c.stats.Hits) / float64(total) * 100
}

// Stop halts the background cleanup loop. The cache remains usable;
// expired entries are then only removed lazily on access.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	live := len(c.entries)
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.Evictions += int64(removed)
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()
	if removed > 0 {
		metrics.CacheEvictions.Add(float64(removed))
	}
	metrics.CacheEntries.Set(float64(live))
}

func (c *Cache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	metrics.CacheHits.Inc()
}

func (c *Cache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
	metrics.CacheMisses.Inc()
}

func (c *Cache) recordEviction() {
	c.stats.mu.Lock()
	c.stats.Evictions++
	c.stats.mu.Unlock()
	metrics.CacheEvictions.Inc()
}

// GenerateKey creates a deterministic cache key from a method name and
// parameters. Map keys are sorted during marshaling, so two parameter
// maps with equal contents produce the same key.
func GenerateKey(method string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
