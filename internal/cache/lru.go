// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package cache

import (
	"sync"
	"time"
)

type lruNode[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	prev      *lruNode[V]
	next      *lruNode[V]
}

// LRU is a fixed-capacity cache with least-recently-used eviction and
// per-entry TTL. It is safe for concurrent use.
//
// Unlike Cache it has no background sweep; expired entries are removed
// on access or by an explicit CleanupExpired call. That makes it suited
// to memoizing small working sets, like responses from an upstream
// service, where the capacity bound does most of the work.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*lruNode[V]
	head     *lruNode[V]
	tail     *lruNode[V]
}

// NewLRU creates an LRU cache holding at most capacity entries, each
// valid for ttl. A non-positive capacity defaults to 128; a
// non-positive ttl means entries never expire.
func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 128
	}
	return &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*lruNode[V], capacity),
	}
}

// Get returns the value for key and marks it most recently used.
func (l *LRU[V]) Get(key string) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var zero V
	node, ok := l.items[key]
	if !ok {
		return zero, false
	}
	if l.expired(node) {
		l.removeNode(node)
		delete(l.items, key)
		return zero, false
	}
	l.moveToFront(node)
	return node.value, true
}

// Contains reports whether key is present without updating recency.
func (l *LRU[V]) Contains(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	node, ok := l.items[key]
	if !ok {
		return false
	}
	if l.expired(node) {
		l.removeNode(node)
		delete(l.items, key)
		return false
	}
	return true
}

// Add stores value under key, replacing any existing entry and evicting
// the least recently used entry if the cache is full.
func (l *LRU[V]) Add(key string, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var expiresAt time.Time
	if l.ttl > 0 {
		expiresAt = time.Now().Add(l.ttl)
	}

	if node, ok := l.items[key]; ok {
		node.value = value
		node.expiresAt = expiresAt
		l.moveToFront(node)
		return
	}

	node := &lruNode[V]{key: key, value: value, expiresAt: expiresAt}
	l.items[key] = node
	l.addToFront(node)

	if len(l.items) > l.capacity {
		l.evictOldest()
	}
}

// Remove deletes key from the cache.
func (l *LRU[V]) Remove(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if node, ok := l.items[key]; ok {
		l.removeNode(node)
		delete(l.items, key)
	}
}

// Len returns the number of entries, including any expired but not yet
// removed.
func (l *LRU[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Clear removes all entries.
func (l *LRU[V]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make(map[string]*lruNode[V], l.capacity)
	l.head = nil
	l.tail = nil
}

// CleanupExpired removes all expired entries and returns the number
// removed.
func (l *LRU[V]) CleanupExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, node := range l.items {
		if l.expired(node) {
			l.removeNode(node)
			delete(l.items, key)
			removed++
		}
	}
	return removed
}

func (l *LRU[V]) expired(node *lruNode[V]) bool {
	return !node.expiresAt.IsZero() && time.Now().After(node.expiresAt)
}

func (l *LRU[V]) moveToFront(node *lruNode[V]) {
	if node == l.head {
		return
	}
	l.removeNode(node)
	l.addToFront(node)
}

func (l *LRU[V]) addToFront(node *lruNode[V]) {
	node.prev = nil
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
}

func (l *LRU[V]) removeNode(node *lruNode[V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
}

func (l *LRU[V]) evictOldest() {
	if l.tail == nil {
		return
	}
	oldest := l.tail
	l.removeNode(oldest)
	delete(l.items, oldest.key)
}
