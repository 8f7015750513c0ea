// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package cache

import (
	"sort"
	"sync"
)

type rankedItem[T any] struct {
	Key   string
	Score float64
	Value T
}

// RankHeap keeps the top-scoring items up to a fixed bound. It is a
// min-heap keyed by score, so the root is always the weakest item still
// ranked and admission past the bound is a single compare against it.
// Pushing an existing key updates its score and value in place.
//
// It is safe for concurrent use.
type RankHeap[T any] struct {
	mu    sync.RWMutex
	items []rankedItem[T]
	byKey map[string]int
	bound int
}

// NewRankHeap creates a heap retaining at most bound items. A
// non-positive bound means unbounded.
func NewRankHeap[T any](bound int) *RankHeap[T] {
	return &RankHeap[T]{
		byKey: make(map[string]int),
		bound: bound,
	}
}

// Push inserts or updates the item for key and reports whether the item
// is ranked afterwards. When the heap is full an item only displaces the
// current weakest entry if it outranks it.
func (h *RankHeap[T]) Push(key string, score float64, value T) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if idx, ok := h.byKey[key]; ok {
		h.items[idx].Score = score
		h.items[idx].Value = value
		h.fix(idx)
		return true
	}

	if h.bound > 0 && len(h.items) >= h.bound {
		if !h.outranksRoot(key, score) {
			return false
		}
		h.removeAt(0)
	}

	h.items = append(h.items, rankedItem[T]{Key: key, Score: score, Value: value})
	idx := len(h.items) - 1
	h.byKey[key] = idx
	h.bubbleUp(idx)
	return true
}

// Remove deletes the item for key, reporting whether it was present.
func (h *RankHeap[T]) Remove(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx, ok := h.byKey[key]
	if !ok {
		return false
	}
	h.removeAt(idx)
	return true
}

// Get returns the value stored for key.
func (h *RankHeap[T]) Get(key string) (T, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var zero T
	idx, ok := h.byKey[key]
	if !ok {
		return zero, false
	}
	return h.items[idx].Value, true
}

// Len returns the number of ranked items.
func (h *RankHeap[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

// TopDesc returns up to n values ordered by score descending. Ties are
// broken by key ascending so the ordering is stable across calls. A
// non-positive n returns all ranked values.
func (h *RankHeap[T]) TopDesc(n int) []T {
	h.mu.RLock()
	ranked := make([]rankedItem[T], len(h.items))
	copy(ranked, h.items)
	h.mu.RUnlock()

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Key < ranked[j].Key
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	values := make([]T, len(ranked))
	for i, item := range ranked {
		values[i] = item.Value
	}
	return values
}

// Clear removes all items.
func (h *RankHeap[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
	h.byKey = make(map[string]int)
}

// outranksRoot reports whether a candidate would displace the weakest
// ranked item. Caller must hold mu.
func (h *RankHeap[T]) outranksRoot(key string, score float64) bool {
	root := h.items[0]
	if score != root.Score {
		return score > root.Score
	}
	return key < root.Key
}

// less orders the weakest item first: lowest score, and on equal scores
// the larger key, so eviction order is deterministic.
func (h *RankHeap[T]) less(i, j int) bool {
	if h.items[i].Score != h.items[j].Score {
		return h.items[i].Score < h.items[j].Score
	}
	return h.items[i].Key > h.items[j].Key
}

func (h *RankHeap[T]) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.byKey[h.items[i].Key] = i
	h.byKey[h.items[j].Key] = j
}

func (h *RankHeap[T]) fix(idx int) {
	h.bubbleUp(idx)
	h.bubbleDown(idx)
}

func (h *RankHeap[T]) bubbleUp(idx int) {
	for idx > 0 {
		parent := (idx - 1) / 2
		if !h.less(idx, parent) {
			return
		}
		h.swap(idx, parent)
		idx = parent
	}
}

func (h *RankHeap[T]) bubbleDown(idx int) {
	n := len(h.items)
	for {
		smallest := idx
		left := 2*idx + 1
		right := 2*idx + 2
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == idx {
			return
		}
		h.swap(idx, smallest)
		idx = smallest
	}
}

func (h *RankHeap[T]) removeAt(idx int) {
	last := len(h.items) - 1
	key := h.items[idx].Key
	if idx != last {
		h.swap(idx, last)
	}
	h.items = h.items[:last]
	delete(h.byKey, key)
	if idx != last {
		h.fix(idx)
	}
}
