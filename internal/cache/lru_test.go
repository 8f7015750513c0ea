// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package cache

import (
	"testing"
	"time"
)

// --- Test: Add and Get ---

func TestLRUAddAndGet(t *testing.T) {
	t.Parallel()

	l := NewLRU[string](4, time.Minute)

	l.Add("m1", "Inception")
	got, ok := l.Get("m1")
	if !ok {
		t.Fatal("expected hit for stored key")
	}
	if got != "Inception" {
		t.Errorf("Get() = %q, want Inception", got)
	}

	if _, ok := l.Get("m2"); ok {
		t.Error("expected miss for absent key")
	}
}

// --- Test: Eviction order ---

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	l := NewLRU[int](2, time.Minute)

	l.Add("a", 1)
	l.Add("b", 2)
	if _, ok := l.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}
	l.Add("c", 3)

	if _, ok := l.Get("b"); ok {
		t.Error("least recently used entry b survived eviction")
	}
	if _, ok := l.Get("a"); !ok {
		t.Error("recently used entry a was evicted")
	}
	if _, ok := l.Get("c"); !ok {
		t.Error("newest entry c was evicted")
	}
}

func TestLRUAddExistingPromotes(t *testing.T) {
	t.Parallel()

	l := NewLRU[int](2, time.Minute)

	l.Add("a", 1)
	l.Add("b", 2)
	l.Add("a", 10)
	l.Add("c", 3)

	if _, ok := l.Get("b"); ok {
		t.Error("b survived eviction after a was refreshed")
	}
	got, ok := l.Get("a")
	if !ok {
		t.Fatal("refreshed entry a was evicted")
	}
	if got != 10 {
		t.Errorf("Get(a) = %d, want updated value 10", got)
	}
}

func TestLRUContainsDoesNotPromote(t *testing.T) {
	t.Parallel()

	l := NewLRU[int](2, time.Minute)

	l.Add("a", 1)
	l.Add("b", 2)
	if !l.Contains("a") {
		t.Fatal("Contains(a) = false, want true")
	}
	l.Add("c", 3)

	// Contains must not refresh recency, so a is still the oldest.
	if l.Contains("a") {
		t.Error("a survived eviction after a recency-neutral lookup")
	}
	if !l.Contains("b") {
		t.Error("b was evicted instead of a")
	}
}

// --- Test: TTL ---

func TestLRUTTLExpiry(t *testing.T) {
	t.Parallel()

	l := NewLRU[string](4, 10*time.Millisecond)

	l.Add("m1", "Heat")
	time.Sleep(25 * time.Millisecond)

	if _, ok := l.Get("m1"); ok {
		t.Error("expired entry served")
	}
	if l.Len() != 0 {
		t.Errorf("Len() after expired Get = %d, want 0", l.Len())
	}
}

func TestLRUZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	l := NewLRU[string](4, 0)

	l.Add("m1", "Alien")
	time.Sleep(10 * time.Millisecond)

	if _, ok := l.Get("m1"); !ok {
		t.Error("entry with no TTL expired")
	}
}

func TestLRUCleanupExpired(t *testing.T) {
	t.Parallel()

	l := NewLRU[int](8, 10*time.Millisecond)

	l.Add("a", 1)
	l.Add("b", 2)
	time.Sleep(25 * time.Millisecond)
	l.Add("c", 3)

	if removed := l.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired() = %d, want 2", removed)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}
}

// --- Test: Remove and Clear ---

func TestLRURemoveAndClear(t *testing.T) {
	t.Parallel()

	l := NewLRU[int](4, time.Minute)

	l.Add("a", 1)
	l.Add("b", 2)

	l.Remove("a")
	if _, ok := l.Get("a"); ok {
		t.Error("removed entry still present")
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}

	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", l.Len())
	}

	// The list is reusable after Clear.
	l.Add("c", 3)
	if _, ok := l.Get("c"); !ok {
		t.Error("entry added after Clear not found")
	}
}
