/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package lockplane

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestStatsCacheFetchesOnceAndCaches(t *testing.T) {
	cache := NewStatsCache(50*time.Millisecond, 10)
	var calls int32
	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	}

	for i := 0; i < 5; i++ {
		v, err := cache.GetOrFetch(context.Background(), "q1", fetch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.(int) != 42 {
			t.Fatalf("unexpected value: %v", v)
		}
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 fetch call, got %d", calls)
	}
}

func TestStatsCacheExpiresAfterTTL(t *testing.T) {
	cache := NewStatsCache(10*time.Millisecond, 10)
	var calls int32
	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return 1, nil
	}
	cache.GetOrFetch(context.Background(), "q1", fetch)
	time.Sleep(20 * time.Millisecond)
	cache.GetOrFetch(context.Background(), "q1", fetch)
	if calls != 2 {
		t.Fatalf("expected 2 fetches after TTL expiry, got %d", calls)
	}
}

func TestStatsCacheEvictsLRU(t *testing.T) {
	cache := NewStatsCache(time.Minute, 2)
	fetch := func(v int) func(ctx context.Context) (any, error) {
		return func(ctx context.Context) (any, error) { return v, nil }
	}
	cache.GetOrFetch(context.Background(), "a", fetch(1))
	cache.GetOrFetch(context.Background(), "b", fetch(2))
	cache.GetOrFetch(context.Background(), "c", fetch(3))
	if cache.Len() != 2 {
		t.Fatalf("expected bounded size 2, got %d", cache.Len())
	}
	if _, ok := cache.get("a"); ok {
		t.Fatal("expected least-recently-used entry 'a' to be evicted")
	}
}
