/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package lockplane

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// defaultStatsTTL and defaultStatsMaxEntries match §4.8's "cached for
// 3s... bounded (e.g., 100 entries) with LRU eviction" requirement.
const (
	defaultStatsTTL        = 3 * time.Second
	defaultStatsMaxEntries = 100
)

type statsEntry struct {
	value   any
	cachedAt time.Time
	elem    *list.Element
}

// StatsCache is the teacher's ResultCache (TTL + bounded LRU,
// string-keyed) renamed and generalized: instead of caching LLM prompt
// results keyed by a prompt hash, it caches queue-statistics payloads
// keyed by queue name, and adds singleflight coalescing for concurrent
// misses per §4.8 ("concurrent cache misses are coalesced by sharing
// the pending fetch").
type StatsCache struct {
	mu         sync.Mutex
	entries    map[string]*statsEntry
	order      *list.List // front = most recently used
	ttl        time.Duration
	maxEntries int
	group      singleflight.Group
}

func NewStatsCache(ttl time.Duration, maxEntries int) *StatsCache {
	if ttl == 0 {
		ttl = defaultStatsTTL
	}
	if maxEntries == 0 {
		maxEntries = defaultStatsMaxEntries
	}
	return &StatsCache{
		entries:    make(map[string]*statsEntry),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// GetOrFetch returns the cached value for key if fresh, else calls
// fetch exactly once even under concurrent callers for the same key
// (singleflight), caches the result, and evicts the least-recently-used
// entry if the cache is at capacity.
func (c *StatsCache) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the singleflight key: another goroutine may
		// have populated the cache while we waited to enter Do.
		if v, ok := c.get(key); ok {
			return v, nil
		}
		result, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.put(key, result)
		return result, nil
	})
	return v, err
}

func (c *StatsCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(e.cachedAt) > c.ttl {
		c.evict(key, e)
		return nil, false
	}
	c.order.MoveToFront(e.elem)
	return e.value, true
}

func (c *StatsCache) put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		existing.value = value
		existing.cachedAt = time.Now()
		c.order.MoveToFront(existing.elem)
		return
	}

	elem := c.order.PushFront(key)
	c.entries[key] = &statsEntry{value: value, cachedAt: time.Now(), elem: elem}

	for len(c.entries) > c.maxEntries {
		back := c.order.Back()
		if back == nil {
			break
		}
		oldKey := back.Value.(string)
		c.evict(oldKey, c.entries[oldKey])
	}
}

func (c *StatsCache) evict(key string, e *statsEntry) {
	c.order.Remove(e.elem)
	delete(c.entries, key)
}

func (c *StatsCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
