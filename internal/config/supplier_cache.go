/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package config

import (
	"context"
	"sync"
	"time"

	"github.com/atlaspim/syncengine/internal/domain"
)

// defaultSupplierCacheTTL bounds how stale an IsActive/AutoImport read
// can be before the next RefreshIfStale call reloads it.
const defaultSupplierCacheTTL = 30 * time.Second

// SupplierLoader fetches the current supplier rows from the relational
// store. Implemented by internal/reconciler's store; kept as a narrow
// interface here so internal/config has no store dependency.
type SupplierLoader func(ctx context.Context) ([]domain.Supplier, error)

// SupplierFlagCache is the TTL-gated refresh-with-fallback idiom the
// teacher applies to its ConfigMap-backed cluster defaults, narrowed to
// this domain's only runtime-mutable config: per-supplier is_active and
// auto_import flags, read by the control surface's bulk sync start and
// by the cron schedules when they pick suppliers.
type SupplierFlagCache struct {
	mu       sync.RWMutex
	flags    map[string]domain.Supplier
	at       time.Time
	ttl      time.Duration
	load     SupplierLoader
}

func NewSupplierFlagCache(load SupplierLoader, ttl time.Duration) *SupplierFlagCache {
	if ttl == 0 {
		ttl = defaultSupplierCacheTTL
	}
	return &SupplierFlagCache{flags: make(map[string]domain.Supplier), ttl: ttl, load: load}
}

// RefreshIfStale reloads supplier flags only if the cache TTL has
// expired, mirroring the teacher's refreshDefaultsIfStale/
// loadClusterDefaults split.
func (c *SupplierFlagCache) RefreshIfStale(ctx context.Context) error {
	c.mu.RLock()
	fresh := time.Since(c.at) < c.ttl
	c.mu.RUnlock()
	if fresh {
		return nil
	}
	suppliers, err := c.load(ctx)
	if err != nil {
		return &domain.TransientStoreError{Op: "load supplier flags", Cause: err}
	}
	next := make(map[string]domain.Supplier, len(suppliers))
	for _, s := range suppliers {
		next[s.Code] = s
	}
	c.mu.Lock()
	c.flags = next
	c.at = time.Now()
	c.mu.Unlock()
	return nil
}

// Get returns the cached flags for one supplier code. The second return
// is false if the code is unknown.
func (c *SupplierFlagCache) Get(code string) (domain.Supplier, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.flags[code]
	return s, ok
}

// Codes returns every supplier code currently cached, is_active or not
// — callers filter it by is_active, as POST /sync/start does to
// enumerate "all active suppliers".
func (c *SupplierFlagCache) Codes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.flags))
	for code := range c.flags {
		out = append(out, code)
	}
	return out
}
