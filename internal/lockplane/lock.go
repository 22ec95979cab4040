/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

// Package lockplane implements C8: distributed per-supplier locks,
// cooperative stop signals, and a coalesced statistics cache, per §4.8.
package lockplane

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atlaspim/syncengine/internal/domain"
)

const (
	lockKeyPrefix = "sync:promidata:lock:"
	stopKeyPrefix = "sync:promidata:stop:"

	defaultLockTTL = 1 * time.Hour
	defaultStopTTL = 5 * time.Minute
)

// releaseScript is the compare-and-delete Lua script: only the holder
// that set the key may delete it, avoiding a lost-update where one
// worker's release clobbers another's freshly-acquired lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

// Locks wraps a Redis client with the lock/stop-sentinel operations of
// §4.8.
type Locks struct {
	rdb     *redis.Client
	lockTTL time.Duration
	stopTTL time.Duration
}

func New(rdb *redis.Client, lockTTL, stopTTL time.Duration) *Locks {
	if lockTTL == 0 {
		lockTTL = defaultLockTTL
	}
	if stopTTL == 0 {
		stopTTL = defaultStopTTL
	}
	return &Locks{rdb: rdb, lockTTL: lockTTL, stopTTL: stopTTL}
}

func lockKey(supplierID string) string { return lockKeyPrefix + supplierID }
func stopKey(supplierID string) string { return stopKeyPrefix + supplierID }

// Acquire performs SET key value NX EX <ttl>. Returns the holder id on
// success and acquired=false if the lock was already held (P5: no two
// successful supplier syncs overlap).
func (l *Locks) Acquire(ctx context.Context, supplierID string) (holderID string, acquired bool, err error) {
	holderID = newHolderID()
	ok, err := l.rdb.SetNX(ctx, lockKey(supplierID), holderID, l.lockTTL).Result()
	if err != nil {
		return "", false, &domain.TransientStoreError{Op: "acquire lock", Cause: err}
	}
	if !ok {
		return "", false, nil
	}
	return holderID, true, nil
}

// Release performs the scripted compare-and-delete by holder id.
func (l *Locks) Release(ctx context.Context, supplierID, holderID string) error {
	if err := releaseScript.Run(ctx, l.rdb, []string{lockKey(supplierID)}, holderID).Err(); err != nil && err != redis.Nil {
		return &domain.TransientStoreError{Op: "release lock", Cause: err}
	}
	return nil
}

// IsLocked reports whether a supplier currently holds a sync lock,
// without enumerating every active lock — used by the control
// surface's POST /sync/start to return 409 on a concurrent duplicate
// start (S4) before bothering to enqueue.
func (l *Locks) IsLocked(ctx context.Context, supplierID string) (bool, error) {
	n, err := l.rdb.Exists(ctx, lockKey(supplierID)).Result()
	if err != nil {
		return false, &domain.TransientStoreError{Op: "check lock", Cause: err}
	}
	return n > 0, nil
}

// ActiveLocks enumerates supplier ids with a currently-held lock, using
// cursor-based SCAN rather than KEYS so it stays compatible with
// managed Redis variants that disable bulk key listing (§4.8).
func (l *Locks) ActiveLocks(ctx context.Context) ([]string, error) {
	var suppliers []string
	var cursor uint64
	for {
		keys, next, err := l.rdb.Scan(ctx, cursor, lockKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, &domain.TransientStoreError{Op: "scan active locks", Cause: err}
		}
		for _, k := range keys {
			suppliers = append(suppliers, k[len(lockKeyPrefix):])
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return suppliers, nil
}

// RequestStop sets the stop sentinel for a supplier. Returns success
// unconditionally, matching §6's POST /sync/stop contract ("returns
// success regardless of whether a sync is actually running").
func (l *Locks) RequestStop(ctx context.Context, supplierID string) error {
	if err := l.rdb.Set(ctx, stopKey(supplierID), "1", l.stopTTL).Err(); err != nil {
		return &domain.TransientStoreError{Op: "request stop", Cause: err}
	}
	return nil
}

// StopRequested checks the stop sentinel. Workers call this only at the
// defined safe points of §4.8/§5 — between manifest parse, between
// family fetches, between family enqueues, between image batches —
// never mid-atomic-unit.
func (l *Locks) StopRequested(ctx context.Context, supplierID string) (bool, error) {
	n, err := l.rdb.Exists(ctx, stopKey(supplierID)).Result()
	if err != nil {
		return false, &domain.TransientStoreError{Op: "check stop sentinel", Cause: err}
	}
	return n > 0, nil
}

// ClearStop removes the stop sentinel once a cancelled run has finished,
// so the next start isn't immediately cancelled again.
func (l *Locks) ClearStop(ctx context.Context, supplierID string) error {
	if err := l.rdb.Del(ctx, stopKey(supplierID)).Err(); err != nil {
		return &domain.TransientStoreError{Op: "clear stop sentinel", Cause: err}
	}
	return nil
}

func newHolderID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("h-%s", hex.EncodeToString(b))
}
