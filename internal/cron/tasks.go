/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

// Package cron runs the engine's four background schedules: nightly
// full sync, periodic incremental re-enqueue, queue cleanup, and a
// health check over job-queue depth. There is no cron library anywhere
// in the example corpus this engine was grounded on, so the three
// interval schedules are plain time.Ticker loops — the same idiom the
// teacher uses for its own polling loop in cmd/hortator/cmd/spawn.go —
// and the nightly schedule is a time.Timer re-armed for each next 02:00.
package cron

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atlaspim/syncengine/internal/config"
	"github.com/atlaspim/syncengine/internal/jobs"
)

const (
	incrementalSyncInterval = 12 * time.Hour
	cleanupInterval         = 6 * time.Hour
	healthCheckInterval     = 15 * time.Minute

	cleanupGrace = 24 * time.Hour

	// Health-check thresholds: crossing any one logs a warning; the
	// check itself never aborts the process or touches the queue.
	failedThreshold        = 50
	waitingThreshold       = 100
	pausedWithWaitingAlarm = 0

	// listPageSize is the largest page ListJobs accepts.
	listPageSize = 100
)

// Scheduler owns the four background loops. Every dependency arrives
// by constructor injection (DN1) — no package-level queue or database
// handle.
type Scheduler struct {
	enqueuer  *jobs.Enqueuer
	admin     *jobs.Admin
	flags     *config.SupplierFlagCache
	suppliers []string
	logger    *zap.Logger

	stop chan struct{}
}

func NewScheduler(enqueuer *jobs.Enqueuer, admin *jobs.Admin, flags *config.SupplierFlagCache,
	suppliers []string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		enqueuer:  enqueuer,
		admin:     admin,
		flags:     flags,
		suppliers: suppliers,
		logger:    logger,
		stop:      make(chan struct{}),
	}
}

// Start launches all four schedules as background goroutines. Stop
// cancels every one of them.
func (s *Scheduler) Start(ctx context.Context) {
	go s.runDaily(ctx, 2, 0, s.fullSync) // 02:00 local
	go s.runEvery(ctx, incrementalSyncInterval, s.incrementalSync)
	go s.runEvery(ctx, cleanupInterval, s.cleanupQueues)
	go s.runEvery(ctx, healthCheckInterval, s.healthCheck)
}

func (s *Scheduler) Stop() { close(s.stop) }

func (s *Scheduler) runEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// runDaily fires fn once per day at the given local hour:minute, sleeping
// until the next occurrence rather than polling on a short tick.
func (s *Scheduler) runDaily(ctx context.Context, hour, minute int, fn func(context.Context)) {
	for {
		wait := nextOccurrence(hour, minute)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
			fn(ctx)
		}
	}
}

func nextOccurrence(hour, minute int) time.Duration {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// activeSuppliers refreshes the flag cache once and returns the codes
// currently marked is_active.
func (s *Scheduler) activeSuppliers(ctx context.Context) []string {
	if err := s.flags.RefreshIfStale(ctx); err != nil {
		s.logger.Warn("supplier flag refresh failed, using last-known values", zap.Error(err))
	}
	var active []string
	for _, code := range s.suppliers {
		if sup, ok := s.flags.Get(code); ok && sup.IsActive {
			active = append(active, code)
		}
	}
	return active
}

// fullSync enqueues an ordinary supplier-sync job for every active
// supplier, nightly. Stored content hashes are left in place, so
// unchanged families are still skipped.
func (s *Scheduler) fullSync(ctx context.Context) {
	s.logger.Info("nightly full sync starting")
	for _, supplierID := range s.activeSuppliers(ctx) {
		if _, err := s.enqueuer.EnqueueSupplierSync(ctx, jobs.SupplierSyncPayload{SupplierID: supplierID, Manual: false}); err != nil {
			s.logger.Warn("failed to enqueue nightly full sync", zap.String("supplier_id", supplierID), zap.Error(err))
		}
	}
}

// incrementalSync re-enqueues every auto_import supplier on the regular
// cadence (§5's default operating mode — most families are skipped on
// unchanged hash, per P1).
func (s *Scheduler) incrementalSync(ctx context.Context) {
	s.logger.Info("incremental sync sweep starting")
	if err := s.flags.RefreshIfStale(ctx); err != nil {
		s.logger.Warn("supplier flag refresh failed, using last-known values", zap.Error(err))
	}
	for _, code := range s.suppliers {
		sup, ok := s.flags.Get(code)
		if !ok || !sup.IsActive || !sup.AutoImport {
			continue
		}
		if _, err := s.enqueuer.EnqueueSupplierSync(ctx, jobs.SupplierSyncPayload{SupplierID: code, Manual: false}); err != nil {
			s.logger.Warn("failed to enqueue incremental sync", zap.String("supplier_id", code), zap.Error(err))
		}
	}
}

// cleanupQueues removes completed and failed jobs older than the grace
// window across all three queues, bounding Redis memory growth with a
// periodic sweep instead of per-run deletion.
func (s *Scheduler) cleanupQueues(ctx context.Context) {
	for _, queue := range []string{jobs.QueueSupplierSync, jobs.QueueProductFamily, jobs.QueueImageUpload} {
		for _, status := range []string{jobs.StateCompleted, jobs.StateFailed} {
			n, err := s.admin.Clean(queue, cleanupGrace, status)
			if err != nil {
				s.logger.Warn("queue cleanup failed", zap.String("queue", queue), zap.String("status", status), zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Info("queue cleanup removed jobs", zap.String("queue", queue), zap.String("status", status), zap.Int("removed", n))
			}
		}
	}
}

// healthCheck inspects queue depth against fixed thresholds, the same
// warn-only severity shape as the teacher's stuck-agent health check:
// crossing a threshold logs a warning, it never takes a corrective
// action on its own.
func (s *Scheduler) healthCheck(ctx context.Context) {
	for _, queue := range []string{jobs.QueueSupplierSync, jobs.QueueProductFamily, jobs.QueueImageUpload} {
		failed, err := s.admin.ListJobs(queue, jobs.StateFailed, 1, listPageSize)
		if err != nil {
			s.logger.Warn("health check: failed-jobs query errored", zap.String("queue", queue), zap.Error(err))
			continue
		}
		if len(failed) > failedThreshold {
			s.logger.Warn("health check: failed job count above threshold",
				zap.String("queue", queue), zap.Int("failed", len(failed)), zap.Int("threshold", failedThreshold))
		}

		waiting, err := s.admin.ListJobs(queue, jobs.StateWaiting, 1, listPageSize)
		if err != nil {
			s.logger.Warn("health check: waiting-jobs query errored", zap.String("queue", queue), zap.Error(err))
			continue
		}
		if len(waiting) == listPageSize {
			// A full first page cannot tell "at the threshold" from
			// "above it"; the second page can.
			if more, err := s.admin.ListJobs(queue, jobs.StateWaiting, 2, listPageSize); err == nil {
				waiting = append(waiting, more...)
			}
		}
		if len(waiting) > waitingThreshold {
			s.logger.Warn("health check: waiting job count above threshold",
				zap.String("queue", queue), zap.Int("waiting", len(waiting)), zap.Int("threshold", waitingThreshold))
		}

		paused, err := s.admin.IsPaused(queue)
		if err != nil {
			s.logger.Warn("health check: paused-state query errored", zap.String("queue", queue), zap.Error(err))
			continue
		}
		if paused && len(waiting) > pausedWithWaitingAlarm {
			s.logger.Warn("health check: queue paused with jobs waiting", zap.String("queue", queue), zap.Int("waiting", len(waiting)))
		}
	}
}
