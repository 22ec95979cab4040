/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

// Package httpapi implements the control surface of §6: start/stop/
// inspect supplier syncs and the three job queues, over plain
// net/http. Ported from the teacher's internal/gateway package — same
// handler-struct-plus-ServeMux shape, same rate limiter and
// writeError envelope — with the Kubernetes AgentTask/dynamic-client
// plumbing replaced by this engine's Enqueuer/Admin/Locks handles,
// since the control surface here drives a job queue, not a CRD.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atlaspim/syncengine/internal/config"
	"github.com/atlaspim/syncengine/internal/jobs"
	"github.com/atlaspim/syncengine/internal/lockplane"
)

// HashClearer is the narrow store surface a full resync needs: wipe the
// stored content hash for every family of a supplier so the next sync
// treats all of them as changed (OQ3).
type HashClearer interface {
	ClearHashes(ctx context.Context, supplierCode string) error
}

// Handler serves the synchronization engine's control surface.
type Handler struct {
	enqueuer    *jobs.Enqueuer
	admin       *jobs.Admin
	locks       *lockplane.Locks
	flags       *config.SupplierFlagCache
	store       HashClearer
	rateLimiter *RateLimiter
	authToken   string
	logger      *zap.Logger

	// stats is the composition root's lockplane.StatsCache, wired in at
	// construction so the §6 "cached <=3s" requirement is met without a
	// second cache implementation inside this package. Nil is valid —
	// oneQueueStats just always misses.
	stats *lockplane.StatsCache
}

func New(enqueuer *jobs.Enqueuer, admin *jobs.Admin, locks *lockplane.Locks,
	flags *config.SupplierFlagCache, store HashClearer, rateLimiter *RateLimiter, authToken string,
	stats *lockplane.StatsCache, logger *zap.Logger) *Handler {
	return &Handler{
		enqueuer: enqueuer, admin: admin, locks: locks, flags: flags, store: store,
		rateLimiter: rateLimiter, authToken: authToken, stats: stats, logger: logger,
	}
}

// Mux builds the routed http.Handler for this control surface.
func (h *Handler) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.healthz)

	mux.Handle("POST /sync/start", h.guarded(h.startSync))
	mux.Handle("GET /sync/active", h.guarded(h.activeSyncs))
	mux.Handle("POST /sync/stop/{supplier_id}", h.guarded(h.stopSync))
	mux.Handle("POST /sync/resync/{supplier_id}", h.guarded(h.resyncSupplier))

	mux.Handle("GET /queues/stats", h.guarded(h.queueStatsAll))
	mux.Handle("GET /queues/stats/{queue}", h.guarded(h.queueStatsOne))
	mux.Handle("GET /queues/{queue}/jobs", h.guarded(h.listJobs))
	mux.Handle("GET /queues/{queue}/jobs/{id}", h.guarded(h.getJob))
	mux.Handle("POST /queues/{queue}/jobs/{id}/retry", h.guarded(h.retryJob))
	mux.Handle("POST /queues/{queue}/retry-failed", h.guarded(h.retryFailed))
	mux.Handle("DELETE /queues/{queue}/jobs/{id}", h.guarded(h.deleteJob))
	mux.Handle("POST /queues/{queue}/pause", h.guarded(h.pauseQueue))
	mux.Handle("POST /queues/{queue}/resume", h.guarded(h.resumeQueue))
	mux.Handle("POST /queues/{queue}/clean", h.guarded(h.cleanQueue))

	return mux
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// guarded wraps a route with authentication and rate limiting, the two
// cross-cutting concerns every admin endpoint shares per §6.
func (h *Handler) guarded(fn http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.authToken != "" {
			got := r.Header.Get("Authorization")
			if got != "Bearer "+h.authToken {
				writeError(w, http.StatusUnauthorized, "missing or invalid Authorization header", "invalid_api_key")
				return
			}
		}
		if !h.rateLimiter.Allow(ClientKey(r)) {
			writeError(w, http.StatusForbidden, "rate limit exceeded", "rate_limited")
			return
		}
		fn(w, r)
	})
}

func (h *Handler) startSync(w http.ResponseWriter, r *http.Request) {
	var req StartSyncRequest
	_ = decodeJSONBody(r, &req) // an empty/absent body means "all active suppliers"

	targets := []string{req.SupplierID}
	if req.SupplierID == "" {
		if err := h.flags.RefreshIfStale(r.Context()); err != nil {
			h.logger.Warn("supplier flag refresh failed", zap.Error(err))
		}
		targets = nil
		for _, code := range h.flags.Codes() {
			if sup, ok := h.flags.Get(code); ok && sup.IsActive {
				targets = append(targets, code)
			}
		}
	}

	var jobIDs []string
	for _, code := range targets {
		if code == "" {
			continue
		}
		locked, err := h.locks.IsLocked(r.Context(), code)
		if err != nil {
			writeError(w, statusForError(err), err.Error(), "lock_check_failed")
			return
		}
		if locked {
			if req.SupplierID != "" {
				// Single-supplier request against an already-running sync:
				// 409 per §6/S4.
				writeError(w, http.StatusConflict, "supplier sync already running", "already_running")
				return
			}
			continue // bulk start: skip suppliers already running, don't fail the batch
		}

		id, err := h.enqueuer.EnqueueSupplierSync(r.Context(), jobs.SupplierSyncPayload{SupplierID: code, Manual: true})
		if err != nil {
			writeError(w, statusForError(err), err.Error(), "enqueue_failed")
			return
		}
		jobIDs = append(jobIDs, id)
	}

	writeJSON(w, http.StatusOK, StartSyncResponse{Mode: "queued", JobIDs: jobIDs})
}

func (h *Handler) activeSyncs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.locks.ActiveLocks(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err.Error(), "lock_scan_failed")
		return
	}
	writeJSON(w, http.StatusOK, ActiveSyncsResponse{SupplierIDs: ids})
}

func (h *Handler) stopSync(w http.ResponseWriter, r *http.Request) {
	supplierID := r.PathValue("supplier_id")
	if err := h.locks.RequestStop(r.Context(), supplierID); err != nil {
		writeError(w, statusForError(err), err.Error(), "stop_request_failed")
		return
	}
	// Success regardless of whether a sync is actually running, per §6.
	writeJSON(w, http.StatusOK, StopSyncResponse{Success: true})
}

// resyncSupplier implements OQ3's full-resync path: clear every stored
// promidata_hash for the supplier, then enqueue a normal supplier-sync
// job — since every family now reads as changed, the run behaves as a
// full resync without a separate code path in internal/jobs.
func (h *Handler) resyncSupplier(w http.ResponseWriter, r *http.Request) {
	supplierID := r.PathValue("supplier_id")

	locked, err := h.locks.IsLocked(r.Context(), supplierID)
	if err != nil {
		writeError(w, statusForError(err), err.Error(), "lock_check_failed")
		return
	}
	if locked {
		writeError(w, http.StatusConflict, "supplier sync already running", "already_running")
		return
	}

	if err := h.store.ClearHashes(r.Context(), supplierID); err != nil {
		writeError(w, statusForError(err), err.Error(), "clear_hashes_failed")
		return
	}

	id, err := h.enqueuer.EnqueueSupplierSync(r.Context(), jobs.SupplierSyncPayload{SupplierID: supplierID, Manual: true})
	if err != nil {
		writeError(w, statusForError(err), err.Error(), "enqueue_failed")
		return
	}

	writeJSON(w, http.StatusOK, StartSyncResponse{Mode: "queued", JobIDs: []string{id}})
}

func (h *Handler) queueStatsAll(w http.ResponseWriter, r *http.Request) {
	stats := make([]QueueStats, 0, 3)
	for _, q := range []string{jobs.QueueSupplierSync, jobs.QueueProductFamily, jobs.QueueImageUpload} {
		s, err := h.oneQueueStats(r.Context(), q)
		if err != nil {
			writeError(w, statusForError(err), err.Error(), "stats_failed")
			return
		}
		stats = append(stats, s)
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) queueStatsOne(w http.ResponseWriter, r *http.Request) {
	queue := r.PathValue("queue")
	if err := jobs.ValidateQueueAndState(queue, ""); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_queue")
		return
	}
	s, err := h.oneQueueStats(r.Context(), queue)
	if err != nil {
		writeError(w, statusForError(err), err.Error(), "stats_failed")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// oneQueueStats goes through the composition root's StatsCache when one
// is configured, so concurrent requests for the same queue within the
// 3s window (§6) share a single round trip to Redis instead of each
// issuing five ListJobs calls.
func (h *Handler) oneQueueStats(ctx context.Context, queue string) (QueueStats, error) {
	if h.stats == nil {
		return h.fetchQueueStats(queue)
	}
	v, err := h.stats.GetOrFetch(ctx, queue, func(context.Context) (any, error) {
		return h.fetchQueueStats(queue)
	})
	if err != nil {
		return QueueStats{}, err
	}
	return v.(QueueStats), nil
}

func (h *Handler) fetchQueueStats(queue string) (QueueStats, error) {
	waiting, err := h.admin.ListJobs(queue, jobs.StateWaiting, 1, 1)
	if err != nil {
		return QueueStats{}, err
	}
	active, err := h.admin.ListJobs(queue, jobs.StateActive, 1, 1)
	if err != nil {
		return QueueStats{}, err
	}
	completed, err := h.admin.ListJobs(queue, jobs.StateCompleted, 1, 1)
	if err != nil {
		return QueueStats{}, err
	}
	failed, err := h.admin.ListJobs(queue, jobs.StateFailed, 1, 1)
	if err != nil {
		return QueueStats{}, err
	}
	delayed, err := h.admin.ListJobs(queue, jobs.StateDelayed, 1, 1)
	if err != nil {
		return QueueStats{}, err
	}
	paused, err := h.admin.IsPaused(queue)
	if err != nil {
		return QueueStats{}, err
	}
	return QueueStats{
		Queue: queue, Waiting: len(waiting), Active: len(active),
		Completed: len(completed), Failed: len(failed), Delayed: len(delayed), Paused: paused,
	}, nil
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	queue := r.PathValue("queue")
	state := r.URL.Query().Get("state")
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	if err := jobs.ValidateQueueAndState(queue, state); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_request")
		return
	}
	if err := jobs.ValidatePagination(page, pageSize); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_pagination")
		return
	}

	list, err := h.admin.ListJobs(queue, state, page, pageSize)
	if err != nil {
		writeError(w, statusForError(err), err.Error(), "list_failed")
		return
	}

	q := r.URL.Query().Get("q")
	if q != "" {
		list = filterJobs(list, q)
	}

	writeJSON(w, http.StatusOK, JobListResponse{Page: page, PageSize: pageSize, Jobs: toJobSummaryDTOs(list)})
}

// filterJobs applies the `q` match against job id and a fixed allow-
// list of payload fields (here: id only, since the payload itself is
// opaque JSON at this layer — full payload search happens client-side
// against GetJob's detail view).
func filterJobs(in []jobs.JobSummary, q string) []jobs.JobSummary {
	var out []jobs.JobSummary
	for _, j := range in {
		if containsFold(j.ID, q) {
			out = append(out, j)
		}
	}
	return out
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	queue, id := r.PathValue("queue"), r.PathValue("id")
	if err := jobs.ValidateQueueAndState(queue, ""); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_queue")
		return
	}
	detail, err := h.admin.GetJob(queue, id)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found", "job_not_found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) retryJob(w http.ResponseWriter, r *http.Request) {
	queue, id := r.PathValue("queue"), r.PathValue("id")
	if err := h.admin.RetryJob(queue, id); err != nil {
		writeError(w, http.StatusNotFound, "job not found or not retryable", "retry_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) retryFailed(w http.ResponseWriter, r *http.Request) {
	queue := r.PathValue("queue")
	var req RetryFailedRequest
	_ = decodeJSONBody(r, &req)

	n, err := h.admin.BulkRetry(queue, req.N)
	if err != nil {
		writeError(w, statusForError(err), err.Error(), "bulk_retry_failed")
		return
	}
	writeJSON(w, http.StatusOK, RetryFailedResponse{Retried: n})
}

func (h *Handler) deleteJob(w http.ResponseWriter, r *http.Request) {
	queue, id := r.PathValue("queue"), r.PathValue("id")
	if err := h.admin.DeleteJob(queue, id); err != nil {
		writeError(w, http.StatusNotFound, "job not found", "delete_failed")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) pauseQueue(w http.ResponseWriter, r *http.Request) {
	queue := r.PathValue("queue")
	if err := h.admin.PauseQueue(queue); err != nil {
		writeError(w, statusForError(err), err.Error(), "pause_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) resumeQueue(w http.ResponseWriter, r *http.Request) {
	queue := r.PathValue("queue")
	if err := h.admin.ResumeQueue(queue); err != nil {
		writeError(w, statusForError(err), err.Error(), "resume_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) cleanQueue(w http.ResponseWriter, r *http.Request) {
	queue := r.PathValue("queue")
	var req CleanRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_body")
		return
	}
	grace := time.Duration(req.GraceMS) * time.Millisecond
	n, err := h.admin.Clean(queue, grace, req.Status)
	if err != nil {
		writeError(w, statusForError(err), err.Error(), "clean_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"cleaned": n})
}

func containsFold(haystack, needle string) bool {
	return len(needle) == 0 || indexFold(haystack, needle) >= 0
}

func indexFold(haystack, needle string) int {
	hl, nl := len(haystack), len(needle)
	if nl == 0 {
		return 0
	}
	for i := 0; i+nl <= hl; i++ {
		if equalFold(haystack[i:i+nl], needle) {
			return i
		}
	}
	return -1
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
