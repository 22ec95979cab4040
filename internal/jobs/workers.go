/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/atlaspim/syncengine/internal/domain"
	"github.com/atlaspim/syncengine/internal/grouping"
	"github.com/atlaspim/syncengine/internal/images"
	"github.com/atlaspim/syncengine/internal/lockplane"
	"github.com/atlaspim/syncengine/internal/manifest"
	"github.com/atlaspim/syncengine/internal/normalize"
	"github.com/atlaspim/syncengine/internal/reconciler"
	"github.com/atlaspim/syncengine/internal/sinks"
)

// UpstreamFetcher is C1's surface, narrowed to what the supplier worker
// needs.
type UpstreamFetcher interface {
	FetchText(ctx context.Context, url string) ([]byte, error)
	FetchJSON(ctx context.Context, url string) ([]byte, error)
}

// Handlers wires C1-C6 and C8 together into the three asynq task
// handlers, implementing the control flow of SPEC_FULL.md §2: C8
// acquire lock -> C1 fetch manifest -> C2 parse -> C3 fetch & normalize
// -> C4 group & hash -> C5 batch hash check -> enqueue family jobs ->
// family workers run C3/C5/C6 -> enqueue image + sink jobs -> C8
// release lock.
type Handlers struct {
	upstream   UpstreamFetcher
	store      reconciler.Store
	images     *images.Pipeline
	locks      *lockplane.Locks
	enqueuer   *Enqueuer
	fulltext   sinks.Index
	semantic   sinks.Semantic
	logger     *zap.Logger
	baseURL    string
}

func NewHandlers(upstream UpstreamFetcher, store reconciler.Store, img *images.Pipeline,
	locks *lockplane.Locks, enqueuer *Enqueuer, fulltext, semantic sinks.Index,
	logger *zap.Logger, baseURL string) *Handlers {
	return &Handlers{
		upstream: upstream, store: store, images: img, locks: locks,
		enqueuer: enqueuer, fulltext: fulltext, semantic: semantic,
		logger: logger, baseURL: baseURL,
	}
}

// Register attaches every handler to an asynq.ServeMux with the
// concurrency caps of §4.7 — supplied by the caller via separate
// asynq.Server configs per queue, since asynq ties concurrency to the
// server, not the mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskSupplierSync, h.handleSupplierSync)
	mux.HandleFunc(TaskProductFamily, h.handleProductFamily)
	mux.HandleFunc(TaskImageUpload, h.handleImageUpload)
}

// reportProgress writes a {step, percent} pair to the task's asynq
// result, per §4.7. Write failures are logged, never escalated — losing
// a progress update is not a reason to fail the underlying sync.
func (h *Handlers) reportProgress(t *asynq.Task, log *zap.Logger, step string, percent int) {
	body, err := json.Marshal(Progress{Step: step, Percent: percent})
	if err != nil {
		return
	}
	if _, err := t.ResultWriter().Write(body); err != nil {
		log.Warn("failed to write job progress", zap.String("step", step), zap.Error(err))
	}
}

func (h *Handlers) handleSupplierSync(ctx context.Context, t *asynq.Task) error {
	var payload SupplierSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("%w", &domain.ValidationError{Field: "payload", Reason: err.Error()})
	}
	log := h.logger.With(zap.String("supplier_id", payload.SupplierID))

	holderID, acquired, err := h.locks.Acquire(ctx, payload.SupplierID)
	if err != nil {
		return err
	}
	if !acquired {
		// A concurrent duplicate start (S4): the lock is already held,
		// so this attempt must not run. The job still completes
		// (not-retried) rather than failing, since a second start isn't
		// an error condition per §6's 409/isRunning contract — that
		// rejection happens at the HTTP layer before enqueue.
		log.Info("lock already held, skipping duplicate supplier sync")
		return nil
	}
	defer func() {
		if err := h.locks.Release(ctx, payload.SupplierID, holderID); err != nil {
			log.Warn("failed to release supplier lock", zap.Error(err))
		}
		_ = h.locks.ClearStop(ctx, payload.SupplierID)
	}()

	h.reportProgress(t, log, StepParseManifest, 0)
	manifestURL := h.baseURL + "/Import/Import.txt"
	manifestBytes, err := h.upstream.FetchText(ctx, manifestURL)
	if err != nil {
		return err
	}
	entries := manifest.Parse(manifestBytes)

	h.reportProgress(t, log, StepFetchVariants, 10)
	var groups []domain.FamilyGroup
	processed, skipped := 0, 0

	for i, entry := range entries {
		if stopped, _ := h.locks.StopRequested(ctx, payload.SupplierID); stopped {
			log.Info("stop signal observed between family fetches", zap.Int("processed", processed))
			return nil // CancelledError semantics: job completes, not failed.
		}

		raw, err := h.upstream.FetchJSON(ctx, resolveURL(h.baseURL, entry.URL))
		if err != nil {
			log.Warn("family fetch failed, skipping", zap.String("sku", entry.SKU), zap.Error(err))
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Warn("malformed family document, skipping", zap.String("sku", entry.SKU), zap.Error(err))
			continue
		}

		family, variants, err := normalize.Normalize(doc, entry.SKU, entry.SupplierCode)
		if err != nil {
			log.Warn("normalization failed, skipping", zap.String("sku", entry.SKU), zap.Error(err))
			continue
		}
		if err := normalize.Validate(family, variants); err != nil {
			log.Warn("validation failed, skipping", zap.String("sku", entry.SKU), zap.Error(err))
			continue
		}

		groups = append(groups, grouping.Group(family, variants))
		_ = i
	}

	h.reportProgress(t, log, StepGroup, 40)

	h.reportProgress(t, log, StepBatchHashCheck, 55)
	result, err := reconciler.FilterForSync(ctx, h.store, payload.SupplierID, groups)
	if err != nil {
		return err
	}
	skipped = result.SkippedCount

	h.reportProgress(t, log, StepEnqueueFamilies, 70)
	for _, g := range result.ToProcess {
		if stopped, _ := h.locks.StopRequested(ctx, payload.SupplierID); stopped {
			log.Info("stop signal observed between family enqueues", zap.Int("processed", processed))
			return nil
		}
		variants := flattenVariants(g.ColorGroups)
		if _, err := h.enqueuer.EnqueueProductFamily(ctx, ProductFamilyPayload{
			SupplierID: payload.SupplierID,
			FamilyKey:  g.Family.FamilyKey,
			Variants:   variants,
			FamilyHash: g.ContentHash,
		}); err != nil {
			log.Warn("failed to enqueue family job", zap.String("family_key", g.Family.FamilyKey), zap.Error(err))
			continue
		}
		processed++
	}

	h.reportProgress(t, log, StepDone, 100)
	log.Info("supplier sync complete", zap.Int("processed", processed), zap.Int("skipped", skipped))
	return nil
}

func (h *Handlers) handleProductFamily(ctx context.Context, t *asynq.Task) error {
	var payload ProductFamilyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("%w", &domain.ValidationError{Field: "payload", Reason: err.Error()})
	}

	group := grouping.Group(domain.FamilyRecord{FamilyKey: payload.FamilyKey}, payload.Variants)
	group.ContentHash = payload.FamilyHash // precomputed upstream; avoid recompute drift

	result, err := reconciler.UpsertFamily(ctx, h.store, group)
	if err != nil {
		// FamilyError: recorded, does not abort sibling families — the
		// asynq task itself fails and is retried per queue policy, but
		// the caller (supplier job) already moved on to its siblings
		// since families are enqueued independently (§4.5/§7).
		return err
	}
	if result == nil {
		return nil // zero-variant family: skipped, nothing to do.
	}

	for _, cg := range group.ColorGroups {
		for i, v := range cg.Variants {
			if v.PrimaryImageURL != "" {
				if _, err := h.enqueuer.EnqueueImageUpload(ctx, ImageUploadPayload{
					SourceURL:              v.PrimaryImageURL,
					OwnerVariantSKU:        v.SKU,
					Role:                   string(domain.ImageRolePrimary),
					IsFirstVariantOfFamily: isFirstOfFamily(group, v.SKU),
					FamilyKey:              group.Family.FamilyKey,
				}); err != nil {
					return err
				}
			}
			for _, galleryURL := range v.GalleryImageURLs {
				if _, err := h.enqueuer.EnqueueImageUpload(ctx, ImageUploadPayload{
					SourceURL:       galleryURL,
					OwnerVariantSKU: v.SKU,
					Role:            string(domain.ImageRoleGallery),
					FamilyKey:       group.Family.FamilyKey,
				}); err != nil {
					return err
				}
			}
			_ = i
		}
	}

	// Sink fan-out (DN5, §9): explicit enqueue after a successful
	// upsert, no event callback reaching back into the Reconciler.
	doc := sinks.Document{ID: group.Family.FamilyKey, Content: renderSinkContent(group.Family)}
	if h.fulltext != nil {
		if err := h.fulltext.Upsert(ctx, doc); err != nil {
			h.logger.Warn("fulltext sink upsert failed (fire-and-forget)", zap.Error(err))
		}
	}
	if h.semantic != nil {
		if err := h.semantic.Upsert(ctx, doc); err != nil {
			h.logger.Warn("semantic sink upsert failed (fire-and-forget)", zap.Error(err))
		}
	}

	return nil
}

func (h *Handlers) handleImageUpload(ctx context.Context, t *asynq.Task) error {
	var payload ImageUploadPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("%w", &domain.ValidationError{Field: "payload", Reason: err.Error()})
	}
	job := domain.ImageJob{
		SourceURL:              payload.SourceURL,
		OwnerVariantSKU:        payload.OwnerVariantSKU,
		Role:                   domain.ImageRole(payload.Role),
		IsFirstVariantOfFamily: payload.IsFirstVariantOfFamily,
		FamilyKey:              payload.FamilyKey,
	}
	// Image job failures never fail the enclosing family job (§7) — that
	// guarantee holds because image jobs are enqueued independently, not
	// awaited by handleProductFamily.
	return h.images.Process(ctx, job)
}

func flattenVariants(groups []domain.ColorGroup) []domain.VariantRecord {
	var out []domain.VariantRecord
	for _, g := range groups {
		out = append(out, g.Variants...)
	}
	return out
}

func isFirstOfFamily(group domain.FamilyGroup, sku string) bool {
	if len(group.ColorGroups) == 0 || len(group.ColorGroups[0].Variants) == 0 {
		return false
	}
	return group.ColorGroups[0].Variants[0].SKU == sku
}

func renderSinkContent(f domain.FamilyRecord) string {
	return f.Name["en"] + " " + f.Description["en"]
}

func resolveURL(base, ref string) string {
	if len(ref) > 0 && (ref[0:1] == "h") && (len(ref) > 7) && (ref[:7] == "http://" || ref[:8] == "https://") {
		return ref
	}
	return base + "/" + ref
}
