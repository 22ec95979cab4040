/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

// Package images implements C6: filename-based dedup, download, object
// store upload, Media-row insertion, and set-not-append attachment to
// the owning variant (and, on the first-variant path, the family's
// main_image), per §4.6.
package images

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/atlaspim/syncengine/internal/domain"
)

// Fetcher is C1's surface, narrowed to what C6 needs.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

// ObjectStore is the S3-compatible upload target named in §6.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (publicURL string, err error)
}

// MediaStore is the subset of the relational store C6 needs: lookup and
// insert of Media rows, and attachment of a media ref to its owner.
type MediaStore interface {
	FindMediaByFilename(ctx context.Context, filename string) (*domain.MediaRef, bool, error)
	InsertMedia(ctx context.Context, ref domain.MediaRef) error
	AttachToVariant(ctx context.Context, variantSKU string, ref domain.MediaRef, role domain.ImageRole) error
	SetFamilyMainImage(ctx context.Context, familyKey string, ref domain.MediaRef) error
}

const (
	defaultDownloadTimeout = 30 * time.Second
	largeMasterTimeout     = 60 * time.Second
)

// Pipeline processes one image job end-to-end, idempotently — a
// re-run of the same job must be safe (§4.6 "Idempotency").
type Pipeline struct {
	fetcher Fetcher
	store   ObjectStore
	media   MediaStore
}

func New(fetcher Fetcher, store ObjectStore, media MediaStore) *Pipeline {
	return &Pipeline{fetcher: fetcher, store: store, media: media}
}

// Process runs one ImageJob. On a dedup hit it reuses the existing Media
// row and never issues a download or PUT (P4).
func (p *Pipeline) Process(ctx context.Context, job domain.ImageJob) error {
	filename := DeriveFilename(job.SourceURL)

	ref, found, err := p.media.FindMediaByFilename(ctx, filename)
	if err != nil {
		return &domain.TransientStoreError{Op: "find media by filename", Cause: err}
	}

	if !found {
		ref, err = p.transfer(ctx, job.SourceURL, filename)
		if err != nil {
			return err
		}
	}

	if err := p.media.AttachToVariant(ctx, job.OwnerVariantSKU, *ref, job.Role); err != nil {
		return &domain.TransientStoreError{Op: "attach media to variant", Cause: err}
	}

	// Product main image: only from the first variant of the family,
	// and only for the primary role (§4.6). This runs on both the dedup
	// and the fresh-transfer path. On a dedup hit the reconciler's
	// post-upsert step has usually set it already (internal/reconciler
	// calls SetFamilyMainImage directly when it already has a resolved
	// MediaRef), so the write here repeats the same value.
	if job.IsFirstVariantOfFamily && job.Role == domain.ImageRolePrimary {
		if err := p.media.SetFamilyMainImage(ctx, job.FamilyKey, *ref); err != nil {
			return &domain.TransientStoreError{Op: "set family main image", Cause: err}
		}
	}

	return nil
}

func (p *Pipeline) transfer(ctx context.Context, sourceURL, filename string) (*domain.MediaRef, error) {
	timeout := defaultDownloadTimeout
	if isLikelyMaster(sourceURL) {
		timeout = largeMasterTimeout
	}

	body, err := p.fetcher.FetchBytes(ctx, sourceURL, timeout)
	if err != nil {
		return nil, err // already a *domain.UpstreamError
	}

	contentType := contentTypeFromExt(filename)
	publicURL, err := p.store.Put(ctx, filename, body, contentType)
	if err != nil {
		return nil, &domain.TransientStoreError{Op: "object store put", Cause: err}
	}

	sum := sha256.Sum256(body)
	ref := domain.MediaRef{
		Filename: filename,
		URL:      publicURL,
		Size:     int64(len(body)),
		Hash:     hex.EncodeToString(sum[:]),
	}
	if err := p.media.InsertMedia(ctx, ref); err != nil {
		return nil, &domain.TransientStoreError{Op: "insert media row", Cause: err}
	}
	return &ref, nil
}

// DeriveFilename derives the Media dedup key from a source URL: the
// last path segment, stripped of query parameters.
func DeriveFilename(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return path.Base(sourceURL)
	}
	return path.Base(u.Path)
}

func isLikelyMaster(sourceURL string) bool {
	lower := strings.ToLower(sourceURL)
	return strings.Contains(lower, "master") || strings.Contains(lower, "original")
}

func contentTypeFromExt(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
