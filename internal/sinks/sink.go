/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

// Package sinks implements the Downstream Sinks named in §2/§6: the
// full-text index and the semantic-search store, both reached as
// fire-and-forget upload targets. Grounded directly on the teacher's
// internal/vectorstore package (Store interface, functional-options
// factory), generalized from a single vector-store abstraction into two
// named sink roles that share the same shape.
package sinks

import "context"

// Document is one product's projection pushed to a sink. Embedding is
// only meaningful for the semantic sink; the full-text sink ignores it.
type Document struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]string
}

type SearchResult struct {
	Document Document
	Score    float32
}

// Index is the interface both the full-text and semantic sinks
// implement. Per §9 DN5, the product-family job handler calls Upsert
// on these explicitly after a successful upsert, logging rather than
// returning a sink error — there is no event-callback/observer
// machinery reaching back into C5.
type Index interface {
	Upsert(ctx context.Context, doc Document) error
	Search(ctx context.Context, query string, topK int, filter map[string]string) ([]SearchResult, error)
	Delete(ctx context.Context, id string) error
	Health(ctx context.Context) error
}

// Semantic is the same shape as Index; kept as a distinct name so
// callers (and DESIGN.md) can tell the two sink roles apart even though
// the Go type is structurally identical — per OQ2, accumulation of
// superseded entries here is tolerated indefinitely, no cleanup cron.
type Semantic = Index
