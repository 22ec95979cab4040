/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package sinks

import "fmt"

// Option configures a sink constructed via New, mirroring the teacher's
// vectorstore functional-options pattern.
type Option func(*options)

type options struct {
	collection string
	dimension  int
}

func defaultOptions() options {
	return options{collection: "sync-engine-products", dimension: 768}
}

func WithCollection(name string) Option {
	return func(o *options) { o.collection = name }
}

func WithEmbeddingDimension(n int) Option {
	return func(o *options) { o.dimension = n }
}

// New builds a sink for the named provider. "fulltext" targets a
// Meilisearch/Typesense-style HTTP index; "semantic" targets a
// Qdrant-style vector store — both implemented by the same HTTPSink,
// since both are reached as plain JSON-over-HTTP upload targets from
// this engine's perspective (§6 treats the semantic store as opaque).
func New(provider, endpoint string, opts ...Option) (Index, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("sink endpoint is required")
	}
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	switch provider {
	case "fulltext", "semantic":
		return NewHTTPSink(endpoint, o.collection, o.dimension), nil
	default:
		return nil, fmt.Errorf("unknown sink provider %q", provider)
	}
}
