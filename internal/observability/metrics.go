/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

// Package observability wires Prometheus metrics, OpenTelemetry tracing,
// and zap logging for the sync engine, grounded directly on the
// teacher's internal/controller/metrics.go (same registration pattern,
// metric kinds, and span-event helper), with agent-task-shaped metrics
// renamed to supplier/family/image-job concerns.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("syncengine")

var (
	FamiliesProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "syncengine_families_processed_total",
		Help: "Families processed by outcome (created, updated, skipped, failed).",
	}, []string{"supplier", "outcome"})

	SyncDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "syncengine_supplier_sync_duration_seconds",
		Help:    "Duration of a full supplier-sync job.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14), // 1s .. 8192s (~2.3h)
	}, []string{"supplier"})

	SkipEfficiency = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "syncengine_skip_efficiency_ratio",
		Help: "skipped/total families for the most recent supplier sync.",
	}, []string{"supplier"})

	ImageDedupHitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "syncengine_image_dedup_hit_total",
		Help: "Image jobs that hit an existing Media row vs. a fresh transfer.",
	}, []string{"outcome"})

	QueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "syncengine_queue_depth",
		Help: "Current job count per queue/state.",
	}, []string{"queue", "state"})

	LocksActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "syncengine_locks_active",
		Help: "Number of currently-held per-supplier sync locks.",
	})
)

func init() {
	prometheus.MustRegister(
		FamiliesProcessedTotal,
		SyncDuration,
		SkipEfficiency,
		ImageDedupHitTotal,
		QueueDepth,
		LocksActive,
	)
}

// EmitSyncEvent records a span event for one phase of a supplier sync,
// mirroring the teacher's emitTaskEvent helper. No component of the
// engine calls it (or StartSpan) yet.
func EmitSyncEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// StartSpan begins a new span for a sync phase under the shared tracer.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}
