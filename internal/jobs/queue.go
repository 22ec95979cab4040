/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

// Package jobs implements C7: three persistent, bounded-concurrency
// queues (supplier-sync, product-family, image-upload) with retries,
// progress reporting, and cooperative cancellation, per §4.7. Built on
// asynq over Redis, whose waiting/active/retry/archived task states are
// the Go-ecosystem equivalent of the BullMQ semantics §6 requires.
package jobs

import "time"

// Queue names, matching §4.7's table exactly.
const (
	QueueSupplierSync  = "supplier-sync"
	QueueProductFamily = "product-family"
	QueueImageUpload   = "image-upload"
)

// Task type names registered with the asynq mux.
const (
	TaskSupplierSync  = "sync:supplier"
	TaskProductFamily = "sync:family"
	TaskImageUpload   = "sync:image"
)

const (
	ConcurrencySuppliers = 1
	ConcurrencyFamilies  = 3
	ConcurrencyImages    = 10

	TimeoutSupplier = 30 * time.Minute
	TimeoutFamily   = 5 * time.Minute
	TimeoutImage    = 2 * time.Minute

	maxRetries      = 3
	retryBaseDelay  = 2 * time.Second
)

// Step names for a supplier job's progress reporting, in execution
// order, per §4.7.
const (
	StepParseManifest   = "parse_manifest"
	StepFetchVariants   = "fetch_variants"
	StepGroup           = "group"
	StepBatchHashCheck  = "batch_hash_check"
	StepEnqueueFamilies = "enqueue_families"
	StepDone            = "done"
)

// Progress is the {step, percent} pair reported on every job per §4.7.
type Progress struct {
	Step    string `json:"step"`
	Percent int    `json:"percent"`
}
