/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/atlaspim/syncengine/internal/domain"
)

// Enqueuer wraps an asynq.Client with the three typed enqueue
// operations the rest of the engine calls. Kept as an explicit,
// narrowly-scoped handle per DN1 — callers never reach a bare
// *asynq.Client or a global queue singleton.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(redisOpt asynq.RedisConnOpt) *Enqueuer {
	return &Enqueuer{client: asynq.NewClient(redisOpt)}
}

func (e *Enqueuer) Close() error { return e.client.Close() }

func (e *Enqueuer) EnqueueSupplierSync(ctx context.Context, p SupplierSyncPayload) (string, error) {
	payload, err := marshalPayload(p)
	if err != nil {
		return "", err
	}
	id := NewJobID("supplier", p.SupplierID)
	task := asynq.NewTask(TaskSupplierSync, payload, asynq.TaskID(id), asynq.Queue(QueueSupplierSync),
		asynq.MaxRetry(maxRetries), asynq.Timeout(TimeoutSupplier))
	return e.enqueue(ctx, task, id)
}

func (e *Enqueuer) EnqueueProductFamily(ctx context.Context, p ProductFamilyPayload) (string, error) {
	payload, err := marshalPayload(p)
	if err != nil {
		return "", err
	}
	id := NewJobID("family", p.FamilyKey)
	task := asynq.NewTask(TaskProductFamily, payload, asynq.TaskID(id), asynq.Queue(QueueProductFamily),
		asynq.MaxRetry(maxRetries), asynq.Timeout(TimeoutFamily))
	return e.enqueue(ctx, task, id)
}

func (e *Enqueuer) EnqueueImageUpload(ctx context.Context, p ImageUploadPayload) (string, error) {
	payload, err := marshalPayload(p)
	if err != nil {
		return "", err
	}
	id := NewJobID("image", p.OwnerVariantSKU)
	task := asynq.NewTask(TaskImageUpload, payload, asynq.TaskID(id), asynq.Queue(QueueImageUpload),
		asynq.MaxRetry(maxRetries), asynq.Timeout(TimeoutImage))
	return e.enqueue(ctx, task, id)
}

func (e *Enqueuer) enqueue(ctx context.Context, task *asynq.Task, id string) (string, error) {
	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		if err == asynq.ErrTaskIDConflict {
			// At-least-once delivery: a retry of an enqueue call that
			// already succeeded is not an error (§4.7 idempotent handlers).
			return id, nil
		}
		return "", &domain.TransientStoreError{Op: fmt.Sprintf("enqueue %s", task.Type()), Cause: err}
	}
	return info.ID, nil
}
