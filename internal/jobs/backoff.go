/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package jobs

import (
	"math/rand"
	"time"

	"github.com/hibiken/asynq"
)

// ComputeBackoff returns the delay before the nth retry: exponential
// from retryBaseDelay, doubling per attempt, with ±25% jitter. Ported
// from the teacher's AgentTaskReconciler.computeBackoff, generalized
// from pod-retry backoff to job-retry backoff — same shape, same
// jitter fraction, new caller.
func ComputeBackoff(attempt int) time.Duration {
	base := retryBaseDelay
	for i := 1; i < attempt; i++ {
		base *= 2
	}
	jitter := 1 + (rand.Float64()*0.5 - 0.25) // nolint:gosec
	return time.Duration(float64(base) * jitter)
}

// RetryDelayFunc adapts ComputeBackoff to asynq's per-server retry-delay
// hook, so every queue in the pipeline shares one backoff policy
// instead of each worker re-deriving it.
func RetryDelayFunc(n int, e error, t *asynq.Task) time.Duration {
	return ComputeBackoff(n + 1)
}
