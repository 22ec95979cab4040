/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package domain

import "fmt"

// UpstreamError is raised by internal/upstream once its retry budget is
// exhausted: network failure, 5xx, or timeout.
type UpstreamError struct {
	URL        string
	Attempts   int
	LastStatus int
	Cause      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream fetch failed: url=%s attempts=%d last_status=%d: %v",
		e.URL, e.Attempts, e.LastStatus, e.Cause)
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

// ValidationError marks a malformed document or a missing mandatory
// field. Not retried; the owning family is skipped and the error is
// recorded in the family job's error list.
type ValidationError struct {
	FamilyKey string
	Field     string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: family=%s field=%s: %s", e.FamilyKey, e.Field, e.Reason)
}

// ConflictError marks a unique-key violation during upsert. Retried
// once after re-reading the conflicting row; escalated to a FamilyError
// on repeat.
type ConflictError struct {
	Entity string
	Key    string
	Cause  error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict upserting %s (key=%s): %v", e.Entity, e.Key, e.Cause)
}

func (e *ConflictError) Unwrap() error { return e.Cause }

// TransientStoreError marks a deadlock or connection reset on the
// database or queue. Retried per queue policy.
type TransientStoreError struct {
	Op    string
	Cause error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store error during %s: %v", e.Op, e.Cause)
}

func (e *TransientStoreError) Unwrap() error { return e.Cause }

// CancelledError is not a failure: it marks that a stop signal was
// observed at a safe point and the job completed with processed < total.
type CancelledError struct {
	Processed int
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("sync cancelled after processing %d", e.Processed)
}

// ConfigError marks missing or invalid environment configuration. Fatal
// at startup; callers exit(1).
type ConfigError struct {
	Var    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Var, e.Reason)
}

// FamilyError captures a single family's failure without aborting its
// siblings; the containing supplier job accumulates these and reports
// partial success per §7.
type FamilyError struct {
	FamilyKey string
	Phase     string
	Cause     error
}

func (e *FamilyError) Error() string {
	return fmt.Sprintf("family %s failed in phase %s: %v", e.FamilyKey, e.Phase, e.Cause)
}

func (e *FamilyError) Unwrap() error { return e.Cause }

// IsRetryable classifies an error as retryable or not by its type.
// C1's backoff loop and C7's job retry policy do not call it: C1
// decides from the HTTP status, and asynq retries a failed job up to
// its MaxRetry whatever the error type.
func IsRetryable(err error) bool {
	switch err.(type) {
	case *UpstreamError:
		return true
	case *TransientStoreError:
		return true
	case *ConflictError:
		return true
	case *ValidationError, *ConfigError, *CancelledError:
		return false
	default:
		return false
	}
}
