/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atlaspim/syncengine/internal/domain"
)

// State names accepted by the control surface's job-listing endpoint,
// mapped onto asynq's task states.
const (
	StateWaiting   = "waiting"
	StateActive    = "active"
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateDelayed   = "delayed"
)

var validQueues = map[string]bool{QueueSupplierSync: true, QueueProductFamily: true, QueueImageUpload: true}
var validStates = map[string]bool{StateWaiting: true, StateActive: true, StateCompleted: true, StateFailed: true, StateDelayed: true}

// JobSummary is the control surface's list-item shape.
type JobSummary struct {
	ID        string    `json:"id"`
	Queue     string    `json:"queue"`
	State     string    `json:"state"`
	Retried   int       `json:"retried"`
	MaxRetry  int       `json:"max_retry"`
	LastError string    `json:"last_error,omitempty"`
	Progress  *Progress `json:"progress,omitempty"`
}

// progressFromResult decodes a task's last reported {step, percent} pair
// from its asynq ResultWriter payload, per §4.7. A task that never called
// ResultWriter.Write (or one whose result isn't a Progress) has no
// progress to report yet.
func progressFromResult(result []byte) *Progress {
	if len(result) == 0 {
		return nil
	}
	var p Progress
	if err := json.Unmarshal(result, &p); err != nil || p.Step == "" {
		return nil
	}
	return &p
}

// JobDetail is the full single-job view, including payload and
// stacktrace-equivalent (asynq's last-failure message).
type JobDetail struct {
	JobSummary
	Payload   []byte    `json:"payload"`
	NextRetry time.Time `json:"next_retry,omitempty"`
}

// Admin wraps an asynq.Inspector with the operations named in §4.7 and
// exposed by the §6 control surface.
type Admin struct {
	inspector *asynq.Inspector
}

func NewAdmin(redisOpt asynq.RedisConnOpt) *Admin {
	return &Admin{inspector: asynq.NewInspector(redisOpt)}
}

func (a *Admin) Close() error { return a.inspector.Close() }

// ValidateQueueAndState rejects unknown queue names and job states
// before touching the store, per §4.8's admin-endpoint input
// validation requirement.
func ValidateQueueAndState(queue, state string) error {
	if queue != "" && !validQueues[queue] {
		return &domain.ValidationError{Field: "queue", Reason: fmt.Sprintf("unknown queue %q", queue)}
	}
	if state != "" && !validStates[state] {
		return &domain.ValidationError{Field: "state", Reason: fmt.Sprintf("unknown state %q", state)}
	}
	return nil
}

// ValidatePagination enforces page >= 1 and page_size in [1,100].
func ValidatePagination(page, pageSize int) error {
	if page < 1 {
		return &domain.ValidationError{Field: "page", Reason: "must be >= 1"}
	}
	if pageSize < 1 || pageSize > 100 {
		return &domain.ValidationError{Field: "page_size", Reason: "must be in [1,100]"}
	}
	return nil
}

// ListJobs lists jobs in one queue/state with pagination.
func (a *Admin) ListJobs(queue, state string, page, pageSize int) ([]JobSummary, error) {
	if err := ValidateQueueAndState(queue, state); err != nil {
		return nil, err
	}
	if err := ValidatePagination(page, pageSize); err != nil {
		return nil, err
	}

	pageOpt := asynq.PageSize(pageSize)
	pageNumOpt := asynq.Page(page)

	var out []JobSummary
	switch state {
	case StateActive:
		tasks, err := a.inspector.ListActiveTasks(queue, pageOpt, pageNumOpt)
		if err != nil {
			return nil, &domain.TransientStoreError{Op: "list active tasks", Cause: err}
		}
		for _, t := range tasks {
			out = append(out, JobSummary{ID: t.ID, Queue: t.Queue, State: StateActive, Retried: t.Retried, MaxRetry: t.MaxRetry, Progress: progressFromResult(t.Result)})
		}
	case StateFailed:
		// Archived, not retry: archived tasks exhausted their retries and
		// are the terminal "failed" state; retry tasks are merely waiting
		// on their next scheduled attempt.
		tasks, err := a.inspector.ListArchivedTasks(queue, pageOpt, pageNumOpt)
		if err != nil {
			return nil, &domain.TransientStoreError{Op: "list archived tasks", Cause: err}
		}
		for _, t := range tasks {
			out = append(out, JobSummary{ID: t.ID, Queue: t.Queue, State: StateFailed, Retried: t.Retried, MaxRetry: t.MaxRetry, LastError: t.LastErr, Progress: progressFromResult(t.Result)})
		}
	case StateCompleted:
		tasks, err := a.inspector.ListCompletedTasks(queue, pageOpt, pageNumOpt)
		if err != nil {
			return nil, &domain.TransientStoreError{Op: "list completed tasks", Cause: err}
		}
		for _, t := range tasks {
			out = append(out, JobSummary{ID: t.ID, Queue: t.Queue, State: StateCompleted, Retried: t.Retried, MaxRetry: t.MaxRetry, Progress: progressFromResult(t.Result)})
		}
	case StateDelayed:
		tasks, err := a.inspector.ListScheduledTasks(queue, pageOpt, pageNumOpt)
		if err != nil {
			return nil, &domain.TransientStoreError{Op: "list scheduled tasks", Cause: err}
		}
		for _, t := range tasks {
			out = append(out, JobSummary{ID: t.ID, Queue: t.Queue, State: StateDelayed, Retried: t.Retried, MaxRetry: t.MaxRetry})
		}
	default:
		tasks, err := a.inspector.ListPendingTasks(queue, pageOpt, pageNumOpt)
		if err != nil {
			return nil, &domain.TransientStoreError{Op: "list pending tasks", Cause: err}
		}
		for _, t := range tasks {
			out = append(out, JobSummary{ID: t.ID, Queue: t.Queue, State: StateWaiting, Retried: t.Retried, MaxRetry: t.MaxRetry})
		}
	}
	return out, nil
}

// GetJob returns the full detail of one job, including payload.
func (a *Admin) GetJob(queue, id string) (*JobDetail, error) {
	info, err := a.inspector.GetTaskInfo(queue, id)
	if err != nil {
		return nil, &domain.TransientStoreError{Op: "get task info", Cause: err}
	}
	return &JobDetail{
		JobSummary: JobSummary{ID: info.ID, Queue: info.Queue, Retried: info.Retried, MaxRetry: info.MaxRetry, LastError: info.LastErr, Progress: progressFromResult(info.Result)},
		Payload:    info.Payload,
		NextRetry:  info.NextProcessAt,
	}, nil
}

// RetryJob resets one failed job's attempts and re-queues it.
func (a *Admin) RetryJob(queue, id string) error {
	if err := a.inspector.RunTask(queue, id); err != nil {
		return &domain.TransientStoreError{Op: "retry task", Cause: err}
	}
	return nil
}

// BulkRetry retries up to n failed jobs in a queue.
func (a *Admin) BulkRetry(queue string, n int) (int, error) {
	if n <= 0 {
		n = 100
	}
	tasks, err := a.inspector.ListArchivedTasks(queue, asynq.PageSize(n), asynq.Page(1))
	if err != nil {
		return 0, &domain.TransientStoreError{Op: "list archived tasks for bulk retry", Cause: err}
	}
	retried := 0
	for _, t := range tasks {
		if err := a.inspector.RunTask(queue, t.ID); err == nil {
			retried++
		}
	}
	return retried, nil
}

func (a *Admin) DeleteJob(queue, id string) error {
	if err := a.inspector.DeleteTask(queue, id); err != nil {
		return &domain.TransientStoreError{Op: "delete task", Cause: err}
	}
	return nil
}

func (a *Admin) PauseQueue(queue string) error {
	if err := a.inspector.PauseQueue(queue); err != nil {
		return &domain.TransientStoreError{Op: "pause queue", Cause: err}
	}
	return nil
}

func (a *Admin) ResumeQueue(queue string) error {
	if err := a.inspector.UnpauseQueue(queue); err != nil {
		return &domain.TransientStoreError{Op: "resume queue", Cause: err}
	}
	return nil
}

// Clean evicts completed/failed jobs older than grace.
func (a *Admin) Clean(queue string, grace time.Duration, status string) (int, error) {
	cutoff := time.Now().Add(-grace)
	cleaned := 0

	var tasks []*asynq.TaskInfo
	var err error
	switch status {
	case StateFailed:
		tasks, err = a.inspector.ListArchivedTasks(queue, asynq.PageSize(1000))
	default:
		tasks, err = a.inspector.ListCompletedTasks(queue, asynq.PageSize(1000))
	}
	if err != nil {
		return 0, &domain.TransientStoreError{Op: "list tasks for clean", Cause: err}
	}
	for _, t := range tasks {
		// Archived (failed) tasks carry no CompletedAt; their age runs
		// from the last failure instead.
		finishedAt := t.CompletedAt
		if status == StateFailed {
			finishedAt = t.LastFailedAt
		}
		if finishedAt.Before(cutoff) || finishedAt.IsZero() {
			if err := a.inspector.DeleteTask(queue, t.ID); err == nil {
				cleaned++
			}
		}
	}
	return cleaned, nil
}

// IsPaused reports whether a queue is currently paused.
func (a *Admin) IsPaused(queue string) (bool, error) {
	info, err := a.inspector.GetQueueInfo(queue)
	if err != nil {
		return false, &domain.TransientStoreError{Op: "get queue info", Cause: err}
	}
	return info.Paused, nil
}

// Drain removes every job in the queue regardless of age — dangerous,
// admin-only per §4.7.
func (a *Admin) Drain(queue string) error {
	if _, err := a.inspector.DeleteAllPendingTasks(queue); err != nil {
		return &domain.TransientStoreError{Op: "drain pending", Cause: err}
	}
	if _, err := a.inspector.DeleteAllScheduledTasks(queue); err != nil {
		return &domain.TransientStoreError{Op: "drain scheduled", Cause: err}
	}
	if _, err := a.inspector.DeleteAllRetryTasks(queue); err != nil {
		return &domain.TransientStoreError{Op: "drain retry", Cause: err}
	}
	if _, err := a.inspector.DeleteAllArchivedTasks(queue); err != nil {
		return &domain.TransientStoreError{Op: "drain archived", Cause: err}
	}
	if _, err := a.inspector.DeleteAllCompletedTasks(queue); err != nil {
		return &domain.TransientStoreError{Op: "drain completed", Cause: err}
	}
	return nil
}
