/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package httpapi

import "github.com/atlaspim/syncengine/internal/jobs"

// StartSyncRequest is the POST /sync/start body: either a single
// supplier or, when SupplierID is empty, every active supplier.
type StartSyncRequest struct {
	SupplierID string `json:"supplier_id,omitempty"`
}

// StartSyncResponse matches §6's `{mode:"queued", job_ids[]}` contract.
type StartSyncResponse struct {
	Mode    string   `json:"mode"`
	JobIDs  []string `json:"job_ids"`
}

// ActiveSyncsResponse lists supplier ids with a currently-held lock.
type ActiveSyncsResponse struct {
	SupplierIDs []string `json:"supplier_ids"`
}

// StopSyncResponse is always success per §6 ("regardless of whether a
// sync is actually running").
type StopSyncResponse struct {
	Success bool `json:"success"`
}

// QueueStats is one queue's counters, per §6 `/queues/stats`.
type QueueStats struct {
	Queue     string `json:"queue"`
	Waiting   int    `json:"waiting"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Delayed   int    `json:"delayed"`
	Paused    bool   `json:"paused"`
}

// JobListResponse is the paginated job-list envelope.
type JobListResponse struct {
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Jobs     []JobSummaryDTO `json:"jobs"`
}

// JobSummaryDTO mirrors jobs.JobSummary for the wire.
type JobSummaryDTO struct {
	ID        string         `json:"id"`
	Queue     string         `json:"queue"`
	State     string         `json:"state"`
	Retried   int            `json:"retried"`
	MaxRetry  int            `json:"max_retry"`
	LastError string         `json:"last_error,omitempty"`
	Progress  *jobs.Progress `json:"progress,omitempty"`
}

// CleanRequest is the POST /queues/{queue}/clean body.
type CleanRequest struct {
	GraceMS int64  `json:"grace_ms"`
	Status  string `json:"status"`
}

// RetryFailedRequest is the POST /queues/{queue}/retry-failed body.
type RetryFailedRequest struct {
	N int `json:"n,omitempty"`
}

// RetryFailedResponse reports how many jobs were re-queued.
type RetryFailedResponse struct {
	Retried int `json:"retried"`
}

// ErrorResponse is the uniform error envelope for every non-2xx
// response, mirroring the teacher's OpenAI-compatible error shape
// generalized to this domain's vocabulary.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}
