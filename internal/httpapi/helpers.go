/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/atlaspim/syncengine/internal/domain"
	"github.com/atlaspim/syncengine/internal/jobs"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Message: message, Code: code}})
}

// statusForError maps the engine's typed errors to the status codes
// fixed by §6: 400 validation, 409 conflict/lock-held, 503 dependency
// unreachable, 500 otherwise. No error type maps to 404.
func statusForError(err error) int {
	switch err.(type) {
	case *domain.ValidationError:
		return http.StatusBadRequest
	case *domain.ConflictError:
		return http.StatusConflict
	case *domain.TransientStoreError:
		return http.StatusServiceUnavailable
	case *domain.UpstreamError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func toJobSummaryDTOs(in []jobs.JobSummary) []JobSummaryDTO {
	out := make([]JobSummaryDTO, 0, len(in))
	for _, j := range in {
		out = append(out, JobSummaryDTO{
			ID: j.ID, Queue: j.Queue, State: j.State,
			Retried: j.Retried, MaxRetry: j.MaxRetry, LastError: j.LastError,
			Progress: j.Progress,
		})
	}
	return out
}

// decodeJSONBody decodes a JSON request body, tolerating an empty body
// (leaves dst at its zero value) since several endpoints here treat a
// missing body as "use defaults".
func decodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return &domain.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
