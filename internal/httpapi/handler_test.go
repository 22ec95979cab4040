/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/atlaspim/syncengine/internal/domain"
	"github.com/atlaspim/syncengine/internal/jobs"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &domain.ValidationError{Field: "x", Reason: "bad"}, http.StatusBadRequest},
		{"conflict", &domain.ConflictError{Entity: "product", Key: "sku-1"}, http.StatusConflict},
		{"transient store", &domain.TransientStoreError{Op: "upsert"}, http.StatusServiceUnavailable},
		{"upstream", &domain.UpstreamError{URL: "https://example.test"}, http.StatusServiceUnavailable},
		{"unknown", errPlain("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusForError(tc.err); got != tc.want {
				t.Fatalf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }

func TestToJobSummaryDTOs(t *testing.T) {
	in := []jobs.JobSummary{
		{ID: "a", Queue: "product-family", State: "failed", Retried: 2, MaxRetry: 3, LastError: "boom"},
	}
	out := toJobSummaryDTOs(in)
	if len(out) != 1 || out[0].ID != "a" || out[0].LastError != "boom" {
		t.Fatalf("unexpected DTOs: %+v", out)
	}
}

func TestContainsFold(t *testing.T) {
	if !containsFold("AbCdEf", "cde") {
		t.Fatal("expected case-insensitive substring match")
	}
	if containsFold("abcdef", "zz") {
		t.Fatal("unexpected match")
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?page=3", nil)
	if got := queryInt(r, "page", 1); got != 3 {
		t.Fatalf("queryInt = %d, want 3", got)
	}
	if got := queryInt(r, "page_size", 20); got != 20 {
		t.Fatalf("queryInt default = %d, want 20", got)
	}
	r2 := httptest.NewRequest(http.MethodGet, "/x?page=nope", nil)
	if got := queryInt(r2, "page", 1); got != 1 {
		t.Fatalf("queryInt on bad input = %d, want fallback 1", got)
	}
}

func TestDecodeJSONBodyToleratesEmptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/x", nil)
	var dst struct{ N int }
	if err := decodeJSONBody(r, &dst); err != nil {
		t.Fatalf("unexpected error on empty body: %v", err)
	}
}

func TestHealthzOK(t *testing.T) {
	h := &Handler{rateLimiter: NewRateLimiter(0), logger: zap.NewNop()}
	w := httptest.NewRecorder()
	h.healthz(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", w.Code)
	}
}

func TestGuardedRejectsMissingToken(t *testing.T) {
	h := &Handler{authToken: "secret", rateLimiter: NewRateLimiter(0), logger: zap.NewNop()}
	called := false
	guarded := h.guarded(func(w http.ResponseWriter, r *http.Request) { called = true })

	w := httptest.NewRecorder()
	guarded.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sync/active", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if called {
		t.Fatal("wrapped handler should not run without a valid token")
	}
}

func TestGuardedRejectsWrongToken(t *testing.T) {
	h := &Handler{authToken: "secret", rateLimiter: NewRateLimiter(0), logger: zap.NewNop()}
	guarded := h.guarded(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/sync/active", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	guarded.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestGuardedAllowsCorrectToken(t *testing.T) {
	h := &Handler{authToken: "secret", rateLimiter: NewRateLimiter(0), logger: zap.NewNop()}
	called := false
	guarded := h.guarded(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/sync/active", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	guarded.ServeHTTP(w, req)

	if !called {
		t.Fatal("expected wrapped handler to run with a valid token")
	}
}

func TestGuardedEnforcesRateLimit(t *testing.T) {
	h := &Handler{rateLimiter: NewRateLimiter(1), logger: zap.NewNop()}
	guarded := h.guarded(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/sync/active", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	w1 := httptest.NewRecorder()
	guarded.ServeHTTP(w1, req)
	if w1.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", w1.Code)
	}

	w2 := httptest.NewRecorder()
	guarded.ServeHTTP(w2, req)
	if w2.Code != http.StatusForbidden {
		t.Fatalf("second request status = %d, want 403 (rate limited)", w2.Code)
	}
}
