/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package cron

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/atlaspim/syncengine/internal/config"
	"github.com/atlaspim/syncengine/internal/domain"
)

func TestNextOccurrenceIsInTheFuture(t *testing.T) {
	wait := nextOccurrence(2, 0)
	if wait <= 0 {
		t.Fatalf("expected a positive wait, got %v", wait)
	}
	if wait > 24*time.Hour {
		t.Fatalf("expected wait to be within one day, got %v", wait)
	}
}

func TestNextOccurrenceRollsToTomorrowWhenTimePassed(t *testing.T) {
	now := time.Now()
	pastHour, pastMinute := now.Add(-time.Minute).Hour(), now.Add(-time.Minute).Minute()

	wait := nextOccurrence(pastHour, pastMinute)
	if wait < 23*time.Hour {
		t.Fatalf("expected a next-day wait (~24h) for an already-passed time, got %v", wait)
	}
}

func TestActiveSuppliersFiltersByIsActive(t *testing.T) {
	suppliers := []domain.Supplier{
		{Code: "active-one", IsActive: true, AutoImport: true},
		{Code: "inactive-one", IsActive: false, AutoImport: true},
	}
	flags := config.NewSupplierFlagCache(func(ctx context.Context) ([]domain.Supplier, error) {
		return suppliers, nil
	}, time.Minute)

	s := NewScheduler(nil, nil, flags, []string{"active-one", "inactive-one", "unknown"}, zap.NewNop())

	active := s.activeSuppliers(context.Background())
	if len(active) != 1 || active[0] != "active-one" {
		t.Fatalf("expected only active-one, got %v", active)
	}
}

func TestFlagCacheReportsAutoImportPerSupplier(t *testing.T) {
	suppliers := []domain.Supplier{
		{Code: "auto", IsActive: true, AutoImport: true},
		{Code: "manual-only", IsActive: true, AutoImport: false},
	}
	flags := config.NewSupplierFlagCache(func(ctx context.Context) ([]domain.Supplier, error) {
		return suppliers, nil
	}, time.Minute)

	s := NewScheduler(nil, nil, flags, []string{"auto", "manual-only"}, zap.NewNop())
	if err := s.flags.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	sup, ok := s.flags.Get("manual-only")
	if !ok || sup.AutoImport {
		t.Fatalf("expected manual-only to have AutoImport=false, got %+v ok=%v", sup, ok)
	}
	sup, ok = s.flags.Get("auto")
	if !ok || !sup.AutoImport {
		t.Fatalf("expected auto to have AutoImport=true, got %+v ok=%v", sup, ok)
	}
}
