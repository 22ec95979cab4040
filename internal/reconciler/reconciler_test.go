/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package reconciler

import (
	"context"
	"testing"

	"github.com/atlaspim/syncengine/internal/domain"
)

type fakeStore struct {
	hashes        map[string]string
	upsertCalls   int
	failNextUpsert bool
}

func (f *fakeStore) LookupHashes(ctx context.Context, supplierCode string, familyKeys []string) (map[string]string, error) {
	out := map[string]string{}
	for _, k := range familyKeys {
		if h, ok := f.hashes[k]; ok {
			out[k] = h
		}
	}
	return out, nil
}

func (f *fakeStore) FindVariantFamily(ctx context.Context, sku string) (string, bool, error) {
	return "", false, nil
}

func (f *fakeStore) UpsertFamily(ctx context.Context, group domain.FamilyGroup) (*UpsertResult, error) {
	f.upsertCalls++
	if f.failNextUpsert {
		return nil, &domain.TransientStoreError{Op: "test failure"}
	}
	_, existed := f.hashes[group.Family.FamilyKey]
	f.hashes[group.Family.FamilyKey] = group.ContentHash
	var vr []VariantResult
	for _, cg := range group.ColorGroups {
		for i, v := range cg.Variants {
			vr = append(vr, VariantResult{SKU: v.SKU, IsPrimaryForColor: i == 0})
		}
	}
	return &UpsertResult{FamilyKey: group.Family.FamilyKey, Created: !existed, VariantResults: vr}, nil
}

func mkGroup(key, hash string, variants []domain.VariantRecord) domain.FamilyGroup {
	family := domain.FamilyRecord{FamilyKey: key}
	g := domain.FamilyGroup{Family: family, ContentHash: hash}
	byColor := map[string][]domain.VariantRecord{}
	var order []string
	for _, v := range variants {
		if _, ok := byColor[v.Color]; !ok {
			order = append(order, v.Color)
		}
		byColor[v.Color] = append(byColor[v.Color], v)
	}
	for _, c := range order {
		g.ColorGroups = append(g.ColorGroups, domain.ColorGroup{Color: c, Variants: byColor[c]})
	}
	return g
}

// P1: unchanged manifest -> skipped == total, processed == 0.
func TestFilterForSyncSkipsUnchanged(t *testing.T) {
	store := &fakeStore{hashes: map[string]string{"F1": "H1"}}
	groups := []domain.FamilyGroup{mkGroup("F1", "H1", nil)}
	result, err := FilterForSync(context.Background(), store, "ACME", groups)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SkippedCount != 1 || len(result.ToProcess) != 0 {
		t.Fatalf("expected full skip, got %+v", result)
	}
	if result.Efficiency != 1.0 {
		t.Fatalf("expected efficiency 1.0, got %f", result.Efficiency)
	}
}

func TestFilterForSyncDetectsChange(t *testing.T) {
	store := &fakeStore{hashes: map[string]string{"F1": "H1"}}
	groups := []domain.FamilyGroup{mkGroup("F1", "H2", nil)}
	result, err := FilterForSync(context.Background(), store, "ACME", groups)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ToProcess) != 1 {
		t.Fatalf("expected changed family to be in ToProcess, got %+v", result)
	}
}

func TestFilterForSyncNewFamily(t *testing.T) {
	store := &fakeStore{hashes: map[string]string{}}
	groups := []domain.FamilyGroup{mkGroup("F1", "H1", nil)}
	result, err := FilterForSync(context.Background(), store, "ACME", groups)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ToProcess) != 1 || result.SkippedCount != 0 {
		t.Fatalf("expected new family to process, got %+v", result)
	}
}

// boundary: family with zero variants is skipped, product untouched.
func TestUpsertFamilySkipsZeroVariants(t *testing.T) {
	store := &fakeStore{hashes: map[string]string{}}
	group := mkGroup("F1", "H1", nil)
	result, err := UpsertFamily(context.Background(), store, group)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result for zero-variant family, got %+v", result)
	}
	if store.upsertCalls != 0 {
		t.Fatalf("expected no store calls for zero-variant family")
	}
}

func TestUpsertFamilyPrimaryForColor(t *testing.T) {
	store := &fakeStore{hashes: map[string]string{}}
	group := mkGroup("F1", "H1", []domain.VariantRecord{
		{SKU: "V1", Color: "Red"},
		{SKU: "V2", Color: "Red"},
	})
	result, err := UpsertFamily(context.Background(), store, group)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.VariantResults[0].IsPrimaryForColor || result.VariantResults[1].IsPrimaryForColor {
		t.Fatalf("expected only first variant primary, got %+v", result.VariantResults)
	}
}

// P6: failed upsert must not corrupt the stored hash.
func TestUpsertFamilyFailureLeavesHashUnchanged(t *testing.T) {
	store := &fakeStore{hashes: map[string]string{"F1": "H1"}, failNextUpsert: true}
	group := mkGroup("F1", "H2", []domain.VariantRecord{{SKU: "V1", Color: "Red"}})
	_, err := UpsertFamily(context.Background(), store, group)
	if err == nil {
		t.Fatal("expected error")
	}
	if store.hashes["F1"] != "H1" {
		t.Fatalf("expected hash to remain H1 on failure, got %s", store.hashes["F1"])
	}
}

func TestDerivedAggregatesPriceMinMax(t *testing.T) {
	tiers := []domain.PriceTier{{Price: 5}, {Price: 1}, {Price: 9}}
	_, _, _, min, max := DerivedAggregates(nil, tiers)
	if min == nil || *min != 1 {
		t.Fatalf("expected min 1, got %v", min)
	}
	if max == nil || *max != 9 {
		t.Fatalf("expected max 9, got %v", max)
	}
}

func TestDerivedAggregatesCollectsHexColors(t *testing.T) {
	groups := []domain.ColorGroup{
		{Color: "Red", Variants: []domain.VariantRecord{{SKU: "V1", HexColor: "#FF0000"}}},
		{Color: "Blue", Variants: []domain.VariantRecord{{SKU: "V2", HexColor: "#0000FF"}, {SKU: "V3", HexColor: "#0000FF"}}},
	}
	_, _, hex, _, _ := DerivedAggregates(groups, nil)
	if len(hex) != 2 || hex[0] != "#0000FF" || hex[1] != "#FF0000" {
		t.Fatalf("expected deduped sorted hex colors, got %v", hex)
	}
}
