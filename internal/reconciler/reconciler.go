/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

// Package reconciler implements C5: batch hash comparison, atomic
// family-scoped upsert, derived-aggregate computation, and SKU-collision
// re-parenting, per §4.5.
package reconciler

import (
	"context"
	"sort"

	"github.com/atlaspim/syncengine/internal/domain"
)

// Store is the relational-store contract the Reconciler needs. Kept
// narrow and explicit per DN1 (§9): no ambient global database handle,
// every component receives exactly the typed handle it uses.
type Store interface {
	// LookupHashes performs the single bulk lookup required by
	// filter_for_sync: family_key -> stored promidata_hash, for exactly
	// the keys requested. Absent keys mean "new family".
	LookupHashes(ctx context.Context, supplierCode string, familyKeys []string) (map[string]string, error)

	// FindVariantFamily returns the family_key currently owning sku, if
	// any, used for the SKU-collision re-parenting rule.
	FindVariantFamily(ctx context.Context, sku string) (familyKey string, found bool, err error)

	// UpsertFamily performs the entire family-scoped transaction: the
	// product row, all variant rows (re-parenting on SKU collision),
	// and the derived-aggregate write, atomically. On any failure it
	// must leave promidata_hash at its previous value (compensating
	// rollback) so the next sync re-attempts the family.
	UpsertFamily(ctx context.Context, group domain.FamilyGroup) (*UpsertResult, error)
}

// ProcessResult is filter_for_sync's return value.
type ProcessResult struct {
	ToProcess    []domain.FamilyGroup
	SkippedCount int
	Efficiency   float64
}

// UpsertResult is upsert_family's return value.
type UpsertResult struct {
	FamilyKey       string
	Created         bool
	VariantResults  []VariantResult
}

type VariantResult struct {
	SKU              string
	IsPrimaryForColor bool
	Reparented       bool
}

// FilterForSync performs the single bulk lookup of §4.5 and classifies
// every incoming family as new, changed, or unchanged.
func FilterForSync(ctx context.Context, store Store, supplierCode string, groups []domain.FamilyGroup) (ProcessResult, error) {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Family.FamilyKey
	}

	stored, err := store.LookupHashes(ctx, supplierCode, keys)
	if err != nil {
		return ProcessResult{}, &domain.TransientStoreError{Op: "lookup hashes", Cause: err}
	}

	var result ProcessResult
	for _, g := range groups {
		storedHash, exists := stored[g.Family.FamilyKey]
		if exists && storedHash == g.ContentHash {
			result.SkippedCount++
			continue
		}
		result.ToProcess = append(result.ToProcess, g)
	}

	total := len(groups)
	if total > 0 {
		result.Efficiency = float64(result.SkippedCount) / float64(total)
	}
	return result, nil
}

// UpsertFamily delegates to the store's atomic family transaction, but
// owns the pure bookkeeping rules the store must apply: primary-for-
// color assignment and SKU-collision re-parenting (§4.5).
func UpsertFamily(ctx context.Context, store Store, group domain.FamilyGroup) (*UpsertResult, error) {
	if len(group.ColorGroups) == 0 {
		// "Family with zero variants -> reconciler skips; product is not
		// touched" (boundary behavior, §8).
		return nil, nil
	}

	// Primary-for-color (I5/P3) is carried positionally: ColorGroups was
	// built by grouping.Group, whose first variant per color is always
	// index 0. The store reads that position when writing
	// ProductVariant.IsPrimaryForColor, so there is nothing to mutate here.

	result, err := store.UpsertFamily(ctx, group)
	if err != nil {
		return nil, &domain.FamilyError{FamilyKey: group.Family.FamilyKey, Phase: "upsert", Cause: err}
	}
	return result, nil
}

// DerivedAggregates computes a Product's derived fields (I2) as a pure
// function of its current live variants and price tiers. Exported so
// the pgx-backed store and tests compute aggregates identically instead
// of duplicating the rule.
func DerivedAggregates(colorGroups []domain.ColorGroup, priceTiers []domain.PriceTier) (colors, sizes, hexColors []string, priceMin, priceMax *float64) {
	colorSet := map[string]bool{}
	sizeSet := map[string]bool{}
	hexSet := map[string]bool{}

	for _, cg := range colorGroups {
		if cg.Color != "" {
			colorSet[cg.Color] = true
		}
		for _, v := range cg.Variants {
			if v.Size != "" {
				sizeSet[v.Size] = true
			}
			if v.HexColor != "" {
				hexSet[v.HexColor] = true
			}
		}
	}

	colors = sortedKeys(colorSet)
	sizes = sortedKeys(sizeSet)
	hexColors = sortedKeys(hexSet)

	for _, t := range priceTiers {
		p := t.Price
		if priceMin == nil || p < *priceMin {
			v := p
			priceMin = &v
		}
		if priceMax == nil || p > *priceMax {
			v := p
			priceMax = &v
		}
	}
	return
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
