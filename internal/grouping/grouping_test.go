/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package grouping

import (
	"testing"

	"github.com/atlaspim/syncengine/internal/domain"
)

func TestGroupPrimaryIsFirstPerColor(t *testing.T) {
	variants := []domain.VariantRecord{
		{SKU: "V1", Color: "Red", Size: "S"},
		{SKU: "V2", Color: "Red", Size: "M"},
		{SKU: "V3", Color: "Blue", Size: "S"},
	}
	g := Group(domain.FamilyRecord{FamilyKey: "F1"}, variants)
	if len(g.ColorGroups) != 2 {
		t.Fatalf("expected 2 color groups, got %d", len(g.ColorGroups))
	}
	if g.ColorGroups[0].Color != "Red" || g.ColorGroups[0].Variants[0].SKU != "V1" {
		t.Fatalf("unexpected first color group: %+v", g.ColorGroups[0])
	}
}

func TestHashEqualityContract(t *testing.T) {
	a := domain.FamilyRecord{FamilyKey: "F1", Name: domain.MultilingualText{"en": "Mug", "de": "Tasse"}}
	b := domain.FamilyRecord{FamilyKey: "F1", Name: domain.MultilingualText{"de": "Tasse", "en": "Mug"}}
	if ContentHash(a) != ContentHash(b) {
		t.Fatal("expected map-key-order-independent hash equality")
	}
}

func TestHashChangesOnFieldChange(t *testing.T) {
	a := domain.FamilyRecord{FamilyKey: "F1", Name: domain.MultilingualText{"en": "Mug"}}
	b := domain.FamilyRecord{FamilyKey: "F1", Name: domain.MultilingualText{"en": "Cup"}}
	if ContentHash(a) == ContentHash(b) {
		t.Fatal("expected different hash for different content")
	}
}

func TestPriceTierOrderDoesNotAffectHash(t *testing.T) {
	a := domain.FamilyRecord{FamilyKey: "F1", PriceTiers: []domain.PriceTier{
		{Quantity: 10, Price: 5, Currency: "EUR", PriceType: domain.PriceTypeSelling},
		{Quantity: 1, Price: 10, Currency: "EUR", PriceType: domain.PriceTypeSelling},
	}}
	b := domain.FamilyRecord{FamilyKey: "F1", PriceTiers: []domain.PriceTier{
		{Quantity: 1, Price: 10, Currency: "EUR", PriceType: domain.PriceTypeSelling},
		{Quantity: 10, Price: 5, Currency: "EUR", PriceType: domain.PriceTypeSelling},
	}}
	if ContentHash(a) != ContentHash(b) {
		t.Fatal("expected price tier order independence")
	}
}
