/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package normalize

import "testing"

func TestNormalizeMultilingualFanOut(t *testing.T) {
	raw := map[string]any{
		"ProductDetails": map[string]any{
			"Name": "Blue Mug",
		},
	}
	family, _, err := Normalize(raw, "F001", "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(family.Name) != len(fanOutLanguages) {
		t.Fatalf("expected fan-out to %d languages, got %d", len(fanOutLanguages), len(family.Name))
	}
	for _, lang := range fanOutLanguages {
		if family.Name[lang] != "Blue Mug" {
			t.Fatalf("missing fan-out for %s", lang)
		}
	}
}

func TestNormalizeFamilyKeyPrefersANumber(t *testing.T) {
	raw := map[string]any{"ANumber": "REALKEY123"}
	family, _, err := Normalize(raw, "F001", "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if family.FamilyKey != "REALKEY123" {
		t.Fatalf("expected ANumber to win, got %s", family.FamilyKey)
	}
}

func TestNormalizeFamilyKeyFallsBackOnBareSupplierCode(t *testing.T) {
	raw := map[string]any{"ANumber": "A1234"}
	family, _, err := Normalize(raw, "F001", "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if family.FamilyKey != "F001" {
		t.Fatalf("expected fallback to parent sku, got %s", family.FamilyKey)
	}
}

func TestNormalizeCaseInsensitiveFieldCasing(t *testing.T) {
	raw := map[string]any{
		"productdetails": map[string]any{
			"name": "Red Cup",
		},
	}
	family, _, err := Normalize(raw, "F002", "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if family.Name["en"] != "Red Cup" {
		t.Fatalf("expected case-insensitive field match, got %+v", family.Name)
	}
}

func TestNormalizeVariantColorSize(t *testing.T) {
	raw := map[string]any{
		"ProductDetails": map[string]any{"Name": "Mug"},
		"ChildProducts": []any{
			map[string]any{
				"Sku": "V001",
				"ConfigurationFields": []any{
					map[string]any{"Name": "Color", "Value": "Red"},
					map[string]any{"Name": "Size", "Value": "M"},
				},
			},
		},
	}
	_, variants, err := Normalize(raw, "F003", "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(variants))
	}
	if variants[0].Color != "Red" || variants[0].Size != "M" {
		t.Fatalf("unexpected variant: %+v", variants[0])
	}
}

func TestNormalizeVariantHexColor(t *testing.T) {
	raw := map[string]any{
		"ProductDetails": map[string]any{"Name": "Mug"},
		"ChildProducts": []any{
			map[string]any{
				"Sku": "V001",
				"ConfigurationFields": []any{
					map[string]any{"Name": "Color", "Value": "Red"},
					map[string]any{"Name": "ColorCode", "Value": "#FF0000"},
				},
			},
		},
	}
	_, variants, err := Normalize(raw, "F005", "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(variants) != 1 || variants[0].HexColor != "#FF0000" {
		t.Fatalf("expected hex color #FF0000, got %+v", variants)
	}
}

func TestPriceTiersKeepsZeroPrice(t *testing.T) {
	raw := map[string]any{"price_1": 0.0}
	tiers := priceTiers(raw)
	if len(tiers) != 1 || tiers[0].Price != 0 {
		t.Fatalf("expected a single zero-price tier to survive, got %+v", tiers)
	}
}

func TestNormalizeDimensionsDropsNonPositive(t *testing.T) {
	raw := map[string]any{
		"NonLanguageDependedProductDetails": map[string]any{
			"Length": 10.5,
			"Width":  -3.0,
			"Height": 0,
		},
	}
	family, _, err := Normalize(raw, "F004", "ACME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if family.Dimensions.Length == nil || *family.Dimensions.Length != 10.5 {
		t.Fatalf("expected length 10.5, got %+v", family.Dimensions.Length)
	}
	if family.Dimensions.Width != nil {
		t.Fatalf("expected negative width to be dropped")
	}
	if family.Dimensions.Height != nil {
		t.Fatalf("expected zero height to be dropped")
	}
}
