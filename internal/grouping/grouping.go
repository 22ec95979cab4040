/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

// Package grouping implements C4: partitioning normalized variants by
// family and color, and computing each family's stable content hash.
package grouping

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/atlaspim/syncengine/internal/domain"
)

// Group partitions variants by color within one family, preserving feed
// order within each color group. The first variant of each color is the
// designated primary per §4.4.
func Group(family domain.FamilyRecord, variants []domain.VariantRecord) domain.FamilyGroup {
	order := make([]string, 0)
	byColor := make(map[string][]domain.VariantRecord)
	for _, v := range variants {
		if _, seen := byColor[v.Color]; !seen {
			order = append(order, v.Color)
		}
		byColor[v.Color] = append(byColor[v.Color], v)
	}

	groups := make([]domain.ColorGroup, 0, len(order))
	for _, color := range order {
		groups = append(groups, domain.ColorGroup{Color: color, Variants: byColor[color]})
	}

	return domain.FamilyGroup{
		Family:      family,
		ContentHash: ContentHash(family),
		ColorGroups: groups,
	}
}

// ContentHash computes the SHA-256 digest of the family's canonical form
// per §4.4: sorted multilingual maps, sorted price tiers by
// (quantity, price_type), fixed numeric string forms, derived aggregates
// and media refs omitted. H(a) = H(b) iff the canonical forms are
// byte-identical.
func ContentHash(family domain.FamilyRecord) string {
	canonical := Canonicalize(family)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Canonicalize produces the deterministic byte encoding the hash is
// computed over. Exported so tests and the reconciler's hash-equality
// checks (P2) can assert on the canonical form directly, not just its
// digest.
func Canonicalize(family domain.FamilyRecord) string {
	var b strings.Builder

	b.WriteString("family_key=")
	b.WriteString(family.FamilyKey)
	b.WriteString(";a_number=")
	b.WriteString(family.ANumber)
	b.WriteString(";category=")
	b.WriteString(family.Category)
	b.WriteString(";country=")
	b.WriteString(family.CountryOfOrigin)
	b.WriteString(";delivery=")
	b.WriteString(family.DeliveryTime)

	writeMultilingual(&b, "name", family.Name)
	writeMultilingual(&b, "description", family.Description)
	writeMultilingual(&b, "short_description", family.ShortDescription)
	writeMultilingual(&b, "model_name", family.ModelName)
	writeMultilingual(&b, "material", family.Material)

	categories := append([]string(nil), family.Categories...)
	sort.Strings(categories)
	b.WriteString(";categories=")
	b.WriteString(strings.Join(categories, ","))

	b.WriteString(";dimensions=")
	b.WriteString(numForm(family.Dimensions.Length))
	b.WriteString(",")
	b.WriteString(numForm(family.Dimensions.Width))
	b.WriteString(",")
	b.WriteString(numForm(family.Dimensions.Height))
	b.WriteString(",")
	b.WriteString(numForm(family.Dimensions.Diameter))
	b.WriteString(",")
	b.WriteString(numForm(family.Dimensions.Weight))
	b.WriteString(",")
	b.WriteString(family.Dimensions.Unit)

	tiers := append([]domain.PriceTier(nil), family.PriceTiers...)
	sort.Slice(tiers, func(i, j int) bool {
		if tiers[i].Quantity != tiers[j].Quantity {
			return tiers[i].Quantity < tiers[j].Quantity
		}
		return tiers[i].PriceType < tiers[j].PriceType
	})
	b.WriteString(";price_tiers=")
	for _, t := range tiers {
		b.WriteString(strconv.Itoa(t.Quantity))
		b.WriteString(":")
		b.WriteString(strconv.FormatFloat(t.Price, 'f', 2, 64))
		b.WriteString(":")
		b.WriteString(t.Currency)
		b.WriteString(":")
		b.WriteString(string(t.PriceType))
		b.WriteString(",")
	}

	return b.String()
}

func writeMultilingual(b *strings.Builder, field string, m domain.MultilingualText) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString(";")
	b.WriteString(field)
	b.WriteString("=")
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(":")
		b.WriteString(m[k])
		b.WriteString("|")
	}
}

// numForm normalizes a possibly-absent numeric field to a fixed string
// form, so that "10" and "10.0" never disagree in the canonical form.
func numForm(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', 4, 64)
}
