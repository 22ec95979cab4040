/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package normalize

import (
	"regexp"

	"github.com/atlaspim/syncengine/internal/domain"
)

// fanOutLanguages is the fixed target set for bare-string multilingual
// fields per §4.3.
var fanOutLanguages = []string{"en", "de", "fr", "nl", "es"}

// bareSupplierCode matches a_number values that degenerate to the
// supplier code rather than naming a real family key (§4.3's family-key
// rule).
var bareSupplierCode = regexp.MustCompile(`^[A-Z]\d+$`)

// Normalize decodes one raw parent product document (and its nested
// ChildProducts) into a FamilyRecord plus one VariantRecord per child.
// Pure: no I/O, no randomness, same input always yields the same output.
func Normalize(raw map[string]any, parentSKU, supplierCode string) (domain.FamilyRecord, []domain.VariantRecord, error) {
	productDetails, _ := lookupMap(raw, "ProductDetails")
	nonLangDetails, _ := lookupMap(raw, "NonLanguageDependedProductDetails")

	family := domain.FamilyRecord{
		FamilyKey:    familyKey(raw, parentSKU),
		ANumber:      firstString(raw, "ANumber", "a_number", "model"),
		SupplierSKU:  parentSKU,
		SupplierCode: supplierCode,
		Category:     firstString(nonLangDetails, "Category", "category"),
		CountryOfOrigin: firstString(nonLangDetails, "CountryOfOrigin", "country_of_origin"),
		DeliveryTime:    firstString(nonLangDetails, "DeliveryTime", "delivery_time"),
	}

	family.Name = multilingualField(productDetails, "Name")
	family.Description = multilingualField(productDetails, "Description")
	family.ShortDescription = multilingualField(productDetails, "ShortDescription")
	family.ModelName = multilingualField(productDetails, "ModelName")
	family.Material = multilingualField(nonLangDetails, "Material")
	family.Dimensions = dimensionsField(nonLangDetails)
	family.PriceTiers = priceTiers(raw)

	if categories, ok := lookupSlice(nonLangDetails, "Categories"); ok {
		for _, c := range categories {
			if s, ok := c.(string); ok {
				family.Categories = append(family.Categories, s)
			}
		}
	}

	var variants []domain.VariantRecord
	if children, ok := lookupSlice(raw, "ChildProducts"); ok {
		for _, childAny := range children {
			child, ok := childAny.(map[string]any)
			if !ok {
				continue
			}
			v, err := normalizeVariant(child)
			if err != nil {
				return family, nil, err
			}
			variants = append(variants, v)
		}
	}

	if family.FamilyKey == "" {
		return family, nil, &domain.ValidationError{FamilyKey: parentSKU, Field: "family_key", Reason: "could not derive a family key"}
	}

	return family, variants, nil
}

// familyKey implements the critical rule of §4.3: prefer a_number/model
// unless it degenerates to a bare supplier code, else fall back to the
// parent SKU.
func familyKey(raw map[string]any, parentSKU string) string {
	if v, ok := lookupString(raw, "ANumber"); ok && v != "" && !bareSupplierCode.MatchString(v) {
		return v
	}
	if v, ok := lookupString(raw, "model"); ok && v != "" && !bareSupplierCode.MatchString(v) {
		return v
	}
	return parentSKU
}

func normalizeVariant(child map[string]any) (domain.VariantRecord, error) {
	productDetails, _ := lookupMap(child, "ProductDetails")
	nonLangDetails, _ := lookupMap(child, "NonLanguageDependedProductDetails")

	sku, _ := lookupString(child, "SupplierSku")
	if sku == "" {
		sku, _ = lookupString(child, "Sku")
	}

	v := domain.VariantRecord{
		SKU:        sku,
		Dimensions: dimensionsField(nonLangDetails),
	}

	color, hexColor, size := configurationFields(child)
	v.Color = color
	v.HexColor = hexColor
	v.Size = size

	// Variant primary image: ProductDetails[lang].Image.Url — take the
	// first language block that carries one, since the raw document may
	// supply it under any language key.
	for _, lang := range fanOutLanguages {
		if block, ok := lookupMap(productDetails, lang); ok {
			if img, ok := lookupMap(block, "Image"); ok {
				if url, ok := lookupString(img, "Url"); ok && url != "" {
					v.PrimaryImageURL = url
					break
				}
			}
		}
	}
	if v.PrimaryImageURL == "" {
		if img, ok := lookupMap(productDetails, "Image"); ok {
			if url, ok := lookupString(img, "Url"); ok {
				v.PrimaryImageURL = url
			}
		}
	}

	if gallery, ok := lookupSlice(child, "MediaGalleryImages"); ok {
		for _, g := range gallery {
			gm, ok := g.(map[string]any)
			if !ok {
				continue
			}
			if url, ok := lookupString(gm, "Url"); ok && url != "" {
				v.GalleryImageURLs = append(v.GalleryImageURLs, url)
			}
		}
	}

	return v, nil
}

// configurationFields extracts color/hex-color/size from ConfigurationFields
// by case-insensitive name match, falling back to top-level color/size/
// hex fields per §4.3.
func configurationFields(child map[string]any) (color, hexColor, size string) {
	if fields, ok := lookupSlice(child, "ConfigurationFields"); ok {
		for _, fAny := range fields {
			f, ok := fAny.(map[string]any)
			if !ok {
				continue
			}
			name, _ := lookupString(f, "Name")
			value, _ := lookupString(f, "Value")
			switch {
			case equalFold(name, "Color"):
				color = value
			case equalFold(name, "Size"):
				size = value
			case equalFold(name, "ColorCode"), equalFold(name, "HexColor"), equalFold(name, "Hex"):
				hexColor = value
			}
		}
	}
	if color == "" {
		color, _ = lookupString(child, "color")
	}
	if size == "" {
		size, _ = lookupString(child, "size")
	}
	if hexColor == "" {
		hexColor = firstString(child, "ColorCode", "color_code", "HexColor", "hex_color", "Hex", "hex")
	}
	return color, hexColor, size
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// multilingualField implements §4.3's fan-out rule: object → copy as-is,
// bare string → fan out to the fixed language set, missing → absent.
func multilingualField(m doc, name string) domain.MultilingualText {
	if m == nil {
		return nil
	}
	v, ok := lookupField(m, name)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(domain.MultilingualText, len(t))
		for k, val := range t {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
		return out
	case string:
		out := make(domain.MultilingualText, len(fanOutLanguages))
		for _, lang := range fanOutLanguages {
			out[lang] = t
		}
		return out
	default:
		return nil
	}
}

func dimensionsField(m doc) domain.Dimensions {
	var d domain.Dimensions
	if f, ok := lookupFloat(m, "Length"); ok {
		d.Length = &f
	}
	if f, ok := lookupFloat(m, "Width"); ok {
		d.Width = &f
	}
	if f, ok := lookupFloat(m, "Height"); ok {
		d.Height = &f
	}
	if f, ok := lookupFloat(m, "Diameter"); ok {
		d.Diameter = &f
	}
	if f, ok := lookupFloat(m, "Weight"); ok {
		d.Weight = &f
	}
	if unit, ok := lookupString(m, "Unit"); ok {
		d.Unit = unit
	}
	return d
}

// priceTiers implements §4.3's price-tier rule: read both the flat
// price_1..price_8 fields and any PriceDetails[] array, emitting one
// tier per non-null price.
func priceTiers(raw doc) []domain.PriceTier {
	var tiers []domain.PriceTier

	for i := 1; i <= 8; i++ {
		field := "price_" + itoa(i)
		if f, ok := lookupFloatNonNull(raw, field); ok {
			tiers = append(tiers, domain.PriceTier{
				Quantity:  1,
				Price:     f,
				Currency:  "EUR",
				PriceType: domain.PriceTypeSelling,
			})
		}
	}

	if details, ok := lookupSlice(raw, "PriceDetails"); ok {
		for _, dAny := range details {
			d, ok := dAny.(map[string]any)
			if !ok {
				continue
			}
			price, ok := lookupFloatNonNull(d, "Price")
			if !ok {
				continue
			}
			qty := 1
			if q, ok := lookupFloat(d, "Quantity"); ok {
				qty = int(q)
			}
			currency := "EUR"
			if c, ok := lookupString(d, "Currency"); ok && c != "" {
				currency = c
			}
			priceType := domain.PriceTypeSelling
			if isPurchase, ok := lookupString(d, "PriceType"); ok && equalFold(isPurchase, "purchase") {
				priceType = domain.PriceTypePurchase
			}
			tiers = append(tiers, domain.PriceTier{
				Quantity:  qty,
				Price:     price,
				Currency:  currency,
				PriceType: priceType,
			})
		}
	}

	return tiers
}

func firstString(m doc, names ...string) string {
	for _, n := range names {
		if v, ok := lookupString(m, n); ok && v != "" {
			return v
		}
	}
	return ""
}

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return ""
}
