/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

// Package domain holds the plain record types shared by every component
// of the synchronization engine. Nothing here performs I/O; these are
// the typed records that C1-C8 pass between each other in place of the
// raw, duck-typed upstream documents.
package domain

import "time"

// SyncStatus is the lifecycle state of a Supplier's last sync attempt.
type SyncStatus string

const (
	SyncStatusIdle      SyncStatus = "idle"
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
	SyncStatusCancelled SyncStatus = "cancelled"
)

// Supplier is a feed source, bootstrapped once from a static list and
// thereafter mutated only by the engine's own job-completion handlers.
type Supplier struct {
	Code             string
	IsActive         bool
	AutoImport       bool
	LastSyncAt       *time.Time
	LastSyncStatus   SyncStatus
	LastSyncMessage  string
}

// MultilingualText maps an ISO-ish language code to localized text.
type MultilingualText map[string]string

// PriceType distinguishes the purchase and selling price blocks a tier
// can be sourced from.
type PriceType string

const (
	PriceTypePurchase PriceType = "purchase"
	PriceTypeSelling  PriceType = "selling"
)

// PriceTier is one quantity break in a family's price schedule.
type PriceTier struct {
	Quantity  int
	Price     float64
	Currency  string
	PriceType PriceType
}

// Dimensions holds the physical measurements carried on a family or a
// variant. Zero value means "not present", never "zero-sized".
type Dimensions struct {
	Length   *float64
	Width    *float64
	Height   *float64
	Diameter *float64
	Weight   *float64
	Unit     string
}

// MediaRef points at a deduplicated image already materialized in the
// object store.
type MediaRef struct {
	Filename string
	URL      string
	Size     int64
	Hash     string
}

// Product is a catalog family grouped under one family key (sku).
// Field names mirror the snake_case attributes of DATA MODEL §3; Go
// field names are the PascalCase equivalent.
type Product struct {
	SKU              string
	ANumber          string
	SupplierSKU      string
	SupplierCode     string
	Name             MultilingualText
	Description      MultilingualText
	ShortDescription MultilingualText
	ModelName        MultilingualText
	Material         MultilingualText
	Category         string
	Categories       []string
	MainImage        *MediaRef
	GalleryImages    []MediaRef
	PriceTiers       []PriceTier
	Dimensions       Dimensions
	CountryOfOrigin  string
	DeliveryTime     string
	PromidataHash    string
	LastSyncedAt     *time.Time
	IsActive         bool

	// Derived aggregates — invariant I2: pure function of live variants
	// and PriceTiers. Never set directly outside the reconciler.
	AvailableColors []string
	AvailableSizes  []string
	HexColors       []string
	PriceMin        *float64
	PriceMax        *float64

	// Set by the downstream semantic sink, never by the reconciler.
	GeminiFileURI    string
	GeminiSyncedHash string
}

// ProductVariant is a color/size combination within a family. Per DN4
// (§9), variants never carry product-level descriptive fields —
// description/material/country-of-origin live solely on Product.
type ProductVariant struct {
	SKU                string
	ProductSKU         string
	Color              string
	HexColor           string
	Size               string
	Length             *float64
	Width              *float64
	Height             *float64
	Diameter           *float64
	Weight             *float64
	PrimaryImage       *MediaRef
	GalleryImages      []MediaRef
	IsPrimaryForColor  bool
	IsActive           bool
}

// FamilyRecord is C3's normalized output for the parent document: every
// field the reconciler and hasher need, with no raw nested maps left.
type FamilyRecord struct {
	FamilyKey        string
	ANumber          string
	SupplierSKU      string
	SupplierCode     string
	Name             MultilingualText
	Description      MultilingualText
	ShortDescription MultilingualText
	ModelName        MultilingualText
	Material         MultilingualText
	Category         string
	Categories       []string
	PriceTiers       []PriceTier
	Dimensions       Dimensions
	CountryOfOrigin  string
	DeliveryTime     string
}

// VariantRecord is C3's normalized output for one child document.
type VariantRecord struct {
	SKU           string
	Color         string
	HexColor      string
	Size          string
	Dimensions    Dimensions
	PrimaryImageURL string
	GalleryImageURLs []string
}

// FamilyGroup is C4's output: one family's canonical hash plus its
// variants already partitioned into color groups, in feed order.
type FamilyGroup struct {
	Family       FamilyRecord
	ContentHash  string
	ColorGroups  []ColorGroup
}

// ColorGroup is every variant sharing one color; Variants[0] is always
// the designated primary-for-color per §4.4.
type ColorGroup struct {
	Color    string
	Variants []VariantRecord
}

// ImageJob is the per-image work contract of §4.6.
type ImageRole string

const (
	ImageRolePrimary ImageRole = "primary"
	ImageRoleGallery ImageRole = "gallery"
)

type ImageJob struct {
	SourceURL              string
	OwnerVariantSKU        string
	Role                   ImageRole
	IsFirstVariantOfFamily bool
	FamilyKey              string
}
