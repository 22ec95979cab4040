/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package reconciler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlaspim/syncengine/internal/domain"
	"github.com/atlaspim/syncengine/internal/images"
)

// PgStore is the pgx/v5-backed relational store, grounded on the
// pgxpool.Pool + pgx/v5 query style used throughout the yaaiecomm
// reference (batch find-by-field-in-set via = ANY($1), row-scanning
// handlers).
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// LookupHashes is the single bulk lookup of §4.5: one query against the
// family-key set, never N+1 per-family round trips.
func (s *PgStore) LookupHashes(ctx context.Context, supplierCode string, familyKeys []string) (map[string]string, error) {
	if len(familyKeys) == 0 {
		return map[string]string{}, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT sku, COALESCE(promidata_hash, '') FROM products WHERE supplier_code = $1 AND sku = ANY($2)`,
		supplierCode, familyKeys)
	if err != nil {
		return nil, fmt.Errorf("lookup hashes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(familyKeys))
	for rows.Next() {
		var sku, hash string
		if err := rows.Scan(&sku, &hash); err != nil {
			return nil, fmt.Errorf("scan hash row: %w", err)
		}
		out[sku] = hash
	}
	return out, rows.Err()
}

func (s *PgStore) FindVariantFamily(ctx context.Context, sku string) (string, bool, error) {
	var familyKey string
	err := s.pool.QueryRow(ctx, `SELECT product_sku FROM product_variants WHERE sku = $1`, sku).Scan(&familyKey)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find variant family: %w", err)
	}
	return familyKey, true, nil
}

// UpsertFamily is the atomic, family-scoped transaction of §4.5: the
// product row, every variant row (re-parenting on SKU collision), and
// the derived-aggregate write all commit together or not at all. On any
// error pgx rolls the transaction back, which is the compensating
// behavior the spec asks for — promidata_hash is simply never written.
func (s *PgStore) UpsertFamily(ctx context.Context, group domain.FamilyGroup) (*UpsertResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, &domain.TransientStoreError{Op: "begin family tx", Cause: err}
	}
	defer tx.Rollback(ctx)

	existing, err := variantExists(ctx, tx, group.Family.FamilyKey)
	if err != nil {
		return nil, err
	}

	name, err := json.Marshal(group.Family.Name)
	if err != nil {
		return nil, &domain.ValidationError{FamilyKey: group.Family.FamilyKey, Field: "name", Reason: err.Error()}
	}
	description, err := json.Marshal(group.Family.Description)
	if err != nil {
		return nil, &domain.ValidationError{FamilyKey: group.Family.FamilyKey, Field: "description", Reason: err.Error()}
	}
	shortDescription, err := json.Marshal(group.Family.ShortDescription)
	if err != nil {
		return nil, &domain.ValidationError{FamilyKey: group.Family.FamilyKey, Field: "short_description", Reason: err.Error()}
	}
	modelName, err := json.Marshal(group.Family.ModelName)
	if err != nil {
		return nil, &domain.ValidationError{FamilyKey: group.Family.FamilyKey, Field: "model_name", Reason: err.Error()}
	}
	material, err := json.Marshal(group.Family.Material)
	if err != nil {
		return nil, &domain.ValidationError{FamilyKey: group.Family.FamilyKey, Field: "material", Reason: err.Error()}
	}
	priceTiersJSON, err := json.Marshal(group.Family.PriceTiers)
	if err != nil {
		return nil, &domain.ValidationError{FamilyKey: group.Family.FamilyKey, Field: "price_tiers", Reason: err.Error()}
	}
	dimensionsJSON, err := json.Marshal(group.Family.Dimensions)
	if err != nil {
		return nil, &domain.ValidationError{FamilyKey: group.Family.FamilyKey, Field: "dimensions", Reason: err.Error()}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO products (sku, a_number, supplier_sku, supplier_code, category, categories,
			name, description, short_description, model_name, material, price_tiers, dimensions,
			country_of_origin, delivery_time, promidata_hash, is_active, last_synced_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,true,now())
		ON CONFLICT (sku) DO UPDATE SET
			a_number = EXCLUDED.a_number,
			category = EXCLUDED.category,
			categories = EXCLUDED.categories,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			short_description = EXCLUDED.short_description,
			model_name = EXCLUDED.model_name,
			material = EXCLUDED.material,
			price_tiers = EXCLUDED.price_tiers,
			dimensions = EXCLUDED.dimensions,
			country_of_origin = EXCLUDED.country_of_origin,
			delivery_time = EXCLUDED.delivery_time,
			promidata_hash = EXCLUDED.promidata_hash,
			last_synced_at = now()
	`, group.Family.FamilyKey, group.Family.ANumber, group.Family.SupplierSKU,
		group.Family.SupplierCode, group.Family.Category, group.Family.Categories,
		name, description, shortDescription, modelName, material, priceTiersJSON, dimensionsJSON,
		group.Family.CountryOfOrigin, group.Family.DeliveryTime, group.ContentHash); err != nil {
		return nil, &domain.ConflictError{Entity: "product", Key: group.Family.FamilyKey, Cause: err}
	}

	var variantResults []VariantResult
	for _, cg := range group.ColorGroups {
		for i, v := range cg.Variants {
			isPrimary := i == 0
			reparented, err := upsertVariant(ctx, tx, group.Family.FamilyKey, v, isPrimary)
			if err != nil {
				return nil, &domain.FamilyError{FamilyKey: group.Family.FamilyKey, Phase: "variant_upsert", Cause: err}
			}
			variantResults = append(variantResults, VariantResult{SKU: v.SKU, IsPrimaryForColor: isPrimary, Reparented: reparented})
		}
	}

	colors, sizes, hex, priceMin, priceMax := DerivedAggregates(group.ColorGroups, group.Family.PriceTiers)
	if _, err := tx.Exec(ctx, `
		UPDATE products SET available_colors=$1, available_sizes=$2, hex_colors=$3,
			price_min=$4, price_max=$5 WHERE sku=$6
	`, colors, sizes, hex, priceMin, priceMax, group.Family.FamilyKey); err != nil {
		return nil, &domain.TransientStoreError{Op: "write derived aggregates", Cause: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &domain.TransientStoreError{Op: "commit family tx", Cause: err}
	}

	// Main-image dedup hit: set main_image from here, synchronously,
	// rather than waiting for the async image-upload job. That job also
	// sets it (on a dedup hit as well as after a fresh transfer), but
	// only once it runs; setting it here leaves no window in which an
	// already-uploaded main image is missing from the family.
	if url, ok := firstVariantImageURL(group); ok {
		if ref, found, err := s.FindMediaByFilename(ctx, images.DeriveFilename(url)); err == nil && found {
			if err := s.SetFamilyMainImage(ctx, group.Family.FamilyKey, *ref); err != nil {
				return nil, err
			}
		}
	}

	return &UpsertResult{FamilyKey: group.Family.FamilyKey, Created: !existing, VariantResults: variantResults}, nil
}

// firstVariantImageURL returns the primary image URL of the family's
// first variant (ColorGroups[0].Variants[0]), the variant whose image
// also becomes the family's main_image per §4.6.
func firstVariantImageURL(group domain.FamilyGroup) (string, bool) {
	if len(group.ColorGroups) == 0 || len(group.ColorGroups[0].Variants) == 0 {
		return "", false
	}
	url := group.ColorGroups[0].Variants[0].PrimaryImageURL
	return url, url != ""
}

// ListSuppliers loads every supplier row's sync flags, used by
// config.SupplierFlagCache as its SupplierLoader.
func (s *PgStore) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.pool.Query(ctx, `SELECT code, is_active, auto_import FROM suppliers`)
	if err != nil {
		return nil, &domain.TransientStoreError{Op: "list suppliers", Cause: err}
	}
	defer rows.Close()

	var out []domain.Supplier
	for rows.Next() {
		var sup domain.Supplier
		if err := rows.Scan(&sup.Code, &sup.IsActive, &sup.AutoImport); err != nil {
			return nil, &domain.TransientStoreError{Op: "scan supplier row", Cause: err}
		}
		out = append(out, sup)
	}
	return out, rows.Err()
}

// FindMediaByFilename implements images.MediaStore's dedup lookup (P4):
// a filename match means the same source asset was already uploaded,
// skip the download+PUT entirely.
func (s *PgStore) FindMediaByFilename(ctx context.Context, filename string) (*domain.MediaRef, bool, error) {
	var ref domain.MediaRef
	err := s.pool.QueryRow(ctx,
		`SELECT filename, url, size, hash FROM media WHERE filename = $1`, filename,
	).Scan(&ref.Filename, &ref.URL, &ref.Size, &ref.Hash)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &domain.TransientStoreError{Op: "find media by filename", Cause: err}
	}
	return &ref, true, nil
}

func (s *PgStore) InsertMedia(ctx context.Context, ref domain.MediaRef) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO media (filename, url, size, hash)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (filename) DO NOTHING
	`, ref.Filename, ref.URL, ref.Size, ref.Hash)
	if err != nil {
		return &domain.TransientStoreError{Op: "insert media", Cause: err}
	}
	return nil
}

// AttachToVariant sets (not appends) the variant's image ref for the
// given role, matching §4.6's "set, don't append" attachment rule.
func (s *PgStore) AttachToVariant(ctx context.Context, variantSKU string, ref domain.MediaRef, role domain.ImageRole) error {
	col := "gallery_image_url"
	if role == domain.ImageRolePrimary {
		col = "primary_image_url"
	}
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`UPDATE product_variants SET %s = $1 WHERE sku = $2`, col), ref.URL, variantSKU)
	if err != nil {
		return &domain.TransientStoreError{Op: "attach media to variant", Cause: err}
	}
	return nil
}

func (s *PgStore) SetFamilyMainImage(ctx context.Context, familyKey string, ref domain.MediaRef) error {
	_, err := s.pool.Exec(ctx, `UPDATE products SET main_image_url = $1 WHERE sku = $2`, ref.URL, familyKey)
	if err != nil {
		return &domain.TransientStoreError{Op: "set family main image", Cause: err}
	}
	return nil
}

// ClearHashes wipes promidata_hash for every family of one supplier,
// forcing the next sync to treat every family as changed (OQ3: a full
// resync is an explicit operator action via cmd/syncctl's
// `resync`, never an automatic hot-path re-check).
func (s *PgStore) ClearHashes(ctx context.Context, supplierCode string) error {
	_, err := s.pool.Exec(ctx, `UPDATE products SET promidata_hash = NULL WHERE supplier_code = $1`, supplierCode)
	if err != nil {
		return &domain.TransientStoreError{Op: "clear hashes for full resync", Cause: err}
	}
	return nil
}

func variantExists(ctx context.Context, tx pgx.Tx, familyKey string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE sku=$1)`, familyKey).Scan(&exists)
	if err != nil {
		return false, &domain.TransientStoreError{Op: "check family existence", Cause: err}
	}
	return exists, nil
}

// upsertVariant matches by sku; on SKU collision across families, the
// existing variant is re-parented to the new family per §4.5.
func upsertVariant(ctx context.Context, tx pgx.Tx, familyKey string, v domain.VariantRecord, isPrimary bool) (reparented bool, err error) {
	var priorFamily string
	scanErr := tx.QueryRow(ctx, `SELECT product_sku FROM product_variants WHERE sku=$1`, v.SKU).Scan(&priorFamily)
	if scanErr == nil && priorFamily != familyKey {
		reparented = true
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO product_variants (sku, product_sku, color, hex_color, size,
			length, width, height, diameter, weight, is_primary_for_color, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,true)
		ON CONFLICT (sku) DO UPDATE SET
			product_sku = EXCLUDED.product_sku,
			color = EXCLUDED.color,
			hex_color = EXCLUDED.hex_color,
			size = EXCLUDED.size,
			length = EXCLUDED.length,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			diameter = EXCLUDED.diameter,
			weight = EXCLUDED.weight,
			is_primary_for_color = EXCLUDED.is_primary_for_color
	`, v.SKU, familyKey, v.Color, v.HexColor, v.Size,
		v.Dimensions.Length, v.Dimensions.Width, v.Dimensions.Height, v.Dimensions.Diameter, v.Dimensions.Weight,
		isPrimary)
	if err != nil {
		return reparented, &domain.ConflictError{Entity: "product_variant", Key: v.SKU, Cause: err}
	}
	return reparented, nil
}
