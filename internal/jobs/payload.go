/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atlaspim/syncengine/internal/domain"
)

// SupplierSyncPayload is the §4.7 supplier-sync job payload.
type SupplierSyncPayload struct {
	SupplierID string `json:"supplier_id"`
	Manual     bool   `json:"manual"`
}

// ProductFamilyPayload is the §4.7 product-family job payload.
type ProductFamilyPayload struct {
	SupplierID  string                  `json:"supplier_id"`
	FamilyKey   string                  `json:"family_key"`
	Variants    []domain.VariantRecord  `json:"variants"`
	FamilyHash  string                  `json:"family_hash"`
}

// ImageUploadPayload mirrors the §4.6 per-image job contract.
type ImageUploadPayload struct {
	SourceURL              string `json:"source_url"`
	OwnerVariantSKU        string `json:"owner_variant_sku"`
	Role                   string `json:"role"`
	IsFirstVariantOfFamily bool   `json:"is_first_variant_of_family"`
	FamilyKey              string `json:"family_key"`
}

// NewJobID produces a collision-resistant job id: a timestamp prefix, a
// random suffix, and a salient payload field, matching §4.7's
// requirement verbatim. Grounded on the ArchiveJob id-shape idiom from
// the go-redis-work-queue reference (job_id carries enough context to
// be debuggable from logs alone, not just unique).
func NewJobID(prefix, salientField string) string {
	return fmt.Sprintf("%s-%d-%s-%s", prefix, time.Now().UnixNano(), salientField, uuid.NewString()[:8])
}

func marshalPayload(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, &domain.ValidationError{Field: "payload", Reason: err.Error()}
	}
	return b, nil
}
