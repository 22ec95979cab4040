/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package normalize

import "github.com/atlaspim/syncengine/internal/domain"

// Validate performs the cross-field checks the engine requires before a
// normalized family is handed to the reconciler. Adapted from the
// teacher's AgentTaskValidator.ValidateAgentTask cross-field-check
// shape, replacing its k8s field.ErrorList accumulation with a single
// plain ValidationError per violated rule (DN2/DN7: no duck typing, no
// exceptions-as-control-flow past this point).
func Validate(family domain.FamilyRecord, variants []domain.VariantRecord) error {
	if family.FamilyKey == "" {
		return &domain.ValidationError{FamilyKey: family.SupplierSKU, Field: "family_key", Reason: "empty"}
	}
	if len(family.Name) == 0 {
		return &domain.ValidationError{FamilyKey: family.FamilyKey, Field: "name", Reason: "missing mandatory multilingual name"}
	}
	for _, v := range variants {
		if v.SKU == "" {
			return &domain.ValidationError{FamilyKey: family.FamilyKey, Field: "variant.sku", Reason: "missing sku on child product"}
		}
	}
	return nil
}
