// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"context"
	"fmt"

	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/document"
)

// mediaRoles holds the file assigned to each media role attribute.
type mediaRoles map[string]string

func newMediaRoles() mediaRoles {
	roles := make(mediaRoles, len(mediaRoleAttributes))
	for _, role := range mediaRoleAttributes {
		roles[role] = ""
	}
	return roles
}

func (r mediaRoles) isRole(code string) bool {
	_, found := r[code]
	return found
}

// matches returns "1" if the file is the one assigned to the role, "0"
// otherwise.
func (r mediaRoles) matches(role, file string) string {
	if r[role] == file {
		return "1"
	}
	return "0"
}

// expansion turns a structured attribute value into flat document fields.
type expansion func(value any, roles mediaRoles) (document.Fields, error)

func defaultExpansions() map[string]expansion {
	return map[string]expansion{
		catalog.AttributeTierPrice: func(value any, _ mediaRoles) (document.Fields, error) {
			return expandTierPrices(value)
		},
		catalog.AttributeQtyAndStock: func(value any, _ mediaRoles) (document.Fields, error) {
			return expandStockStatus(value)
		},
		catalog.AttributeMediaGallery: expandMediaGallery,
	}
}

func (m *FieldMapper) processAdvancedAttributes(ctx context.Context, builder *document.Builder, itemID catalog.ItemID, indexData *catalog.AttributeValues, storeID catalog.StoreID) error {
	roles := newMediaRoles()

	// the price index is only needed when the price attribute is known
	var priceIndex catalog.PriceIndex
	priceAttribute, err := m.attributes.GetAttribute(ctx, catalog.AttributePrice)
	if err != nil {
		return collaboratorErr("getting price attribute", err)
	}
	if priceAttribute != nil {
		priceIndex, err = m.provider.GetPriceIndexData(ctx, []catalog.ItemID{itemID}, storeID)
		if err != nil {
			return collaboratorErr("getting price index data", err)
		}
	}

	categoryIndex, err := m.provider.GetFullCategoryProductIndexData(ctx, storeID, []catalog.ItemID{itemID})
	if err != nil {
		return collaboratorErr("getting category index data", err)
	}

	if !m.singlePassRoles {
		for code, value := range indexData.All() {
			if roles.isRole(code) {
				roles[code] = catalog.Stringify(value)
			}
		}
	}

	for code, value := range indexData.All() {
		if roles.isRole(code) {
			if m.singlePassRoles {
				roles[code] = catalog.Stringify(value)
			}
			continue
		}

		expand, found := m.expansions[code]
		if !found {
			continue
		}
		fields, err := expand(value, roles)
		if err != nil {
			return fmt.Errorf("expanding %s: %w", code, err)
		}
		builder.AddFields(fields)
	}

	priceFields, err := m.expandPriceIndex(ctx, itemID, storeID, priceIndex)
	if err != nil {
		return err
	}
	builder.AddFields(priceFields)
	builder.AddFields(expandCategories(itemID, categoryIndex))

	return nil
}
