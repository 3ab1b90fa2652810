// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/document"
)

func indexed(prefix string, i int) string {
	return prefix + strconv.Itoa(i)
}

func expandTierPrices(value any) (document.Fields, error) {
	tierPrices, err := catalog.DecodeTierPrices(value)
	if err != nil {
		return nil, err
	}

	fields := make(document.Fields, 0, len(tierPrices)*7)
	for i, tp := range tierPrices {
		var custGroup any = ""
		if !tp.IsAllGroups() {
			custGroup = tp.CustomerGroup
		}
		fields = append(fields,
			document.Field{Name: indexed("tier_price_id_", i), Value: tp.PriceID},
			document.Field{Name: indexed("tier_website_id_", i), Value: tp.WebsiteID},
			document.Field{Name: indexed("tier_all_groups_", i), Value: tp.AllGroups},
			document.Field{Name: indexed("tier_cust_group_", i), Value: custGroup},
			document.Field{Name: indexed("tier_price_qty_", i), Value: tp.PriceQty},
			document.Field{Name: indexed("tier_website_price_", i), Value: tp.WebsitePrice},
			document.Field{Name: indexed("tier_price_", i), Value: tp.Price},
		)
	}
	return fields, nil
}

func expandStockStatus(value any) (document.Fields, error) {
	status, err := catalog.DecodeStockStatus(value)
	if err != nil {
		return nil, err
	}

	inStock := 0
	if status.InStock {
		inStock = 1
	}
	return document.Fields{
		{Name: "is_in_stock", Value: inStock},
		{Name: "qty", Value: status.Qty},
	}, nil
}

func expandMediaGallery(value any, roles mediaRoles) (document.Fields, error) {
	entries, err := catalog.DecodeMediaGallery(value)
	if err != nil {
		return nil, err
	}

	fields := document.Fields{}
	for i, entry := range entries {
		file := entry.FilePath()
		if entry.IsImage() {
			fields = append(fields,
				document.Field{Name: indexed("image_file_", i), Value: entry.File},
				document.Field{Name: indexed("image_position_", i), Value: entry.Position},
				document.Field{Name: indexed("image_disabled_", i), Value: entry.Disabled},
				document.Field{Name: indexed("image_label_", i), Value: entry.Label},
				document.Field{Name: indexed("image_title_", i), Value: entry.Label},
				document.Field{Name: indexed("image_base_image_", i), Value: roles.matches(catalog.RoleImage, file)},
				document.Field{Name: indexed("image_small_image_", i), Value: roles.matches(catalog.RoleSmallImage, file)},
				document.Field{Name: indexed("image_thumbnail_", i), Value: roles.matches(catalog.RoleThumbnail, file)},
				document.Field{Name: indexed("image_swatch_image_", i), Value: roles.matches(catalog.RoleSwatchImage, file)},
			)
			continue
		}

		fields = append(fields,
			document.Field{Name: indexed("video_file_", i), Value: entry.File},
			document.Field{Name: indexed("video_position_", i), Value: entry.Position},
			document.Field{Name: indexed("video_disabled_", i), Value: entry.Disabled},
			document.Field{Name: indexed("video_label_", i), Value: entry.Label},
			document.Field{Name: indexed("video_title_", i), Value: entry.VideoTitle},
			document.Field{Name: indexed("video_base_image_", i), Value: roles.matches(catalog.RoleImage, file)},
			document.Field{Name: indexed("video_small_image_", i), Value: roles.matches(catalog.RoleSmallImage, file)},
			document.Field{Name: indexed("video_thumbnail_", i), Value: roles.matches(catalog.RoleThumbnail, file)},
			document.Field{Name: indexed("video_swatch_image_", i), Value: roles.matches(catalog.RoleSwatchImage, file)},
			document.Field{Name: indexed("video_url_", i), Value: entry.VideoURL},
			document.Field{Name: indexed("video_description_", i), Value: entry.VideoDescription},
			document.Field{Name: indexed("video_metadata_", i), Value: entry.VideoMetadata},
			document.Field{Name: indexed("video_provider_", i), Value: entry.VideoProvider},
		)
	}
	return fields, nil
}

// expandPriceIndex emits one price_<group>_<website> field per customer group,
// in ascending group order.
func (m *FieldMapper) expandPriceIndex(ctx context.Context, itemID catalog.ItemID, storeID catalog.StoreID, priceIndex catalog.PriceIndex) (document.Fields, error) {
	prices, found := priceIndex[itemID]
	if !found {
		return nil, nil
	}

	store, err := m.stores.GetStore(ctx, storeID)
	if err != nil {
		return nil, collaboratorErr(fmt.Sprintf("getting store %d", storeID), err)
	}
	if store == nil {
		return nil, collaboratorErr(fmt.Sprintf("getting store %d", storeID), catalog.ErrStoreNotFound)
	}

	groups := make([]catalog.CustomerGroupID, 0, len(prices))
	for group := range prices {
		groups = append(groups, group)
	}
	slices.Sort(groups)

	fields := make(document.Fields, 0, len(groups))
	for _, group := range groups {
		fields = append(fields, document.Field{
			Name:  fmt.Sprintf("price_%d_%d", group, store.WebsiteID),
			Value: formatPrice(prices[group]),
		})
	}
	return fields, nil
}

// formatPrice renders the price in fixed notation with six decimals.
func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 6, 64)
}

func expandCategories(itemID catalog.ItemID, categoryIndex catalog.CategoryIndex) document.Fields {
	record, found := categoryIndex[itemID]
	if !found {
		return nil
	}

	if len(record.Memberships) == 0 {
		flatNames := make([]string, 0, len(record.Flat))
		for name := range record.Flat {
			flatNames = append(flatNames, name)
		}
		slices.Sort(flatNames)
		fields := make(document.Fields, 0, len(flatNames))
		for _, name := range flatNames {
			fields = append(fields, document.Field{Name: name, Value: record.Flat[name]})
		}
		return fields
	}

	ids := make([]string, 0, len(record.Memberships))
	for _, c := range record.Memberships {
		ids = append(ids, strconv.FormatInt(int64(c.ID), 10))
	}

	fields := make(document.Fields, 0, 1+2*len(record.Memberships))
	fields = append(fields, document.Field{Name: "category_ids", Value: strings.Join(ids, " ")})
	for _, c := range record.Memberships {
		fields = append(fields,
			document.Field{Name: fmt.Sprintf("position_category_%d", c.ID), Value: c.Position},
			document.Field{Name: fmt.Sprintf("name_category_%d", c.ID), Value: c.Name},
		)
	}
	return fields
}
