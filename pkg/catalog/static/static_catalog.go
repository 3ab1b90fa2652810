// SPDX-License-Identifier: Apache-2.0

package static

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/xataio/catalogsearch/pkg/catalog"
	"gopkg.in/yaml.v3"
)

// Catalog is an in memory catalog loaded from a fixture file. It implements
// the IndexDataProvider, AttributeLookup and StoreResolver interfaces.
type Catalog struct {
	products   map[catalog.ItemID]*catalog.AttributeValues
	attributes map[string]*catalog.AttributeMetadata
	stores     map[catalog.StoreID]*catalog.Store
	// website id -> item id -> customer group id -> price
	prices map[catalog.WebsiteID]catalog.PriceIndex
	// store id -> item id -> record
	categories map[catalog.StoreID]catalog.CategoryIndex
}

// fixture maps are keyed by strings so that JSON fixtures, where object keys
// are always strings, decode the same way as YAML ones.
type fixture struct {
	Products   map[string]*catalog.AttributeValues      `yaml:"products"`
	Attributes []*catalog.AttributeMetadata             `yaml:"attributes"`
	Stores     []*catalog.Store                         `yaml:"stores"`
	Prices     map[string]map[string]map[string]float64 `yaml:"prices"`
	Categories map[string]map[string]categoryFixture    `yaml:"categories"`
}

type categoryFixture struct {
	Memberships []catalog.CategoryMembership `yaml:"memberships"`
	Flat        map[string]any               `yaml:"flat"`
}

// LoadFile reads a YAML fixture. JSON fixtures are accepted too, since JSON
// documents are valid YAML.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog fixture: %w", err)
	}
	return Load(data)
}

func Load(data []byte) (*Catalog, error) {
	f := fixture{}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding catalog fixture: %w", err)
	}

	c := &Catalog{
		products:   map[catalog.ItemID]*catalog.AttributeValues{},
		attributes: map[string]*catalog.AttributeMetadata{},
		stores:     map[catalog.StoreID]*catalog.Store{},
		prices:     map[catalog.WebsiteID]catalog.PriceIndex{},
		categories: map[catalog.StoreID]catalog.CategoryIndex{},
	}
	for id, values := range f.Products {
		itemID, err := parseID[catalog.ItemID]("item", id)
		if err != nil {
			return nil, err
		}
		if values == nil {
			values = catalog.NewAttributeValues()
		}
		c.products[itemID] = values
	}
	for _, attribute := range f.Attributes {
		if attribute == nil || attribute.Code == "" {
			return nil, errors.New("decoding catalog fixture: attribute without code")
		}
		c.attributes[attribute.Code] = attribute
	}
	for _, store := range f.Stores {
		if store == nil {
			continue
		}
		c.stores[store.ID] = store
	}
	for website, items := range f.Prices {
		websiteID, err := parseID[catalog.WebsiteID]("website", website)
		if err != nil {
			return nil, err
		}
		priceIndex := catalog.PriceIndex{}
		for item, groups := range items {
			itemID, err := parseID[catalog.ItemID]("item", item)
			if err != nil {
				return nil, err
			}
			prices := make(map[catalog.CustomerGroupID]float64, len(groups))
			for group, price := range groups {
				groupID, err := parseID[catalog.CustomerGroupID]("customer group", group)
				if err != nil {
					return nil, err
				}
				prices[groupID] = price
			}
			priceIndex[itemID] = prices
		}
		c.prices[websiteID] = priceIndex
	}
	for store, items := range f.Categories {
		storeID, err := parseID[catalog.StoreID]("store", store)
		if err != nil {
			return nil, err
		}
		categoryIndex := catalog.CategoryIndex{}
		for item, record := range items {
			itemID, err := parseID[catalog.ItemID]("item", item)
			if err != nil {
				return nil, err
			}
			categoryIndex[itemID] = catalog.CategoryRecord{
				Memberships: record.Memberships,
				Flat:        record.Flat,
			}
		}
		c.categories[storeID] = categoryIndex
	}
	return c, nil
}

// Product returns the stored values for the item.
func (c *Catalog) Product(_ context.Context, itemID catalog.ItemID) (*catalog.AttributeValues, error) {
	values, found := c.products[itemID]
	if !found {
		return nil, fmt.Errorf("%w: %d", catalog.ErrItemNotFound, itemID)
	}
	return values, nil
}

// ListItems returns the ids of the fixture products in ascending order.
func (c *Catalog) ListItems(_ context.Context) ([]catalog.ItemID, error) {
	ids := make([]catalog.ItemID, 0, len(c.products))
	for id := range c.products {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// GetFullProductIndexData returns the seed values enriched with the fixture
// values of the item. Fixture values replace seed values for the same code.
func (c *Catalog) GetFullProductIndexData(_ context.Context, itemID catalog.ItemID, seed *catalog.AttributeValues) (*catalog.AttributeValues, error) {
	values := catalog.NewAttributeValues()
	for code, value := range seed.All() {
		values.Set(code, value)
	}
	for code, value := range c.products[itemID].All() {
		values.Set(code, value)
	}
	return values, nil
}

func (c *Catalog) GetPriceIndexData(_ context.Context, itemIDs []catalog.ItemID, storeID catalog.StoreID) (catalog.PriceIndex, error) {
	store, found := c.stores[storeID]
	if !found {
		return catalog.PriceIndex{}, nil
	}

	websitePrices := c.prices[store.WebsiteID]
	priceIndex := catalog.PriceIndex{}
	for _, itemID := range itemIDs {
		if prices, found := websitePrices[itemID]; found {
			priceIndex[itemID] = prices
		}
	}
	return priceIndex, nil
}

func (c *Catalog) GetFullCategoryProductIndexData(_ context.Context, storeID catalog.StoreID, itemIDs []catalog.ItemID) (catalog.CategoryIndex, error) {
	storeCategories := c.categories[storeID]
	categoryIndex := catalog.CategoryIndex{}
	for _, itemID := range itemIDs {
		if record, found := storeCategories[itemID]; found {
			categoryIndex[itemID] = record
		}
	}
	return categoryIndex, nil
}

func (c *Catalog) GetAttribute(_ context.Context, code string) (*catalog.AttributeMetadata, error) {
	return c.attributes[code], nil
}

func (c *Catalog) ListAttributes(_ context.Context) (map[string]*catalog.AttributeMetadata, error) {
	attributes := make(map[string]*catalog.AttributeMetadata, len(c.attributes))
	for code, attribute := range c.attributes {
		attributes[code] = attribute
	}
	return attributes, nil
}

func parseID[T ~int64](kind, raw string) (T, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decoding catalog fixture: invalid %s id %q", kind, raw)
	}
	return T(id), nil
}

func (c *Catalog) GetStore(_ context.Context, storeID catalog.StoreID) (*catalog.Store, error) {
	return c.stores[storeID], nil
}
