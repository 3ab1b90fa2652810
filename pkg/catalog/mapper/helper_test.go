// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/document"
	"github.com/xataio/catalogsearch/pkg/catalog/mocks"
)

const (
	testItemID    = catalog.ItemID(42)
	testStoreID   = catalog.StoreID(1)
	testWebsiteID = catalog.WebsiteID(1)
)

var errTest = errors.New("oh noes")

var testAttributes = map[string]*catalog.AttributeMetadata{
	"name":                      {Code: "name", BackendType: "varchar", FrontendInput: "text"},
	"color":                     {Code: "color", BackendType: "varchar", FrontendInput: catalog.InputMultiselect},
	"news_from_date":            {Code: "news_from_date", BackendType: catalog.BackendDatetime, FrontendInput: catalog.InputDate},
	"updated_at":                {Code: "updated_at", BackendType: catalog.BackendTimestamp, FrontendInput: "text"},
	"special_from":              {Code: "special_from", BackendType: "varchar", FrontendInput: catalog.InputDate},
	"price":                     {Code: "price", BackendType: "decimal", FrontendInput: "price"},
	"tier_price":                {Code: "tier_price", BackendType: "decimal", FrontendInput: "text"},
	"quantity_and_stock_status": {Code: "quantity_and_stock_status", BackendType: "int", FrontendInput: "select"},
	"media_gallery":             {Code: "media_gallery", BackendType: "static", FrontendInput: "gallery"},
	"giftcard_amounts":          {Code: "giftcard_amounts", BackendType: "decimal", FrontendInput: "price"},
	"image":                     {Code: "image", BackendType: "varchar", FrontendInput: "media_image"},
	"small_image":               {Code: "small_image", BackendType: "varchar", FrontendInput: "media_image"},
	"thumbnail":                 {Code: "thumbnail", BackendType: "varchar", FrontendInput: "media_image"},
	"swatch_image":              {Code: "swatch_image", BackendType: "varchar", FrontendInput: "media_image"},
}

type testCollaboratorsOption func(*Collaborators)

// newTestCollaborators returns collaborators where the provider returns the
// seed values, attributes come from testAttributes, field names are the
// attribute codes and the store belongs to testWebsiteID.
func newTestCollaborators(opts ...testCollaboratorsOption) Collaborators {
	c := Collaborators{
		Provider: &mocks.IndexDataProvider{
			GetFullProductIndexDataFn: func(_ context.Context, _ catalog.ItemID, seed *catalog.AttributeValues) (*catalog.AttributeValues, error) {
				return seed, nil
			},
			GetPriceIndexDataFn: func(_ context.Context, _ []catalog.ItemID, _ catalog.StoreID) (catalog.PriceIndex, error) {
				return nil, nil
			},
			GetFullCategoryProductIndexDataFn: func(_ context.Context, _ catalog.StoreID, _ []catalog.ItemID) (catalog.CategoryIndex, error) {
				return nil, nil
			},
		},
		Attributes: &mocks.AttributeLookup{
			GetAttributeFn: func(_ context.Context, code string) (*catalog.AttributeMetadata, error) {
				return testAttributes[code], nil
			},
		},
		FieldNames: &mocks.FieldNameResolver{
			GetFieldNameFn: func(_ context.Context, code string, _ catalog.FieldContext) (string, error) {
				return code, nil
			},
		},
		Dates: &mocks.DateFormatter{
			FormatDateFn: func(_ context.Context, _ catalog.StoreID, value any) (string, error) {
				return "date:" + catalog.Stringify(value), nil
			},
		},
		Stores: &mocks.StoreResolver{
			GetStoreFn: func(_ context.Context, storeID catalog.StoreID) (*catalog.Store, error) {
				return &catalog.Store{ID: storeID, WebsiteID: testWebsiteID, Code: "default"}, nil
			},
		},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func withPriceIndex(priceIndex catalog.PriceIndex) testCollaboratorsOption {
	return func(c *Collaborators) {
		provider := c.Provider.(*mocks.IndexDataProvider)
		provider.GetPriceIndexDataFn = func(_ context.Context, itemIDs []catalog.ItemID, storeID catalog.StoreID) (catalog.PriceIndex, error) {
			if len(itemIDs) != 1 || itemIDs[0] != testItemID || storeID != testStoreID {
				return nil, fmt.Errorf("unexpected price index request: %v %d", itemIDs, storeID)
			}
			return priceIndex, nil
		}
	}
}

func withCategoryIndex(categoryIndex catalog.CategoryIndex) testCollaboratorsOption {
	return func(c *Collaborators) {
		provider := c.Provider.(*mocks.IndexDataProvider)
		provider.GetFullCategoryProductIndexDataFn = func(_ context.Context, storeID catalog.StoreID, itemIDs []catalog.ItemID) (catalog.CategoryIndex, error) {
			if len(itemIDs) != 1 || itemIDs[0] != testItemID || storeID != testStoreID {
				return nil, fmt.Errorf("unexpected category index request: %v %d", itemIDs, storeID)
			}
			return categoryIndex, nil
		}
	}
}

func withUnknownPriceAttribute() testCollaboratorsOption {
	return func(c *Collaborators) {
		c.Attributes = &mocks.AttributeLookup{
			GetAttributeFn: func(_ context.Context, code string) (*catalog.AttributeMetadata, error) {
				if code == catalog.AttributePrice {
					return nil, nil
				}
				return testAttributes[code], nil
			},
		}
		provider := c.Provider.(*mocks.IndexDataProvider)
		provider.GetPriceIndexDataFn = func(_ context.Context, _ []catalog.ItemID, _ catalog.StoreID) (catalog.PriceIndex, error) {
			return nil, errors.New("GetPriceIndexDataFn: unexpected call")
		}
	}
}

func newTestMapper(t require.TestingT, cfg *Config, opts ...testCollaboratorsOption) *FieldMapper {
	m, err := New(newTestCollaborators(opts...), cfg)
	require.NoError(t, err)
	return m
}

func testTierPrice(priceID, custGroup any) map[string]any {
	return map[string]any{
		"price_id":      priceID,
		"website_id":    1,
		"all_groups":    false,
		"cust_group":    custGroup,
		"price_qty":     "2",
		"website_price": "9.99",
		"price":         "9.99",
	}
}

func testImage(file string) map[string]any {
	return map[string]any{
		"file":       file,
		"position":   1,
		"disabled":   0,
		"label":      "label " + file,
		"media_type": "image",
	}
}

func testVideo(file string) map[string]any {
	return map[string]any{
		"file":              file,
		"position":          2,
		"disabled":          0,
		"label":             "label " + file,
		"media_type":        "external-video",
		"video_title":       "title " + file,
		"video_url":         "https://example.com" + file,
		"video_description": "description",
		"video_metadata":    nil,
		"video_provider":    "youtube",
	}
}

// requireFields checks the document contains the wanted fields, ignoring any
// other field.
func requireFields(t *testing.T, doc *document.Document, want document.Fields) {
	t.Helper()
	for _, f := range want {
		got, found := doc.Get(f.Name)
		require.True(t, found, "missing field %s", f.Name)
		require.Equal(t, f.Value, got, "field %s", f.Name)
	}
}
