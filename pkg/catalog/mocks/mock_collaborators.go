// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/xataio/catalogsearch/pkg/catalog"
)

type IndexDataProvider struct {
	GetFullProductIndexDataFn         func(ctx context.Context, itemID catalog.ItemID, seed *catalog.AttributeValues) (*catalog.AttributeValues, error)
	GetPriceIndexDataFn               func(ctx context.Context, itemIDs []catalog.ItemID, storeID catalog.StoreID) (catalog.PriceIndex, error)
	GetFullCategoryProductIndexDataFn func(ctx context.Context, storeID catalog.StoreID, itemIDs []catalog.ItemID) (catalog.CategoryIndex, error)
}

func (m *IndexDataProvider) GetFullProductIndexData(ctx context.Context, itemID catalog.ItemID, seed *catalog.AttributeValues) (*catalog.AttributeValues, error) {
	return m.GetFullProductIndexDataFn(ctx, itemID, seed)
}

func (m *IndexDataProvider) GetPriceIndexData(ctx context.Context, itemIDs []catalog.ItemID, storeID catalog.StoreID) (catalog.PriceIndex, error) {
	return m.GetPriceIndexDataFn(ctx, itemIDs, storeID)
}

func (m *IndexDataProvider) GetFullCategoryProductIndexData(ctx context.Context, storeID catalog.StoreID, itemIDs []catalog.ItemID) (catalog.CategoryIndex, error) {
	return m.GetFullCategoryProductIndexDataFn(ctx, storeID, itemIDs)
}

type AttributeLookup struct {
	GetAttributeFn func(ctx context.Context, code string) (*catalog.AttributeMetadata, error)
}

func (m *AttributeLookup) GetAttribute(ctx context.Context, code string) (*catalog.AttributeMetadata, error) {
	return m.GetAttributeFn(ctx, code)
}

type FieldNameResolver struct {
	GetFieldNameFn func(ctx context.Context, code string, fieldCtx catalog.FieldContext) (string, error)
}

func (m *FieldNameResolver) GetFieldName(ctx context.Context, code string, fieldCtx catalog.FieldContext) (string, error) {
	return m.GetFieldNameFn(ctx, code, fieldCtx)
}

type DateFormatter struct {
	FormatDateFn func(ctx context.Context, storeID catalog.StoreID, value any) (string, error)
}

func (m *DateFormatter) FormatDate(ctx context.Context, storeID catalog.StoreID, value any) (string, error) {
	return m.FormatDateFn(ctx, storeID, value)
}

type StoreResolver struct {
	GetStoreFn func(ctx context.Context, storeID catalog.StoreID) (*catalog.Store, error)
}

func (m *StoreResolver) GetStore(ctx context.Context, storeID catalog.StoreID) (*catalog.Store, error) {
	return m.GetStoreFn(ctx, storeID)
}
