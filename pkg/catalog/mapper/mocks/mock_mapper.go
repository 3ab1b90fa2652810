// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync/atomic"

	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/document"
)

type Mapper struct {
	MapFn    func(ctx context.Context, i uint, itemID catalog.ItemID, values *catalog.AttributeValues, storeID catalog.StoreID, fieldCtx catalog.FieldContext) (*document.Document, error)
	mapCalls uint64
}

func (m *Mapper) Map(ctx context.Context, itemID catalog.ItemID, values *catalog.AttributeValues, storeID catalog.StoreID, fieldCtx catalog.FieldContext) (*document.Document, error) {
	i := atomic.AddUint64(&m.mapCalls, 1)
	return m.MapFn(ctx, uint(i), itemID, values, storeID, fieldCtx)
}

func (m *Mapper) MapCalls() uint64 {
	return atomic.LoadUint64(&m.mapCalls)
}
