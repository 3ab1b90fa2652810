// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"

	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/document"
	"github.com/xataio/catalogsearch/pkg/catalog/mapper"
	loglib "github.com/xataio/catalogsearch/pkg/log"
	"github.com/xataio/catalogsearch/pkg/otel"
)

type MapRequest struct {
	ItemID       catalog.ItemID
	StoreID      catalog.StoreID
	FieldContext catalog.FieldContext
	// Values seed the mapping. When nil the values stored for the item are
	// used.
	Values *catalog.AttributeValues
}

// Map returns the search document of a single catalog item, read from the
// configured source. Nothing is written to the search target.
func Map(ctx context.Context, logger loglib.Logger, config *Config, req *MapRequest, instrumentation *otel.Instrumentation) (*document.Document, error) {
	if err := config.Source.IsValid(); err != nil {
		return nil, fmt.Errorf("incompatible configuration: %w", err)
	}

	src, err := newSource(ctx, config, logger, instrumentation)
	if err != nil {
		return nil, err
	}
	defer src.Close(ctx)

	return mapSourceItem(ctx, logger, src, &config.Mapper, req, instrumentation)
}

func mapSourceItem(ctx context.Context, logger loglib.Logger, src *source, cfg *mapper.Config, req *MapRequest, instrumentation *otel.Instrumentation) (*document.Document, error) {
	fieldMapper, err := newFieldMapper(src, cfg, logger, instrumentation)
	if err != nil {
		return nil, fmt.Errorf("error setting up field mapper: %w", err)
	}

	stopCache := src.runAttributeCache(ctx, logger)
	defer stopCache()

	return mapItem(ctx, src, fieldMapper, req)
}

func mapItem(ctx context.Context, items ItemSource, m mapper.Mapper, req *MapRequest) (*document.Document, error) {
	values := req.Values
	if values == nil {
		var err error
		values, err = items.Product(ctx, req.ItemID)
		if err != nil {
			return nil, err
		}
	}
	return m.Map(ctx, req.ItemID, values, req.StoreID, req.FieldContext)
}
