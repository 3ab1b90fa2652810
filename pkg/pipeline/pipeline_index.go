// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/xataio/catalogsearch/internal/progress"
	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/indexer"
	loglib "github.com/xataio/catalogsearch/pkg/log"
	"github.com/xataio/catalogsearch/pkg/otel"
)

type IndexRequest struct {
	// Items to index. Empty indexes every item of the source.
	Items  []catalog.ItemID
	Stores []catalog.StoreID
	// FieldContext used to resolve the document field names.
	FieldContext catalog.FieldContext
	// Workers is the number of items indexed concurrently. Defaults to 4.
	Workers int
	// ShowProgress renders a progress bar of the indexed items.
	ShowProgress bool
}

type IndexSummary struct {
	Documents    int64
	SkippedItems int64
}

type itemIndexer interface {
	Index(ctx context.Context, itemID catalog.ItemID, values *catalog.AttributeValues, storeID catalog.StoreID, fieldCtx catalog.FieldContext) error
}

const defaultIndexWorkers = 4

// Index maps the requested catalog items for every requested store and writes
// the documents to the configured search target. This call is blocking.
func Index(ctx context.Context, logger loglib.Logger, config *Config, req *IndexRequest, instrumentation *otel.Instrumentation) (*IndexSummary, error) {
	if err := config.IsValid(); err != nil {
		return nil, fmt.Errorf("incompatible configuration: %w", err)
	}
	if config.Target.Search == nil {
		return nil, errMissingSearchTarget
	}
	if len(req.Stores) == 0 {
		return nil, errMissingStores
	}

	src, err := newSource(ctx, config, logger, instrumentation)
	if err != nil {
		return nil, err
	}
	defer src.Close(ctx)

	fieldMapper, err := newFieldMapper(src, &config.Mapper, logger, instrumentation)
	if err != nil {
		return nil, fmt.Errorf("error setting up field mapper: %w", err)
	}

	client, err := newSearchClient(config.Target.Search)
	if err != nil {
		return nil, fmt.Errorf("error setting up search client: %w", err)
	}
	catalogIndexer := indexer.New(fieldMapper, client, &config.Target.Search.Indexer, indexer.WithLogger(logger))

	stopCache := src.runAttributeCache(ctx, logger)
	defer stopCache()

	var progressBarBuilder progress.BarBuilder
	if req.ShowProgress {
		progressBarBuilder = progress.NewItemsBar
	}

	return indexItems(ctx, logger, src, catalogIndexer, req, progressBarBuilder)
}

func indexItems(ctx context.Context, logger loglib.Logger, items ItemSource, idx itemIndexer, req *IndexRequest, progressBarBuilder progress.BarBuilder) (*IndexSummary, error) {
	itemIDs := req.Items
	if len(itemIDs) == 0 {
		var err error
		itemIDs, err = items.ListItems(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing items: %w", err)
		}
	}

	var bar progress.Bar
	if progressBarBuilder != nil {
		bar = progressBarBuilder(len(itemIDs), "indexing catalog items...")
		defer bar.Close()
	}

	var documents, skipped atomic.Int64
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(req.workers())
	for _, itemID := range itemIDs {
		eg.Go(func() error {
			values, err := items.Product(ctx, itemID)
			switch {
			case errors.Is(err, catalog.ErrItemNotFound):
				logger.Warn(err, "skipping catalog item", loglib.Fields{loglib.ItemIDField: int64(itemID)})
				skipped.Add(1)
				return nil
			case err != nil:
				return fmt.Errorf("reading item %d: %w", itemID, err)
			}

			for _, storeID := range req.Stores {
				if err := idx.Index(ctx, itemID, values, storeID, req.FieldContext); err != nil {
					return fmt.Errorf("indexing item %d in store %d: %w", itemID, storeID, err)
				}
				documents.Add(1)
			}
			if bar != nil {
				bar.Add(1) //nolint:errcheck
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	summary := &IndexSummary{
		Documents:    documents.Load(),
		SkippedItems: skipped.Load(),
	}
	logger.Info("catalog indexing complete", loglib.Fields{
		"items":         len(itemIDs),
		"documents":     summary.Documents,
		"skipped_items": summary.SkippedItems,
	})
	return summary, nil
}

func (r *IndexRequest) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return defaultIndexWorkers
}
