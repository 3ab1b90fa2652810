// SPDX-License-Identifier: Apache-2.0

package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xataio/catalogsearch/internal/backoff"
	"github.com/xataio/catalogsearch/internal/searchstore"
	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/mapper"
	loglib "github.com/xataio/catalogsearch/pkg/log"
)

// Indexer maps catalog items into search documents and writes them to the
// search store, one index per store.
type Indexer struct {
	mapper          mapper.Mapper
	client          searchstore.Client
	indexPrefix     string
	refresh         string
	backoffProvider backoff.Provider
	logger          loglib.Logger

	// indices known to exist
	indicesMu sync.Mutex
	indices   map[string]struct{}
}

type Config struct {
	// IndexPrefix is prepended to the store id to build the index name.
	// Defaults to catalog_product.
	IndexPrefix string
	// Refresh policy for the document writes ("true", "false", "wait_for").
	// Empty uses the search store default.
	Refresh string
	// Backoff applied to retryable search store errors. If not provided it
	// defaults to exponential backoff with initial interval of 1s, max
	// interval of 1min.
	Backoff backoff.Config
}

type Option func(*Indexer)

const (
	defaultIndexPrefix          = "catalog_product"
	defaultRetryInitialInterval = time.Second
	defaultRetryMaxInterval     = time.Minute
)

// catalogFieldTemplates map the expanded catalog fields to their search type.
// Everything else is indexed as a keyword with a text subfield.
var catalogFieldTemplates = []searchstore.FieldTemplate{
	{Name: "category_positions", Pattern: "position_category_*", Type: searchstore.IntegerType},
	{Name: "group_prices", Pattern: "price_*_*", Type: searchstore.FloatType},
	{Name: "stock", Pattern: "is_in_stock", Type: searchstore.IntegerType},
	{Name: "strings", Pattern: "*", Type: searchstore.StringType},
}

func New(m mapper.Mapper, client searchstore.Client, cfg *Config, opts ...Option) *Indexer {
	if cfg == nil {
		cfg = &Config{}
	}
	i := &Indexer{
		mapper:          m,
		client:          client,
		indexPrefix:     cfg.indexPrefix(),
		refresh:         cfg.Refresh,
		backoffProvider: backoff.NewProvider(cfg.backoffConfig()),
		logger:          loglib.NewNoopLogger(),
		indices:         map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func WithLogger(l loglib.Logger) Option {
	return func(i *Indexer) {
		i.logger = loglib.NewLogger(l).WithFields(loglib.Fields{
			loglib.ModuleField: "catalog_indexer",
		})
	}
}

// IndexName returns the name of the search index for the store.
func IndexName(prefix string, storeID catalog.StoreID) string {
	return fmt.Sprintf("%s_%d", prefix, storeID)
}

// Index maps the item values for the store and writes the resulting document
// to the store index, using the item id as document id. The index is created
// if it doesn't exist. Retryable search store errors are retried with the
// configured backoff.
func (i *Indexer) Index(ctx context.Context, itemID catalog.ItemID, values *catalog.AttributeValues, storeID catalog.StoreID, fieldCtx catalog.FieldContext) error {
	doc, err := i.mapper.Map(ctx, itemID, values, storeID, fieldCtx)
	if err != nil {
		return fmt.Errorf("mapping item %d for store %d: %w", itemID, storeID, err)
	}

	body, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding document for item %d: %w", itemID, err)
	}

	index := IndexName(i.indexPrefix, storeID)
	if err := i.ensureIndex(ctx, index); err != nil {
		return err
	}

	req := &searchstore.IndexWithIDRequest{
		Index:   index,
		ID:      itemID.String(),
		Body:    body,
		Refresh: i.refresh,
	}
	logFields := loglib.Fields{
		loglib.ItemIDField:  itemID,
		loglib.StoreIDField: storeID,
		"index":             index,
	}
	err = i.withRetry(ctx, func() error {
		return i.client.IndexWithID(ctx, req)
	}, logFields)
	if err != nil {
		return fmt.Errorf("indexing item %d into %s: %w", itemID, index, err)
	}

	i.logger.Debug("item indexed", loglib.MergeFields(logFields, loglib.Fields{"fields": doc.Len()}))
	return nil
}

// DeleteIndices removes the search indices of the given stores. Missing
// indices are ignored.
func (i *Indexer) DeleteIndices(ctx context.Context, storeIDs []catalog.StoreID) error {
	for _, storeID := range storeIDs {
		index := IndexName(i.indexPrefix, storeID)
		err := i.client.DeleteIndex(ctx, []string{index})
		if err != nil && !errors.Is(err, searchstore.ErrResourceNotFound) {
			return fmt.Errorf("deleting index %s: %w", index, err)
		}

		i.indicesMu.Lock()
		delete(i.indices, index)
		i.indicesMu.Unlock()
		i.logger.Info("index deleted", loglib.Fields{"index": index})
	}
	return nil
}

// IndexExists reports whether the search index of the store exists.
func (i *Indexer) IndexExists(ctx context.Context, storeID catalog.StoreID) (string, bool, error) {
	index := IndexName(i.indexPrefix, storeID)
	exists, err := i.client.IndexExists(ctx, index)
	if err != nil {
		return index, false, fmt.Errorf("checking index %s: %w", index, err)
	}
	return index, exists, nil
}

func (i *Indexer) ensureIndex(ctx context.Context, index string) error {
	i.indicesMu.Lock()
	defer i.indicesMu.Unlock()

	if _, found := i.indices[index]; found {
		return nil
	}

	exists, err := i.client.IndexExists(ctx, index)
	if err != nil {
		return fmt.Errorf("checking index %s exists: %w", index, err)
	}

	if !exists {
		body, err := searchstore.IndexBody(i.client.GetMapper(), catalogFieldTemplates)
		if err != nil {
			return fmt.Errorf("building index %s body: %w", index, err)
		}
		err = i.client.CreateIndex(ctx, index, body)
		// the index might have been created concurrently by another process
		alreadyExistsErr := searchstore.ErrResourceAlreadyExists{}
		if err != nil && !errors.As(err, &alreadyExistsErr) {
			return fmt.Errorf("creating index %s: %w", index, err)
		}
		i.logger.Info("index created", loglib.Fields{"index": index})
	}

	i.indices[index] = struct{}{}
	return nil
}

func (i *Indexer) withRetry(ctx context.Context, op func() error, fields loglib.Fields) error {
	numRetries := 0
	bo := i.backoffProvider(ctx)
	return bo.RetryNotify(func() error {
		err := op()
		if err == nil {
			return nil
		}
		retryableErr := searchstore.RetryableError{}
		if !errors.As(err, &retryableErr) {
			return fmt.Errorf("%w: %w", err, backoff.ErrPermanent)
		}
		return err
	}, func(err error, d time.Duration) {
		numRetries++
		i.logger.Warn(err, "search store request failed, retrying", loglib.MergeFields(fields, loglib.Fields{
			"retries": numRetries,
			"backoff": d.String(),
		}))
	})
}

func (c *Config) indexPrefix() string {
	if c.IndexPrefix != "" {
		return c.IndexPrefix
	}
	return defaultIndexPrefix
}

func (c *Config) backoffConfig() *backoff.Config {
	if c.Backoff.Exponential != nil || c.Backoff.Constant != nil {
		return &c.Backoff
	}
	return &backoff.Config{
		Exponential: &backoff.ExponentialConfig{
			InitialInterval: defaultRetryInitialInterval,
			MaxInterval:     defaultRetryMaxInterval,
		},
	}
}
