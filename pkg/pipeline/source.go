// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"

	pglib "github.com/xataio/catalogsearch/internal/postgres"
	pginstrumentation "github.com/xataio/catalogsearch/internal/postgres/instrumentation"
	pgretrier "github.com/xataio/catalogsearch/internal/postgres/retrier"
	"github.com/xataio/catalogsearch/internal/searchstore"
	"github.com/xataio/catalogsearch/internal/searchstore/elasticsearch"
	"github.com/xataio/catalogsearch/internal/searchstore/opensearch"
	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/cache"
	"github.com/xataio/catalogsearch/pkg/catalog/datefmt"
	"github.com/xataio/catalogsearch/pkg/catalog/fieldname"
	"github.com/xataio/catalogsearch/pkg/catalog/mapper"
	mapperinstrumentation "github.com/xataio/catalogsearch/pkg/catalog/mapper/instrumentation"
	pgcatalog "github.com/xataio/catalogsearch/pkg/catalog/postgres"
	"github.com/xataio/catalogsearch/pkg/catalog/static"
	loglib "github.com/xataio/catalogsearch/pkg/log"
	"github.com/xataio/catalogsearch/pkg/otel"
	tlslib "github.com/xataio/catalogsearch/pkg/tls"
)

// ItemSource lists the catalog items and returns their stored values.
type ItemSource interface {
	ListItems(ctx context.Context) ([]catalog.ItemID, error)
	Product(ctx context.Context, itemID catalog.ItemID) (*catalog.AttributeValues, error)
}

type catalogSource interface {
	ItemSource
	catalog.IndexDataProvider
	catalog.AttributeLookup
	catalog.StoreResolver
}

// source bundles the catalog collaborators of the configured source.
type source struct {
	catalogSource
	// attributes is the lookup used by the mapper, cached for the postgres
	// source.
	attributes     catalog.AttributeLookup
	attributeCache *cache.AttributeCache
	close          func(context.Context) error
}

func newSource(ctx context.Context, config *Config, logger loglib.Logger, instrumentation *otel.Instrumentation) (*source, error) {
	switch {
	case config.Source.Static != nil:
		c, err := static.LoadFile(config.Source.Static.File)
		if err != nil {
			return nil, err
		}
		return newStaticSource(c), nil
	case config.Source.Postgres != nil:
		return newPostgresSource(ctx, config, logger, instrumentation)
	default:
		return nil, errMissingSource
	}
}

func newStaticSource(c *static.Catalog) *source {
	return &source{
		catalogSource: c,
		attributes:    c,
		close:         func(context.Context) error { return nil },
	}
}

func newPostgresSource(ctx context.Context, config *Config, logger loglib.Logger, instrumentation *otel.Instrumentation) (*source, error) {
	pgCfg := config.Source.Postgres
	var querier pglib.Querier
	querier, err := pgretrier.NewQuerier(ctx, pgCfg.RetryPolicy, pglib.ConnPoolBuilder(pgCfg.Provider.URL), logger)
	if err != nil {
		return nil, fmt.Errorf("error setting up postgres querier: %w", err)
	}

	if instrumentation.IsEnabled() {
		querier, err = pginstrumentation.NewQuerier(querier, instrumentation)
		if err != nil {
			return nil, err
		}
	}

	provider := pgcatalog.NewProviderWithQuerier(querier, pgCfg.Provider.Schema, pgcatalog.WithLogger(logger))
	return newCachedSource(provider, config.Cache, logger), nil
}

func newCachedSource(provider catalogSource, cfg CacheConfig, logger loglib.Logger) *source {
	attributeCache := cache.NewAttributeCache(provider,
		cache.WithLogger(logger),
		cache.WithRefreshInterval(cfg.RefreshInterval))

	closeFn := func(context.Context) error { return nil }
	if closer, ok := provider.(interface{ Close(context.Context) error }); ok {
		closeFn = closer.Close
	}

	return &source{
		catalogSource:  provider,
		attributes:     attributeCache,
		attributeCache: attributeCache,
		close:          closeFn,
	}
}

func (s *source) Close(ctx context.Context) error {
	return s.close(ctx)
}

// runAttributeCache warms up the attribute cache and keeps it refreshed in
// the background. The returned function stops the refresh and waits for it.
func (s *source) runAttributeCache(ctx context.Context, logger loglib.Logger) (stop func()) {
	if s.attributeCache == nil {
		return func() {}
	}

	if err := s.attributeCache.Refresh(ctx); err != nil {
		logger.Warn(err, "warming up attribute cache")
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.attributeCache.Run(ctx)
	}()

	return func() {
		cancel()
		<-done
	}
}

func newFieldMapper(src *source, cfg *mapper.Config, logger loglib.Logger, instrumentation *otel.Instrumentation) (mapper.Mapper, error) {
	fieldMapper, err := mapper.New(mapper.Collaborators{
		Provider:   src,
		Attributes: src.attributes,
		FieldNames: fieldname.NewResolver(src.attributes, fieldname.WithLogger(logger)),
		Dates:      datefmt.New(src, datefmt.WithLogger(logger)),
		Stores:     src,
	}, cfg, mapper.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	if instrumentation.IsEnabled() {
		return mapperinstrumentation.NewMapper(fieldMapper, instrumentation)
	}
	return fieldMapper, nil
}

func newSearchClient(cfg *SearchTargetConfig) (searchstore.Client, error) {
	tlsConfig, err := tlslib.NewConfig(&cfg.TLS)
	if err != nil {
		return nil, fmt.Errorf("invalid search target TLS config: %w", err)
	}

	switch cfg.Engine {
	case ElasticsearchEngine:
		return elasticsearch.NewClient(cfg.URL, elasticsearch.WithTLS(tlsConfig))
	case OpenSearchEngine:
		return opensearch.NewClient(cfg.URL, opensearch.WithTLS(tlsConfig))
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedSearchEngine, cfg.Engine)
	}
}
