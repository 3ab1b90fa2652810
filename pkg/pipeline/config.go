// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/xataio/catalogsearch/internal/backoff"
	"github.com/xataio/catalogsearch/pkg/catalog/indexer"
	"github.com/xataio/catalogsearch/pkg/catalog/mapper"
	pgcatalog "github.com/xataio/catalogsearch/pkg/catalog/postgres"
	tlslib "github.com/xataio/catalogsearch/pkg/tls"
)

type Config struct {
	Source SourceConfig
	Target TargetConfig
	Mapper mapper.Config
	Cache  CacheConfig
}

type SourceConfig struct {
	Postgres *PostgresSourceConfig
	Static   *StaticSourceConfig
}

type PostgresSourceConfig struct {
	Provider pgcatalog.Config
	// RetryPolicy applied to failed postgres queries. No retries when empty.
	RetryPolicy backoff.Config
}

type StaticSourceConfig struct {
	File string
}

type TargetConfig struct {
	Search *SearchTargetConfig
}

type SearchTargetConfig struct {
	// Engine is one of elasticsearch or opensearch.
	Engine  string
	URL     string
	TLS     tlslib.Config
	Indexer indexer.Config
}

type CacheConfig struct {
	// RefreshInterval of the attribute metadata cache used with the postgres
	// source. Zero uses the cache default.
	RefreshInterval time.Duration
}

const (
	ElasticsearchEngine = "elasticsearch"
	OpenSearchEngine    = "opensearch"
)

var (
	errMissingSource           = errors.New("a postgres or static source is required")
	errMultipleSources         = errors.New("only one source can be configured")
	errMissingStaticFile       = errors.New("static source file is required")
	errMissingPostgresURL      = errors.New("postgres URL is required")
	errMissingSearchTarget     = errors.New("search target is required")
	errMissingSearchURL        = errors.New("search target URL is required")
	errUnsupportedSearchEngine = errors.New("unsupported search engine")
	errMissingStores           = errors.New("at least one store is required")
)

func (c *Config) IsValid() error {
	if err := c.Source.IsValid(); err != nil {
		return err
	}
	if c.Target.Search != nil {
		return c.Target.Search.IsValid()
	}
	return nil
}

func (c *SourceConfig) IsValid() error {
	switch {
	case c.Postgres == nil && c.Static == nil:
		return errMissingSource
	case c.Postgres != nil && c.Static != nil:
		return errMultipleSources
	case c.Static != nil && c.Static.File == "":
		return errMissingStaticFile
	case c.Postgres != nil && c.Postgres.Provider.URL == "":
		return errMissingPostgresURL
	default:
		return nil
	}
}

func (c *SearchTargetConfig) IsValid() error {
	switch c.Engine {
	case ElasticsearchEngine, OpenSearchEngine:
	default:
		return fmt.Errorf("%w: %q", errUnsupportedSearchEngine, c.Engine)
	}
	if c.URL == "" {
		return errMissingSearchURL
	}
	return nil
}

func (c *Config) PostgresURL() string {
	if c.Source.Postgres == nil {
		return ""
	}
	return c.Source.Postgres.Provider.URL
}

func (c *Config) PostgresSchema() string {
	if c.Source.Postgres == nil || c.Source.Postgres.Provider.Schema == "" {
		return defaultSchema
	}
	return c.Source.Postgres.Provider.Schema
}

const defaultSchema = "public"
