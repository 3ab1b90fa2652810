// SPDX-License-Identifier: Apache-2.0

package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xataio/catalogsearch/internal/log/zerolog"
	pglib "github.com/xataio/catalogsearch/internal/postgres"
	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/indexer"
	pgcatalog "github.com/xataio/catalogsearch/pkg/catalog/postgres"
	loglib "github.com/xataio/catalogsearch/pkg/log"
	"github.com/xataio/catalogsearch/pkg/pipeline"
)

var (
	pgurl            string
	opensearchURL    string
	elasticsearchURL string
)

const testSchema = "catalog"

// seedQueries load two products in the catalog index tables: item 42 with
// structured tier price, stock, price and category data, and item 43 with a
// multiselect value and a flat category record.
var seedQueries = []string{
	`insert into catalog.catalog_store(store_id, website_id, code, timezone) values
		(1, 1, 'default', 'UTC'),
		(2, 2, 'fr', 'Europe/Paris')`,
	`insert into catalog.catalog_attribute(attribute_code, backend_type, frontend_input) values
		('name', 'varchar', 'text'),
		('color', 'varchar', 'multiselect'),
		('news_from_date', 'datetime', 'date'),
		('price', 'decimal', 'price'),
		('tier_price', 'decimal', 'text'),
		('quantity_and_stock_status', 'int', 'select')`,
	`insert into catalog.catalog_product_index(item_id, attribute_values) values
		(42, '{"price_value":"199.00","news_from_date":"2024-03-01 10:00:00","quantity_and_stock_status":{"is_in_stock":true,"qty":5},"tier_price":[{"price_id":1,"website_id":1,"all_groups":true,"cust_group":0,"price_qty":"2","website_price":"9.99","price":"9.99"}]}'),
		(43, '{"name":"Sandals","color":"red,blue"}')`,
	`insert into catalog.catalog_price_index(item_id, website_id, customer_group_id, final_price) values
		(42, 1, 0, 199.0),
		(42, 1, 1, 189.5),
		(42, 2, 0, 209.0)`,
	`insert into catalog.catalog_category_index(item_id, store_id, category_id, position, category_name) values
		(42, 1, 5, 1, 'Shoes'),
		(42, 2, 5, 1, 'Chaussures')`,
}

func seedCatalog(ctx context.Context) error {
	pool, err := pglib.NewConnPool(ctx, pgurl)
	if err != nil {
		return err
	}
	defer pool.Close(ctx)

	for _, query := range seedQueries {
		if _, err := pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
	}
	return nil
}

func testLogger() loglib.Logger {
	return zerolog.NewStdLogger(zerolog.NewLogger(&zerolog.Config{
		LogLevel: "debug",
	}))
}

func testPostgresConfig() *pipeline.Config {
	return &pipeline.Config{
		Source: pipeline.SourceConfig{
			Postgres: &pipeline.PostgresSourceConfig{
				Provider: pgcatalog.Config{
					URL:    pgurl,
					Schema: testSchema,
				},
			},
		},
	}
}

func testSearchConfig(engine, url, prefix string) *pipeline.Config {
	cfg := testPostgresConfig()
	cfg.Target.Search = &pipeline.SearchTargetConfig{
		Engine: engine,
		URL:    url,
		Indexer: indexer.Config{
			IndexPrefix: prefix,
			Refresh:     "true",
		},
	}
	return cfg
}

// getDocument reads the source of the document from the search engine rest
// api, common to both engines.
func getDocument(t *testing.T, url, prefix string, storeID catalog.StoreID, itemID catalog.ItemID) gjson.Result {
	t.Helper()

	resp, err := http.Get(fmt.Sprintf("%s/%s/_doc/%d", url, indexer.IndexName(prefix, storeID), itemID)) //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return gjson.GetBytes(body, "_source")
}
