// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"errors"
	"fmt"

	pglib "github.com/xataio/catalogsearch/internal/postgres"
	"github.com/xataio/catalogsearch/pkg/catalog"
	loglib "github.com/xataio/catalogsearch/pkg/log"
)

// Provider reads the catalog index tables. It implements the
// IndexDataProvider, AttributeLookup and StoreResolver interfaces.
type Provider struct {
	querier pglib.Querier
	schema  string
	logger  loglib.Logger
}

type Config struct {
	URL string
	// Schema holding the catalog tables. Defaults to public.
	Schema string
}

type Option func(*Provider)

const (
	defaultSchema = "public"

	productIndexTable  = "catalog_product_index"
	priceIndexTable    = "catalog_price_index"
	categoryIndexTable = "catalog_category_index"
	attributeTable     = "catalog_attribute"
	storeTable         = "catalog_store"
)

func NewProvider(ctx context.Context, cfg Config, opts ...Option) (*Provider, error) {
	pool, err := pglib.NewConnPool(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	return NewProviderWithQuerier(pool, cfg.Schema, opts...), nil
}

func NewProviderWithQuerier(querier pglib.Querier, schema string, opts ...Option) *Provider {
	if schema == "" {
		schema = defaultSchema
	}
	p := &Provider{
		querier: querier,
		schema:  schema,
		logger:  loglib.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func WithLogger(l loglib.Logger) Option {
	return func(p *Provider) {
		p.logger = loglib.NewLogger(l).WithFields(loglib.Fields{
			loglib.ModuleField: "catalog_postgres_provider",
		})
	}
}

// GetFullProductIndexData returns the seed values enriched with the values
// stored in the product index. Stored values replace seed values for the same
// code, keeping the seed position. Items without a stored row return the seed.
func (p *Provider) GetFullProductIndexData(ctx context.Context, itemID catalog.ItemID, seed *catalog.AttributeValues) (*catalog.AttributeValues, error) {
	values := catalog.NewAttributeValues()
	for code, value := range seed.All() {
		values.Set(code, value)
	}

	stored, err := p.storedValues(ctx, itemID)
	switch {
	case errors.Is(err, catalog.ErrItemNotFound):
		p.logger.Trace("no product index data", loglib.Fields{loglib.ItemIDField: itemID})
		return values, nil
	case err != nil:
		return nil, err
	}

	for code, value := range stored.All() {
		values.Set(code, value)
	}
	return values, nil
}

// Product returns the values stored in the product index for the item.
func (p *Provider) Product(ctx context.Context, itemID catalog.ItemID) (*catalog.AttributeValues, error) {
	return p.storedValues(ctx, itemID)
}

func (p *Provider) GetPriceIndexData(ctx context.Context, itemIDs []catalog.ItemID, storeID catalog.StoreID) (catalog.PriceIndex, error) {
	sql := fmt.Sprintf(`select p.item_id, p.customer_group_id, p.final_price from %s p
	join %s s on s.website_id = p.website_id
	where s.store_id = $1 and p.item_id = any($2)
	order by p.item_id, p.customer_group_id`, p.table(priceIndexTable), p.table(storeTable))

	rows, err := p.querier.Query(ctx, sql, int64(storeID), toInt64s(itemIDs))
	if err != nil {
		return nil, fmt.Errorf("fetching price index data for store %d: %w", storeID, err)
	}
	defer rows.Close()

	priceIndex := catalog.PriceIndex{}
	for rows.Next() {
		var (
			itemID, groupID int64
			finalPrice      float64
		)
		if err := rows.Scan(&itemID, &groupID, &finalPrice); err != nil {
			return nil, fmt.Errorf("scanning price index row: %w", err)
		}
		prices, found := priceIndex[catalog.ItemID(itemID)]
		if !found {
			prices = map[catalog.CustomerGroupID]float64{}
			priceIndex[catalog.ItemID(itemID)] = prices
		}
		prices[catalog.CustomerGroupID(groupID)] = finalPrice
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading price index rows: %w", err)
	}

	return priceIndex, nil
}

func (p *Provider) GetFullCategoryProductIndexData(ctx context.Context, storeID catalog.StoreID, itemIDs []catalog.ItemID) (catalog.CategoryIndex, error) {
	sql := fmt.Sprintf(`select item_id, category_id, position, category_name from %s
	where store_id = $1 and item_id = any($2)
	order by item_id, position, category_id`, p.table(categoryIndexTable))

	rows, err := p.querier.Query(ctx, sql, int64(storeID), toInt64s(itemIDs))
	if err != nil {
		return nil, fmt.Errorf("fetching category index data for store %d: %w", storeID, err)
	}
	defer rows.Close()

	categoryIndex := catalog.CategoryIndex{}
	for rows.Next() {
		var (
			itemID, categoryID, position int64
			name                         string
		)
		if err := rows.Scan(&itemID, &categoryID, &position, &name); err != nil {
			return nil, fmt.Errorf("scanning category index row: %w", err)
		}
		record := categoryIndex[catalog.ItemID(itemID)]
		record.Memberships = append(record.Memberships, catalog.CategoryMembership{
			ID:       catalog.CategoryID(categoryID),
			Position: position,
			Name:     name,
		})
		categoryIndex[catalog.ItemID(itemID)] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading category index rows: %w", err)
	}

	return categoryIndex, nil
}

// GetAttribute returns nil when the attribute is not registered.
func (p *Provider) GetAttribute(ctx context.Context, code string) (*catalog.AttributeMetadata, error) {
	sql := fmt.Sprintf(`select attribute_code, backend_type, frontend_input from %s where attribute_code = $1`, p.table(attributeTable))

	m := &catalog.AttributeMetadata{}
	err := p.querier.QueryRow(ctx, sql, code).Scan(&m.Code, &m.BackendType, &m.FrontendInput)
	switch {
	case errors.Is(err, pglib.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("fetching attribute %s: %w", code, err)
	}
	return m, nil
}

// ListAttributes returns every registered attribute, keyed by code.
func (p *Provider) ListAttributes(ctx context.Context) (map[string]*catalog.AttributeMetadata, error) {
	sql := fmt.Sprintf(`select attribute_code, backend_type, frontend_input from %s`, p.table(attributeTable))

	rows, err := p.querier.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("listing attributes: %w", err)
	}
	defer rows.Close()

	attributes := map[string]*catalog.AttributeMetadata{}
	for rows.Next() {
		m := &catalog.AttributeMetadata{}
		if err := rows.Scan(&m.Code, &m.BackendType, &m.FrontendInput); err != nil {
			return nil, fmt.Errorf("scanning attribute row: %w", err)
		}
		attributes[m.Code] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading attribute rows: %w", err)
	}
	return attributes, nil
}

// GetStore returns nil when the store does not exist.
func (p *Provider) GetStore(ctx context.Context, storeID catalog.StoreID) (*catalog.Store, error) {
	sql := fmt.Sprintf(`select store_id, website_id, code, coalesce(timezone, '') from %s where store_id = $1`, p.table(storeTable))

	var id, websiteID int64
	s := &catalog.Store{}
	err := p.querier.QueryRow(ctx, sql, int64(storeID)).Scan(&id, &websiteID, &s.Code, &s.Timezone)
	switch {
	case errors.Is(err, pglib.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("fetching store %d: %w", storeID, err)
	}
	s.ID = catalog.StoreID(id)
	s.WebsiteID = catalog.WebsiteID(websiteID)
	return s, nil
}

// ListItems returns the ids of every item in the product index.
func (p *Provider) ListItems(ctx context.Context) ([]catalog.ItemID, error) {
	sql := fmt.Sprintf(`select item_id from %s order by item_id`, p.table(productIndexTable))

	rows, err := p.querier.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	itemIDs := []catalog.ItemID{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		itemIDs = append(itemIDs, catalog.ItemID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading item rows: %w", err)
	}
	return itemIDs, nil
}

func (p *Provider) storedValues(ctx context.Context, itemID catalog.ItemID) (*catalog.AttributeValues, error) {
	sql := fmt.Sprintf(`select attribute_values::text from %s where item_id = $1`, p.table(productIndexTable))

	var raw string
	err := p.querier.QueryRow(ctx, sql, int64(itemID)).Scan(&raw)
	switch {
	case errors.Is(err, pglib.ErrNoRows):
		return nil, fmt.Errorf("%w: %d", catalog.ErrItemNotFound, itemID)
	case err != nil:
		return nil, fmt.Errorf("fetching product index data for item %d: %w", itemID, err)
	}

	values, err := catalog.ParseAttributeValues([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding product index data for item %d: %w", itemID, err)
	}
	return values, nil
}

func (p *Provider) Close(ctx context.Context) error {
	return p.querier.Close(ctx)
}

func (p *Provider) table(name string) string {
	return pglib.QuoteQualifiedIdentifier(p.schema, name)
}

func toInt64s(itemIDs []catalog.ItemID) []int64 {
	ids := make([]int64, 0, len(itemIDs))
	for _, id := range itemIDs {
		ids = append(ids, int64(id))
	}
	return ids
}
