// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"context"
	"fmt"
	"strings"

	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/document"
	loglib "github.com/xataio/catalogsearch/pkg/log"
)

// Mapper maps the raw attribute values of a catalog item into a search
// document for the given store.
type Mapper interface {
	Map(ctx context.Context, itemID catalog.ItemID, values *catalog.AttributeValues, storeID catalog.StoreID, fieldCtx catalog.FieldContext) (*document.Document, error)
}

// FieldMapper is the default Mapper implementation. It holds no state between
// calls and is safe for concurrent use as long as its collaborators are.
type FieldMapper struct {
	provider   catalog.IndexDataProvider
	attributes catalog.AttributeLookup
	fieldNames catalog.FieldNameResolver
	dates      catalog.DateFormatter
	stores     catalog.StoreResolver
	logger     loglib.Logger

	skipList        map[string]struct{}
	singlePassRoles bool
	expansions      map[string]expansion
}

type Collaborators struct {
	Provider   catalog.IndexDataProvider
	Attributes catalog.AttributeLookup
	FieldNames catalog.FieldNameResolver
	Dates      catalog.DateFormatter
	Stores     catalog.StoreResolver
}

type Option func(*FieldMapper)

const storeIDField = "store_id"

func New(c Collaborators, cfg *Config, opts ...Option) (*FieldMapper, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	m := &FieldMapper{
		provider:        c.Provider,
		attributes:      c.Attributes,
		fieldNames:      c.FieldNames,
		dates:           c.Dates,
		stores:          c.Stores,
		logger:          loglib.NewNoopLogger(),
		skipList:        cfg.skipList(),
		singlePassRoles: cfg.singlePassRoles(),
		expansions:      defaultExpansions(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

func WithLogger(l loglib.Logger) Option {
	return func(m *FieldMapper) {
		m.logger = loglib.NewLogger(l).WithFields(loglib.Fields{
			loglib.ModuleField: "catalog_field_mapper",
		})
	}
}

// Map builds the search document for the item in the given store. Any
// collaborator failure aborts the mapping and no document is returned.
func (m *FieldMapper) Map(ctx context.Context, itemID catalog.ItemID, values *catalog.AttributeValues, storeID catalog.StoreID, fieldCtx catalog.FieldContext) (*document.Document, error) {
	builder := document.NewBuilder()
	builder.AddField(storeIDField, int64(storeID))

	// an empty seed maps no attributes, it is not sent to the provider
	indexData := catalog.NewAttributeValues()
	if values.Len() > 0 {
		resolved, err := m.provider.GetFullProductIndexData(ctx, itemID, values)
		if err != nil {
			return nil, collaboratorErr("getting full product index data", err)
		}
		if resolved != nil {
			indexData = resolved
		}
	}

	for code, value := range indexData.All() {
		if strings.HasSuffix(code, catalog.ValueSuffix) {
			builder.AddField(code, value)
			continue
		}

		attribute, err := m.attributes.GetAttribute(ctx, code)
		if err != nil {
			return nil, collaboratorErr(fmt.Sprintf("getting attribute %s", code), err)
		}
		if attribute == nil || m.isSkipped(code) {
			m.logger.Trace("skipping attribute", loglib.Fields{loglib.AttributeField: code, loglib.ItemIDField: int64(itemID)})
			continue
		}

		value, err = m.checkValue(ctx, value, attribute, storeID)
		if err != nil {
			return nil, err
		}
		fieldName, err := m.fieldNames.GetFieldName(ctx, code, fieldCtx)
		if err != nil {
			return nil, collaboratorErr(fmt.Sprintf("resolving field name for %s", code), err)
		}
		builder.AddField(fieldName, value)
	}

	if err := m.processAdvancedAttributes(ctx, builder, itemID, indexData, storeID); err != nil {
		return nil, err
	}

	doc := builder.Build()
	m.logger.Debug("catalog item mapped", loglib.Fields{
		loglib.ItemIDField:  int64(itemID),
		loglib.StoreIDField: int64(storeID),
		"fields":            doc.Len(),
	})
	return doc, nil
}

// checkValue normalises dates through the date formatter and turns comma
// separated multiselect values into space separated ones.
func (m *FieldMapper) checkValue(ctx context.Context, value any, attribute *catalog.AttributeMetadata, storeID catalog.StoreID) (any, error) {
	switch {
	case attribute.IsDate():
		date, err := m.dates.FormatDate(ctx, storeID, value)
		if err != nil {
			return nil, collaboratorErr(fmt.Sprintf("formatting date for %s", attribute.Code), err)
		}
		return date, nil
	case attribute.IsMultiselect():
		return multiselectValue(value), nil
	default:
		return value, nil
	}
}

// multiselectValue renders the selected options space separated. Option lists
// have each option rendered and commas replaced before being joined.
func multiselectValue(value any) string {
	options, ok := value.([]any)
	if !ok {
		return strings.ReplaceAll(catalog.Stringify(value), ",", " ")
	}
	rendered := make([]string, 0, len(options))
	for _, option := range options {
		rendered = append(rendered, strings.ReplaceAll(catalog.Stringify(option), ",", " "))
	}
	return strings.Join(rendered, " ")
}

func (m *FieldMapper) isSkipped(code string) bool {
	_, found := m.skipList[code]
	return found
}

func (c *Collaborators) validate() error {
	switch {
	case c.Provider == nil:
		return fmt.Errorf("%w: index data provider", errMissingCollaborator)
	case c.Attributes == nil:
		return fmt.Errorf("%w: attribute lookup", errMissingCollaborator)
	case c.FieldNames == nil:
		return fmt.Errorf("%w: field name resolver", errMissingCollaborator)
	case c.Dates == nil:
		return fmt.Errorf("%w: date formatter", errMissingCollaborator)
	case c.Stores == nil:
		return fmt.Errorf("%w: store resolver", errMissingCollaborator)
	}
	return nil
}
