// SPDX-License-Identifier: Apache-2.0

package instrumentation

import (
	"context"
	"errors"
	"fmt"

	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/document"
	"github.com/xataio/catalogsearch/pkg/catalog/mapper"
	"github.com/xataio/catalogsearch/pkg/otel"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Mapper struct {
	inner   mapper.Mapper
	tracer  trace.Tracer
	meter   metric.Meter
	metrics *mapperMetrics
}

type mapperMetrics struct {
	documentFields metric.Int64Histogram
	mapErrors      metric.Int64Counter
}

const (
	errorKindCollaborator = "collaborator"
	errorKindMalformed    = "malformed_value"
	errorKindOther        = "other"
)

func NewMapper(inner mapper.Mapper, instrumentation *otel.Instrumentation) (mapper.Mapper, error) {
	if instrumentation == nil {
		return inner, nil
	}

	m := &Mapper{
		inner:   inner,
		tracer:  instrumentation.Tracer,
		meter:   instrumentation.Meter,
		metrics: &mapperMetrics{},
	}

	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("error initialising catalog mapper metrics: %w", err)
	}

	return m, nil
}

func (m *Mapper) Map(ctx context.Context, itemID catalog.ItemID, values *catalog.AttributeValues, storeID catalog.StoreID, fieldCtx catalog.FieldContext) (doc *document.Document, err error) {
	spanAttrs := append(otel.CatalogItemAttributes(int64(itemID), int64(storeID)),
		attribute.Int("catalog.attribute_count", values.Len()))
	ctx, span := otel.StartSpan(ctx, m.tracer, "catalogmapper.Map", trace.WithAttributes(spanAttrs...))
	defer func() { otel.CloseSpan(span, err) }()

	doc, err = m.inner.Map(ctx, itemID, values, storeID, fieldCtx)
	if m.meter == nil {
		return doc, err
	}

	storeAttr := otel.StoreIDKey.Int64(int64(storeID))
	if err != nil {
		m.metrics.mapErrors.Add(ctx, 1, metric.WithAttributes(storeAttr, attribute.String("kind", errorKind(err))))
		return doc, err
	}
	m.metrics.documentFields.Record(ctx, int64(doc.Len()), metric.WithAttributes(storeAttr))
	return doc, nil
}

func (m *Mapper) initMetrics() error {
	if m.meter == nil {
		return nil
	}

	var err error
	m.metrics.documentFields, err = m.meter.Int64Histogram("catalogsearch.mapper.document.fields",
		metric.WithUnit("fields"),
		metric.WithDescription("Distribution of the number of fields per mapped document"))
	if err != nil {
		return err
	}

	m.metrics.mapErrors, err = m.meter.Int64Counter("catalogsearch.mapper.errors",
		metric.WithUnit("errors"),
		metric.WithDescription("Count of failed item mappings by kind"))
	if err != nil {
		return err
	}

	return nil
}

func errorKind(err error) string {
	var collaboratorErr mapper.ErrCollaborator
	if errors.As(err, &collaboratorErr) {
		return errorKindCollaborator
	}
	var malformedErr catalog.ErrMalformedValue
	if errors.As(err, &malformedErr) {
		return errorKindMalformed
	}
	return errorKindOther
}
