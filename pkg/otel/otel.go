// SPDX-License-Identifier: Apache-2.0

package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	// ServiceName reported in the resource of every signal. Defaults to
	// catalogsearch.
	ServiceName string
	Metrics     *MetricsConfig
	Traces      *TracesConfig
}

type MetricsConfig struct {
	Endpoint           string
	CollectionInterval time.Duration
}

type TracesConfig struct {
	Endpoint    string
	SampleRatio float64
}

const (
	defaultServiceName        = "catalogsearch"
	defaultCollectionInterval = 60 * time.Second
)

// Attribute keys shared by the catalog spans and metrics.
const (
	ItemIDKey  = attribute.Key("catalog.item_id")
	StoreIDKey = attribute.Key("catalog.store_id")
	IndexKey   = attribute.Key("search.index")
)

func (c *Config) serviceName() string {
	if c.ServiceName != "" {
		return c.ServiceName
	}
	return defaultServiceName
}

func (c *MetricsConfig) collectionInterval() time.Duration {
	if c.CollectionInterval > 0 {
		return c.CollectionInterval
	}
	return defaultCollectionInterval
}

// CatalogItemAttributes returns the attributes identifying a store scoped
// catalog item.
func CatalogItemAttributes(itemID, storeID int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		ItemIDKey.Int64(itemID),
		StoreIDKey.Int64(storeID),
	}
}

// StartSpan will start a span using the tracer on input. If the tracer is nil,
// the context returned is the same as on input, and the span will be nil.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, nil
	}
	return tracer.Start(ctx, name, opts...)
}

// CloseSpan records the error, if any, and ends the span. Nil spans are
// ignored.
func CloseSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
