// SPDX-License-Identifier: Apache-2.0

package instrumentation

import (
	"context"
	"fmt"
	"strings"
	"time"

	pglib "github.com/xataio/catalogsearch/internal/postgres"
	"github.com/xataio/catalogsearch/pkg/otel"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Querier struct {
	inner   pglib.Querier
	tracer  trace.Tracer
	meter   metric.Meter
	metrics *metrics
}

type metrics struct {
	queryLatency metric.Int64Histogram
}

const (
	queryTypeAttributeKey = "query_type"
	queryAttributeKey     = "query"
	unknownQueryType      = "unknown"
)

func NewQuerier(q pglib.Querier, instrumentation *otel.Instrumentation) (pglib.Querier, error) {
	if instrumentation == nil {
		return q, nil
	}

	querier := &Querier{
		inner:   q,
		tracer:  instrumentation.Tracer,
		meter:   instrumentation.Meter,
		metrics: &metrics{},
	}

	if err := querier.initMetrics(); err != nil {
		return nil, fmt.Errorf("initialising postgres querier metrics: %w", err)
	}

	return querier, nil
}

func (i *Querier) Query(ctx context.Context, query string, args ...any) (rows pglib.Rows, err error) {
	queryAttrs := queryAttributes(query)
	ctx, span := otel.StartSpan(ctx, i.tracer, "querier.Query", trace.WithAttributes(queryAttrs...))
	defer func() { otel.CloseSpan(span, err) }()
	defer i.recordLatency(ctx, time.Now(), queryAttrs)

	return i.inner.Query(ctx, query, args...)
}

// QueryRow spans until the row is scanned, since pgx defers the error to Scan.
func (i *Querier) QueryRow(ctx context.Context, query string, args ...any) pglib.Row {
	queryAttrs := queryAttributes(query)
	ctx, span := otel.StartSpan(ctx, i.tracer, "querier.QueryRow", trace.WithAttributes(queryAttrs...))
	startTime := time.Now()

	return &row{
		inner: i.inner.QueryRow(ctx, query, args...),
		done: func(err error) {
			i.recordLatency(ctx, startTime, queryAttrs)
			otel.CloseSpan(span, err)
		},
	}
}

func (i *Querier) Exec(ctx context.Context, query string, args ...any) (tag pglib.CommandTag, err error) {
	queryAttrs := queryAttributes(query)
	ctx, span := otel.StartSpan(ctx, i.tracer, "querier.Exec", trace.WithAttributes(queryAttrs...))
	defer func() { otel.CloseSpan(span, err) }()
	defer i.recordLatency(ctx, time.Now(), queryAttrs)

	return i.inner.Exec(ctx, query, args...)
}

func (i *Querier) Ping(ctx context.Context) (err error) {
	ctx, span := otel.StartSpan(ctx, i.tracer, "querier.Ping")
	defer func() { otel.CloseSpan(span, err) }()
	return i.inner.Ping(ctx)
}

func (i *Querier) Close(ctx context.Context) error {
	return i.inner.Close(ctx)
}

func (i *Querier) recordLatency(ctx context.Context, startTime time.Time, attrs []attribute.KeyValue) {
	if i.meter == nil {
		return
	}
	i.metrics.queryLatency.Record(ctx, time.Since(startTime).Milliseconds(), metric.WithAttributes(attrs...))
}

func (i *Querier) initMetrics() error {
	if i.meter == nil {
		return nil
	}

	var err error
	i.metrics.queryLatency, err = i.meter.Int64Histogram("catalogsearch.postgres.querier.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Distribution of the time taken to perform a query"))
	if err != nil {
		return err
	}

	return nil
}

type row struct {
	inner pglib.Row
	done  func(error)
}

func (r *row) Scan(dest ...any) error {
	err := r.inner.Scan(dest...)
	r.done(err)
	return err
}

func queryAttributes(query string) []attribute.KeyValue {
	var qt string
	switch query {
	case "":
		qt = unknownQueryType
	default:
		qt = strings.ToUpper(strings.Fields(query)[0])
	}

	attrs := []attribute.KeyValue{
		{
			Key:   queryTypeAttributeKey,
			Value: attribute.StringValue(qt),
		},
	}

	if qt == unknownQueryType {
		return attrs
	}

	return append(attrs, attribute.KeyValue{
		Key:   queryAttributeKey,
		Value: attribute.StringValue(query),
	})
}
