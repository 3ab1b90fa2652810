// SPDX-License-Identifier: Apache-2.0

package otel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpan(t *testing.T) {
	t.Parallel()

	errTest := errors.New("oh noes")

	tests := []struct {
		name string
		err  error

		wantStatus codes.Code
		wantEvents int
	}{
		{
			name:       "ok",
			err:        nil,
			wantStatus: codes.Unset,
			wantEvents: 0,
		},
		{
			name:       "with error",
			err:        errTest,
			wantStatus: codes.Error,
			wantEvents: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			recorder := tracetest.NewSpanRecorder()
			tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

			_, span := StartSpan(context.Background(), tracer, "catalogmapper.Map")
			CloseSpan(span, tc.err)

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			require.Equal(t, "catalogmapper.Map", spans[0].Name())
			require.Equal(t, tc.wantStatus, spans[0].Status().Code)
			require.Len(t, spans[0].Events(), tc.wantEvents)
		})
	}
}

func TestSpan_NilTracer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	spanCtx, span := StartSpan(ctx, nil, "catalogmapper.Map")
	require.Equal(t, ctx, spanCtx)
	require.Nil(t, span)
	CloseSpan(span, errors.New("ignored"))
}

func TestCatalogItemAttributes(t *testing.T) {
	t.Parallel()

	attrs := CatalogItemAttributes(42, 1)
	require.Len(t, attrs, 2)
	require.Equal(t, ItemIDKey, attrs[0].Key)
	require.Equal(t, int64(42), attrs[0].Value.AsInt64())
	require.Equal(t, StoreIDKey, attrs[1].Key)
	require.Equal(t, int64(1), attrs[1].Value.AsInt64())
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	require.Equal(t, "catalogsearch", (&Config{}).serviceName())
	require.Equal(t, "indexer", (&Config{ServiceName: "indexer"}).serviceName())
	require.Equal(t, 60*time.Second, (&MetricsConfig{}).collectionInterval())
	require.Equal(t, 60*time.Second, (&MetricsConfig{CollectionInterval: -time.Second}).collectionInterval())
	require.Equal(t, 5*time.Second, (&MetricsConfig{CollectionInterval: 5 * time.Second}).collectionInterval())
}

func TestNewInstrumentationProvider_Noop(t *testing.T) {
	t.Parallel()

	provider, err := NewInstrumentationProvider(&Config{})
	require.NoError(t, err)
	require.False(t, provider.NewInstrumentation("map").IsEnabled())
	require.NoError(t, provider.Close())

	provider, err = NewInstrumentationProvider(nil)
	require.NoError(t, err)
	require.Nil(t, provider.NewInstrumentation("index"))
}
