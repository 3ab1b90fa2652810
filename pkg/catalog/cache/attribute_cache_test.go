// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	synclib "github.com/xataio/catalogsearch/internal/sync"
	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/mocks"
)

var (
	errTest       = errors.New("oh noes")
	testAttribute = &catalog.AttributeMetadata{Code: "color", BackendType: "varchar", FrontendInput: "multiselect"}
)

type mockAttributeLister struct {
	mocks.AttributeLookup
	listAttributesFn func(ctx context.Context) (map[string]*catalog.AttributeMetadata, error)
}

func (m *mockAttributeLister) ListAttributes(ctx context.Context) (map[string]*catalog.AttributeMetadata, error) {
	return m.listAttributesFn(ctx)
}

func TestAttributeCache_GetAttribute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lookup catalog.AttributeLookup
		cached map[string]*catalog.AttributeMetadata

		wantMetadata *catalog.AttributeMetadata
		wantCached   bool
		wantErr      error
	}{
		{
			name: "ok - cache miss",
			lookup: &mocks.AttributeLookup{
				GetAttributeFn: func(_ context.Context, code string) (*catalog.AttributeMetadata, error) {
					require.Equal(t, "color", code)
					return testAttribute, nil
				},
			},
			cached: map[string]*catalog.AttributeMetadata{},

			wantMetadata: testAttribute,
			wantCached:   true,
		},
		{
			name: "ok - cache hit",
			lookup: &mocks.AttributeLookup{
				GetAttributeFn: func(_ context.Context, _ string) (*catalog.AttributeMetadata, error) {
					return nil, errors.New("GetAttributeFn: should not be called")
				},
			},
			cached: map[string]*catalog.AttributeMetadata{"color": testAttribute},

			wantMetadata: testAttribute,
			wantCached:   true,
		},
		{
			name: "ok - unknown attribute is cached",
			lookup: &mocks.AttributeLookup{
				GetAttributeFn: func(_ context.Context, _ string) (*catalog.AttributeMetadata, error) {
					return nil, nil
				},
			},
			cached: map[string]*catalog.AttributeMetadata{},

			wantMetadata: nil,
			wantCached:   true,
		},
		{
			name: "ok - cached unknown attribute",
			lookup: &mocks.AttributeLookup{
				GetAttributeFn: func(_ context.Context, _ string) (*catalog.AttributeMetadata, error) {
					return nil, errors.New("GetAttributeFn: should not be called")
				},
			},
			cached: map[string]*catalog.AttributeMetadata{"color": nil},

			wantMetadata: nil,
			wantCached:   true,
		},
		{
			name: "error - lookup",
			lookup: &mocks.AttributeLookup{
				GetAttributeFn: func(_ context.Context, _ string) (*catalog.AttributeMetadata, error) {
					return nil, errTest
				},
			},
			cached: map[string]*catalog.AttributeMetadata{},

			wantErr:    errTest,
			wantCached: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := NewAttributeCache(tc.lookup)
			c.attributes.Replace(tc.cached)

			metadata, err := c.GetAttribute(context.Background(), "color")
			require.ErrorIs(t, err, tc.wantErr)
			require.Equal(t, tc.wantMetadata, metadata)

			_, found := c.attributes.Get("color")
			require.Equal(t, tc.wantCached, found)
		})
	}
}

func TestAttributeCache_GetAttribute_ConcurrentMisses(t *testing.T) {
	t.Parallel()

	var calls int32
	release := make(chan struct{})
	c := NewAttributeCache(&mocks.AttributeLookup{
		GetAttributeFn: func(_ context.Context, _ string) (*catalog.AttributeMetadata, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return testAttribute, nil
		},
	})

	const lookups = 10
	wg := sync.WaitGroup{}
	results := make([]*catalog.AttributeMetadata, lookups)
	for i := range lookups {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metadata, err := c.GetAttribute(context.Background(), "color")
			require.NoError(t, err)
			results[i] = metadata
		}()
	}

	// let all the lookups reach the inner call before releasing it
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, metadata := range results {
		require.Equal(t, testAttribute, metadata)
	}
}

func TestAttributeCache_Refresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lookup catalog.AttributeLookup

		wantAttributes map[string]*catalog.AttributeMetadata
		wantErr        error
	}{
		{
			name: "ok - lister reloads",
			lookup: &mockAttributeLister{
				listAttributesFn: func(_ context.Context) (map[string]*catalog.AttributeMetadata, error) {
					return map[string]*catalog.AttributeMetadata{"color": testAttribute}, nil
				},
			},
			wantAttributes: map[string]*catalog.AttributeMetadata{"color": testAttribute},
		},
		{
			name: "ok - lister returns nothing",
			lookup: &mockAttributeLister{
				listAttributesFn: func(_ context.Context) (map[string]*catalog.AttributeMetadata, error) {
					return nil, nil
				},
			},
			wantAttributes: map[string]*catalog.AttributeMetadata{},
		},
		{
			name:           "ok - lookup without lister empties the cache",
			lookup:         &mocks.AttributeLookup{},
			wantAttributes: map[string]*catalog.AttributeMetadata{},
		},
		{
			name: "error - listing keeps previous contents",
			lookup: &mockAttributeLister{
				listAttributesFn: func(_ context.Context) (map[string]*catalog.AttributeMetadata, error) {
					return nil, errTest
				},
			},
			wantAttributes: map[string]*catalog.AttributeMetadata{"name": nil},
			wantErr:        errTest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := NewAttributeCache(tc.lookup)
			c.attributes.Replace(map[string]*catalog.AttributeMetadata{"name": nil})

			err := c.Refresh(context.Background())
			require.ErrorIs(t, err, tc.wantErr)
			wantAttributes := synclib.NewMap[string, *catalog.AttributeMetadata]()
			wantAttributes.Replace(tc.wantAttributes)
			require.Equal(t, wantAttributes, c.attributes)
		})
	}
}

func TestAttributeCache_Run(t *testing.T) {
	t.Parallel()

	refreshed := make(chan struct{}, 1)
	lister := &mockAttributeLister{
		listAttributesFn: func(_ context.Context) (map[string]*catalog.AttributeMetadata, error) {
			defer func() { refreshed <- struct{}{} }()
			return map[string]*catalog.AttributeMetadata{"color": testAttribute}, nil
		},
	}

	fakeClock := clockwork.NewFakeClock()
	c := NewAttributeCache(lister, withClock(fakeClock), WithRefreshInterval(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- c.Run(ctx)
	}()

	require.NoError(t, fakeClock.BlockUntilContext(ctx, 1))
	require.Equal(t, 0, c.Len())
	fakeClock.Advance(time.Second)

	select {
	case <-refreshed:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for cache refresh")
	}

	cancel()
	select {
	case err := <-runErr:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for Run to return")
	}
	require.Equal(t, 1, c.Len())
}
