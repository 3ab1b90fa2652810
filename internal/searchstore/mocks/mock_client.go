// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync/atomic"

	"github.com/xataio/catalogsearch/internal/searchstore"
)

type Client struct {
	CreateIndexFn    func(ctx context.Context, index string, body map[string]any) error
	DeleteIndexFn    func(ctx context.Context, index []string) error
	IndexExistsFn    func(ctx context.Context, index string) (bool, error)
	IndexWithIDFn    func(ctx context.Context, i uint, req *searchstore.IndexWithIDRequest) error
	GetMapperFn      func() searchstore.Mapper
	indexWithIDCalls uint32
}

func (m *Client) CreateIndex(ctx context.Context, index string, body map[string]any) error {
	return m.CreateIndexFn(ctx, index, body)
}

func (m *Client) DeleteIndex(ctx context.Context, index []string) error {
	return m.DeleteIndexFn(ctx, index)
}

func (m *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	return m.IndexExistsFn(ctx, index)
}

func (m *Client) IndexWithID(ctx context.Context, req *searchstore.IndexWithIDRequest) error {
	i := atomic.AddUint32(&m.indexWithIDCalls, 1)
	return m.IndexWithIDFn(ctx, uint(i), req)
}

func (m *Client) GetMapper() searchstore.Mapper {
	return m.GetMapperFn()
}

func (m *Client) IndexWithIDCalls() uint {
	return uint(atomic.LoadUint32(&m.indexWithIDCalls))
}
