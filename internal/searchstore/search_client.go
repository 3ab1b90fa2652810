// SPDX-License-Identifier: Apache-2.0

package searchstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xataio/catalogsearch/internal/json"
)

// Client is the subset of the Elasticsearch/OpenSearch API used to maintain
// the catalog indices.
type Client interface {
	CreateIndex(ctx context.Context, index string, body map[string]any) error
	DeleteIndex(ctx context.Context, index []string) error
	IndexExists(ctx context.Context, index string) (bool, error)
	IndexWithID(ctx context.Context, req *IndexWithIDRequest) error
	GetMapper() Mapper
}

type IndexWithIDRequest struct {
	Index string
	ID    string
	Body  []byte
	// Refresh is one of "true", "false" or "wait_for". Empty uses the store
	// default.
	Refresh string
}

// CreateReader returns a reader on the JSON representation of the given value.
func CreateReader(value any) (*bytes.Reader, error) {
	bytesValue, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("unexpected marshaling error: %w", err)
	}
	return bytes.NewReader(bytesValue), nil
}
