// SPDX-License-Identifier: Apache-2.0

package testcontainers

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/modules/opensearch"
)

const (
	opensearchImage    = "opensearchproject/opensearch:2.11.1"
	elasticsearchImage = "docker.elastic.co/elasticsearch/elasticsearch:8.9.0"
)

// SetupOpenSearchContainer starts a single node opensearch cluster with the
// security plugin disabled.
func SetupOpenSearchContainer(ctx context.Context, url *string) (Cleanup, error) {
	ctr, err := opensearch.Run(ctx, opensearchImage)
	if err != nil {
		return nil, fmt.Errorf("failed to start opensearch container: %w", err)
	}

	*url, err = ctr.Address(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieving url for opensearch container: %w", err)
	}

	return func() error {
		return ctr.Terminate(ctx)
	}, nil
}

// SetupElasticsearchContainer starts a single node elasticsearch cluster over
// plain http.
func SetupElasticsearchContainer(ctx context.Context, url *string) (Cleanup, error) {
	ctr, err := elasticsearch.Run(ctx, elasticsearchImage,
		testcontainers.WithEnv(map[string]string{"xpack.security.enabled": "false"}))
	if err != nil {
		return nil, fmt.Errorf("failed to start elasticsearch container: %w", err)
	}

	*url = ctr.Settings.Address

	return func() error {
		return ctr.Terminate(ctx)
	}, nil
}
