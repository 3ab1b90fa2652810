// SPDX-License-Identifier: Apache-2.0

package testcontainers

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Cleanup terminates the container it was returned with.
type Cleanup func() error

const postgresImage = "postgres:17-alpine"

// SetupPostgresContainer starts a postgres container and sets the connection
// string of the given database on the url on input.
func SetupPostgresContainer(ctx context.Context, url *string, database string) (Cleanup, error) {
	ctr, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase(database),
		postgres.WithUsername("catalog"),
		postgres.WithPassword("catalog"),
		testcontainers.WithWaitStrategy(wait.
			ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	*url, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("retrieving connection string for postgres container: %w", err)
	}

	return func() error {
		return ctr.Terminate(ctx)
	}, nil
}
