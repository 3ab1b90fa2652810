// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"

	migratorlib "github.com/xataio/catalogsearch/internal/migrator"
	pglib "github.com/xataio/catalogsearch/internal/postgres"
	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/indexer"
	loglib "github.com/xataio/catalogsearch/pkg/log"
)

type migrator interface {
	Up() error
	Down() error
	Close()
}

type indexDeleter interface {
	DeleteIndices(ctx context.Context, storeIDs []catalog.StoreID) error
}

// Init creates the catalog schema and tables in the configured postgres
// source. It is safe to run on an already initialised database.
func Init(ctx context.Context, logger loglib.Logger, config *Config) error {
	pgURL := config.PostgresURL()
	if pgURL == "" {
		return errMissingPostgresURL
	}

	conn, err := pglib.NewConnPool(ctx, pgURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	// the schema must exist before the migrations table is created under it
	if err := createSchema(ctx, conn, config.PostgresSchema()); err != nil {
		return err
	}

	m, err := newCatalogMigrator(pgURL, config.PostgresSchema())
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return fmt.Errorf("failed to run catalog migrations: %w", err)
	}

	logger.Info("catalog tables initialised", loglib.Fields{"schema": config.PostgresSchema()})
	return nil
}

// Destroy reverts the catalog migrations in the configured postgres source
// and removes the search indices of the given stores when a search target is
// configured.
func Destroy(ctx context.Context, logger loglib.Logger, config *Config, stores []catalog.StoreID) error {
	pgURL := config.PostgresURL()
	if pgURL == "" {
		return errMissingPostgresURL
	}

	m, err := newCatalogMigrator(pgURL, config.PostgresSchema())
	if err != nil {
		return err
	}
	defer m.Close()

	var deleter indexDeleter
	if config.Target.Search != nil && len(stores) > 0 {
		if err := config.Target.Search.IsValid(); err != nil {
			return fmt.Errorf("incompatible configuration: %w", err)
		}
		client, err := newSearchClient(config.Target.Search)
		if err != nil {
			return fmt.Errorf("error setting up search client: %w", err)
		}
		deleter = indexer.New(nil, client, &config.Target.Search.Indexer, indexer.WithLogger(logger))
	}

	return destroy(ctx, m, deleter, stores)
}

func destroy(ctx context.Context, m migrator, deleter indexDeleter, stores []catalog.StoreID) error {
	if err := m.Down(); err != nil {
		return fmt.Errorf("failed to revert catalog migrations: %w", err)
	}

	if deleter == nil {
		return nil
	}
	if err := deleter.DeleteIndices(ctx, stores); err != nil {
		return fmt.Errorf("failed to delete search indices: %w", err)
	}
	return nil
}

func createSchema(ctx context.Context, querier pglib.Querier, schema string) error {
	if _, err := querier.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pglib.QuoteIdentifier(schema))); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}
	return nil
}

func newCatalogMigrator(pgURL, schema string) (migrator, error) {
	m, err := migratorlib.NewPGMigrator(pgURL, schema, []*migratorlib.MigrationAssets{
		migratorlib.GetCatalogMigrationAssets(),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating postgres migrator: %w", err)
	}
	return m, nil
}
