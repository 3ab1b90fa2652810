// SPDX-License-Identifier: Apache-2.0

package migrator

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	pgcatalogmigrations "github.com/xataio/catalogsearch/migrations/postgres/catalog"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
)

type Migrator struct {
	migrators []*migrate.Migrate
	assets    []*MigrationAssets
}

type MigrationAssets struct {
	FS        fs.FS
	TableName string
}

type MigrationStatus struct {
	TableName              string
	Version                uint
	Dirty                  bool
	ExpectedMigrationCount uint
}

var (
	ErrNoChange         = errors.New("no change")
	ErrNoAssetsProvided = errors.New("no migration assets provided")
	ErrNoMigration      = errors.New("no migration found")
)

// NewPGMigrator creates a new Migrator instance for the provided Postgres URL
// and migration assets. Each set of assets gets its own migrator, tracked in
// its own migrations table under the given schema, and they are applied in
// the order provided. The schema must exist.
func NewPGMigrator(pgURL, schema string, migrationAssets []*MigrationAssets) (*Migrator, error) {
	if len(migrationAssets) == 0 {
		return nil, ErrNoAssetsProvided
	}

	migrators := make([]*migrate.Migrate, 0, len(migrationAssets))
	for _, assets := range migrationAssets {
		d, err := iofs.New(assets.FS, ".")
		if err != nil {
			return nil, err
		}

		m, err := migrate.NewWithSourceInstance("iofs", d, migrationsURL(pgURL, schema, assets.TableName))
		if err != nil {
			return nil, err
		}
		migrators = append(migrators, m)
	}

	return &Migrator{migrators: migrators, assets: migrationAssets}, nil
}

// Up will apply all the migrations provided in the migration assets.
func (m *Migrator) Up() error {
	for _, migrator := range m.migrators {
		if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return mapError(err)
		}
	}
	return nil
}

// Down will revert the migrations provided in the migration assets. They will
// be reverted in reverse order.
func (m *Migrator) Down() error {
	for i := len(m.migrators) - 1; i >= 0; i-- {
		if err := m.migrators[i].Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return mapError(err)
		}
	}
	return nil
}

func (m *Migrator) Close() {
	for _, migrator := range m.migrators {
		_, _ = migrator.Close()
	}
}

func (m *Migrator) Status() ([]MigrationStatus, error) {
	statuses := make([]MigrationStatus, 0, len(m.migrators))
	for i, migrator := range m.migrators {
		expected, err := countMigrations(m.assets[i].FS)
		if err != nil {
			return nil, err
		}

		version, dirty, err := migrator.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return nil, fmt.Errorf("getting migration version: %w", mapError(err))
		}

		statuses = append(statuses, MigrationStatus{
			TableName:              m.assets[i].TableName,
			Version:                version,
			Dirty:                  dirty,
			ExpectedMigrationCount: expected,
		})
	}

	return statuses, nil
}

func GetCatalogMigrationAssets() *MigrationAssets {
	return &MigrationAssets{
		FS:        pgcatalogmigrations.FS,
		TableName: "schema_migrations_catalog",
	}
}

// migrationsURL scopes the migrations to the schema. The migrations table is
// schema qualified and quoted (%22) so it does not depend on the search path
// being honoured by the provider.
func migrationsURL(pgURL, schema, tableName string) string {
	params := url.Values{}
	params.Set("search_path", schema)
	query := params.Encode() +
		`&x-migrations-table=%22` + url.QueryEscape(schema) + `%22.%22` + url.QueryEscape(tableName) + `%22` +
		`&x-migrations-table-quoted=1`

	if strings.Contains(pgURL, "?") {
		return pgURL + "&" + query
	}
	return pgURL + "?" + query
}

// countMigrations returns the number of up migrations in the assets.
func countMigrations(assets fs.FS) (uint, error) {
	ups, err := fs.Glob(assets, "*.up.sql")
	if err != nil {
		return 0, fmt.Errorf("listing migrations: %w", err)
	}
	return uint(len(ups)), nil
}

func mapError(err error) error {
	if errors.Is(err, migrate.ErrNilVersion) {
		return ErrNoMigration
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return ErrNoChange
	}
	return err
}
