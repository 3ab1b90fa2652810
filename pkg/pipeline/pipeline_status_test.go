// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	migratorlib "github.com/xataio/catalogsearch/internal/migrator"
	"github.com/xataio/catalogsearch/pkg/catalog"
)

type mockStatuser struct {
	statusFn func() ([]migratorlib.MigrationStatus, error)
	closed   bool
}

func (m *mockStatuser) Status() ([]migratorlib.MigrationStatus, error) { return m.statusFn() }
func (m *mockStatuser) Close()                                         { m.closed = true }

type mockIndexChecker struct {
	existsFn func(ctx context.Context, storeID catalog.StoreID) (string, bool, error)
}

func (m *mockIndexChecker) IndexExists(ctx context.Context, storeID catalog.StoreID) (string, bool, error) {
	return m.existsFn(ctx, storeID)
}

func TestMigrationStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		statusFn func() ([]migratorlib.MigrationStatus, error)

		wantStatus *MigrationStatus
	}{
		{
			name: "ok - up to date",
			statusFn: func() ([]migratorlib.MigrationStatus, error) {
				return []migratorlib.MigrationStatus{{TableName: "schema_migrations_catalog", Version: 5, ExpectedMigrationCount: 5}}, nil
			},
			wantStatus: &MigrationStatus{Version: 5, Expected: 5},
		},
		{
			name: "dirty and behind",
			statusFn: func() ([]migratorlib.MigrationStatus, error) {
				return []migratorlib.MigrationStatus{{TableName: "schema_migrations_catalog", Version: 3, Dirty: true, ExpectedMigrationCount: 5}}, nil
			},
			wantStatus: &MigrationStatus{
				Version:  3,
				Expected: 5,
				Dirty:    true,
				Errors: []string{
					"migration 3 in schema_migrations_catalog is dirty",
					"migration version 3 doesn't match expected 5, run init",
				},
			},
		},
		{
			name: "error - getting status",
			statusFn: func() ([]migratorlib.MigrationStatus, error) {
				return nil, errTest
			},
			wantStatus: &MigrationStatus{Errors: []string{errTest.Error()}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := &mockStatuser{statusFn: tc.statusFn}
			require.Equal(t, tc.wantStatus, migrationStatus(m))
			require.True(t, m.closed)
		})
	}
}

func TestSearchStatus(t *testing.T) {
	t.Parallel()

	checker := &mockIndexChecker{existsFn: func(_ context.Context, storeID catalog.StoreID) (string, bool, error) {
		switch storeID {
		case 1:
			return "catalog_product_1", true, nil
		case 2:
			return "catalog_product_2", false, nil
		default:
			return "", false, errTest
		}
	}}

	status := searchStatus(context.Background(), OpenSearchEngine, checker, []catalog.StoreID{1, 2, 3})
	require.Equal(t, &SearchStatus{
		Engine: OpenSearchEngine,
		Indices: []IndexStatus{
			{Name: "catalog_product_1", Exists: true},
			{Name: "catalog_product_2", Exists: false},
		},
		Errors: []string{errTest.Error()},
	}, status)
}

func TestGetStatus_StaticSource(t *testing.T) {
	t.Parallel()

	status := GetStatus(context.Background(), &Config{Source: SourceConfig{Static: &StaticSourceConfig{File: "testdata/catalog.yaml"}}}, nil)
	require.Equal(t, &Status{Config: &ConfigStatus{Valid: true}}, status)
	require.Empty(t, status.GetErrors())

	status = GetStatus(context.Background(), &Config{}, nil)
	require.False(t, status.Config.Valid)
	require.Equal(t, []string{"config"}, status.GetErrors().Keys())
}

func TestStatus_PrettyPrint(t *testing.T) {
	t.Parallel()

	status := &Status{
		Config:    &ConfigStatus{Valid: true},
		Migration: &MigrationStatus{Version: 5, Expected: 5},
		Search: &SearchStatus{
			Engine:  ElasticsearchEngine,
			Indices: []IndexStatus{{Name: "catalog_product_1", Exists: true}},
			Errors:  []string{"a", "b"},
		},
	}

	want := `Config status:
 - Valid: true

Migration status:
 - Version: 5/5
 - Dirty: false

Search status:
 - Engine: elasticsearch
 - Index catalog_product_1 exists: true
 - Errors: a; b
`
	require.Equal(t, want, status.PrettyPrint())
	require.Equal(t, "", (*Status)(nil).PrettyPrint())
}
