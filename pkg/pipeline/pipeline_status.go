// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"strings"

	migratorlib "github.com/xataio/catalogsearch/internal/migrator"
	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/indexer"
)

type Status struct {
	Config    *ConfigStatus
	Migration *MigrationStatus
	Search    *SearchStatus
}

type ConfigStatus struct {
	Valid  bool
	Errors []string
}

type MigrationStatus struct {
	Version  uint
	Expected uint
	Dirty    bool
	Errors   []string
}

type SearchStatus struct {
	Engine  string
	Indices []IndexStatus
	Errors  []string
}

type IndexStatus struct {
	Name   string
	Exists bool
}

type StatusErrors map[string][]string

type migrationStatuser interface {
	Status() ([]migratorlib.MigrationStatus, error)
	Close()
}

type indexChecker interface {
	IndexExists(ctx context.Context, storeID catalog.StoreID) (string, bool, error)
}

func (se StatusErrors) Keys() []string {
	keys := make([]string, 0, len(se))
	for k := range se {
		keys = append(keys, k)
	}
	return keys
}

// GetStatus checks the configuration, the catalog migrations of the postgres
// source and the search indices of the given stores.
func GetStatus(ctx context.Context, config *Config, stores []catalog.StoreID) *Status {
	status := &Status{
		Config: configStatus(config),
	}

	if pgURL := config.PostgresURL(); pgURL != "" {
		m, err := migratorlib.NewPGMigrator(pgURL, config.PostgresSchema(), []*migratorlib.MigrationAssets{
			migratorlib.GetCatalogMigrationAssets(),
		})
		if err != nil {
			status.Migration = &MigrationStatus{Errors: []string{err.Error()}}
		} else {
			status.Migration = migrationStatus(m)
		}
	}

	if config.Target.Search != nil && config.Target.Search.IsValid() == nil {
		client, err := newSearchClient(config.Target.Search)
		if err != nil {
			status.Search = &SearchStatus{Engine: config.Target.Search.Engine, Errors: []string{err.Error()}}
		} else {
			checker := indexer.New(nil, client, &config.Target.Search.Indexer)
			status.Search = searchStatus(ctx, config.Target.Search.Engine, checker, stores)
		}
	}

	return status
}

func configStatus(config *Config) *ConfigStatus {
	if err := config.IsValid(); err != nil {
		return &ConfigStatus{Valid: false, Errors: []string{err.Error()}}
	}
	return &ConfigStatus{Valid: true}
}

func migrationStatus(m migrationStatuser) *MigrationStatus {
	defer m.Close()

	statuses, err := m.Status()
	if err != nil {
		return &MigrationStatus{Errors: []string{err.Error()}}
	}

	status := &MigrationStatus{}
	for _, s := range statuses {
		status.Version = s.Version
		status.Expected = s.ExpectedMigrationCount
		status.Dirty = s.Dirty
		if s.Dirty {
			status.Errors = append(status.Errors, fmt.Sprintf("migration %d in %s is dirty", s.Version, s.TableName))
		}
		if s.Version != s.ExpectedMigrationCount {
			status.Errors = append(status.Errors, fmt.Sprintf("migration version %d doesn't match expected %d, run init", s.Version, s.ExpectedMigrationCount))
		}
	}
	return status
}

func searchStatus(ctx context.Context, engine string, checker indexChecker, stores []catalog.StoreID) *SearchStatus {
	status := &SearchStatus{Engine: engine}
	for _, storeID := range stores {
		name, exists, err := checker.IndexExists(ctx, storeID)
		if err != nil {
			status.Errors = append(status.Errors, err.Error())
			continue
		}
		status.Indices = append(status.Indices, IndexStatus{Name: name, Exists: exists})
	}
	return status
}

func (s *Status) GetErrors() StatusErrors {
	if s == nil {
		return nil
	}

	errors := StatusErrors{}
	if s.Config != nil && len(s.Config.Errors) > 0 {
		errors["config"] = s.Config.Errors
	}
	if s.Migration != nil && len(s.Migration.Errors) > 0 {
		errors["migration"] = s.Migration.Errors
	}
	if s.Search != nil && len(s.Search.Errors) > 0 {
		errors["search"] = s.Search.Errors
	}
	return errors
}

func (s *Status) PrettyPrint() string {
	if s == nil {
		return ""
	}

	var prettyPrint strings.Builder
	prettyPrint.WriteString(s.Config.PrettyPrint())
	if s.Migration != nil {
		prettyPrint.WriteByte('\n')
		prettyPrint.WriteString(s.Migration.PrettyPrint())
	}
	if s.Search != nil {
		prettyPrint.WriteByte('\n')
		prettyPrint.WriteString(s.Search.PrettyPrint())
	}
	return prettyPrint.String()
}

func (cs *ConfigStatus) PrettyPrint() string {
	if cs == nil {
		return ""
	}

	var prettyPrint strings.Builder
	prettyPrint.WriteString("Config status:\n")
	prettyPrint.WriteString(fmt.Sprintf(" - Valid: %t\n", cs.Valid))
	writeErrors(&prettyPrint, cs.Errors)
	return prettyPrint.String()
}

func (ms *MigrationStatus) PrettyPrint() string {
	if ms == nil {
		return ""
	}

	var prettyPrint strings.Builder
	prettyPrint.WriteString("Migration status:\n")
	prettyPrint.WriteString(fmt.Sprintf(" - Version: %d/%d\n", ms.Version, ms.Expected))
	prettyPrint.WriteString(fmt.Sprintf(" - Dirty: %t\n", ms.Dirty))
	writeErrors(&prettyPrint, ms.Errors)
	return prettyPrint.String()
}

func (ss *SearchStatus) PrettyPrint() string {
	if ss == nil {
		return ""
	}

	var prettyPrint strings.Builder
	prettyPrint.WriteString("Search status:\n")
	prettyPrint.WriteString(fmt.Sprintf(" - Engine: %s\n", ss.Engine))
	for _, index := range ss.Indices {
		prettyPrint.WriteString(fmt.Sprintf(" - Index %s exists: %t\n", index.Name, index.Exists))
	}
	writeErrors(&prettyPrint, ss.Errors)
	return prettyPrint.String()
}

func writeErrors(b *strings.Builder, errs []string) {
	if len(errs) > 0 {
		b.WriteString(fmt.Sprintf(" - Errors: %s\n", strings.Join(errs, "; ")))
	}
}
