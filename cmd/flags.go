// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xataio/catalogsearch/cmd/config"
	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/pipeline"
)

// setFromFlag overwrites the configuration keys with the flag value when the
// flag has been set. Both the yaml and the env keys are provided, so that it
// works regardless of the configuration format in use.
func setFromFlag(cmd *cobra.Command, flag string, keys ...string) {
	f := cmd.Flags().Lookup(flag)
	if f == nil || !f.Changed {
		return
	}
	for _, key := range keys {
		viper.Set(key, f.Value.String())
	}
}

func sourceFlagBinding(cmd *cobra.Command, _ []string) {
	setFromFlag(cmd, "postgres-url", "source.postgres.url", "CATALOGSEARCH_POSTGRES_URL")
	setFromFlag(cmd, "file", "source.static.file", "CATALOGSEARCH_STATIC_FILE")
}

func targetFlagBinding(cmd *cobra.Command, _ []string) {
	setFromFlag(cmd, "target", "target.search.engine", "CATALOGSEARCH_SEARCH_ENGINE")
	setFromFlag(cmd, "target-url", "target.search.url", "CATALOGSEARCH_SEARCH_URL")
}

// parsePipelineConfig parses the configuration and keeps only the source
// selected through flags, if any.
func parsePipelineConfig(cmd *cobra.Command) (*pipeline.Config, error) {
	cfg, err := config.ParsePipelineConfig()
	if err != nil {
		return nil, err
	}

	switch {
	case flagChanged(cmd, "file"):
		cfg.Source.Postgres = nil
	case flagChanged(cmd, "postgres-url"):
		cfg.Source.Static = nil
	}
	return cfg, nil
}

func flagChanged(cmd *cobra.Command, flag string) bool {
	f := cmd.Flags().Lookup(flag)
	return f != nil && f.Changed
}

func fieldContextFromFlags(cmd *cobra.Command) catalog.FieldContext {
	locale, _ := cmd.Flags().GetString("locale")
	docType, _ := cmd.Flags().GetString("type")
	return catalog.FieldContext{
		Type:   docType,
		Locale: locale,
	}
}

func storesFromFlags(cmd *cobra.Command) []catalog.StoreID {
	ids, _ := cmd.Flags().GetInt64Slice("stores")
	stores := make([]catalog.StoreID, 0, len(ids))
	for _, id := range ids {
		stores = append(stores, catalog.StoreID(id))
	}
	return stores
}

func itemsFromFlags(cmd *cobra.Command) []catalog.ItemID {
	ids, _ := cmd.Flags().GetInt64Slice("items")
	items := make([]catalog.ItemID, 0, len(ids))
	for _, id := range ids {
		items = append(items, catalog.ItemID(id))
	}
	return items
}
