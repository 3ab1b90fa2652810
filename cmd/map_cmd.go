// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xataio/catalogsearch/internal/json"
	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/pipeline"
)

var mapCmd = &cobra.Command{
	Use:    "map",
	Short:  "Maps a single catalog product into its search document and prints it",
	PreRun: sourceFlagBinding,
	RunE:   withSignalWatcher(mapProduct),
	Example: `
	catalogsearch map -f catalog.yaml --item 42 --store 1
	catalogsearch map -c config.yaml --item 42 --store 1 --locale en_US
	catalogsearch map --postgres-url <postgres-url> --item 42 --store 1`,
}

func mapProduct(ctx context.Context, cmd *cobra.Command) error {
	logger := newLogger()

	pipelineConfig, err := parsePipelineConfig(cmd)
	if err != nil {
		return fmt.Errorf("parsing pipeline config: %w", err)
	}

	provider, err := newInstrumentationProvider()
	if err != nil {
		return err
	}
	defer provider.Close()

	itemID, _ := cmd.Flags().GetInt64("item")
	storeID, _ := cmd.Flags().GetInt64("store")

	doc, err := pipeline.Map(ctx, logger, pipelineConfig, &pipeline.MapRequest{
		ItemID:       catalog.ItemID(itemID),
		StoreID:      catalog.StoreID(storeID),
		FieldContext: fieldContextFromFlags(cmd),
	}, provider.NewInstrumentation("map"))
	if err != nil {
		return err
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	prettyJSON, err := json.Indent(docJSON)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(prettyJSON))
	return nil
}
