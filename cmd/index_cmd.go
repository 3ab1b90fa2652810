// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/catalogsearch/pkg/pipeline"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Maps the catalog products of the configured source and indexes them into the configured search target",
	PreRun: func(cmd *cobra.Command, args []string) {
		sourceFlagBinding(cmd, args)
		targetFlagBinding(cmd, args)
	},
	RunE: withProfiling(withSignalWatcher(index)),
	Example: `
	catalogsearch index -c config.yaml --stores 1,2
	catalogsearch index -c config.env --stores 1 --items 42,43 --locale en_US
	catalogsearch index -f catalog.yaml --target opensearch --target-url http://localhost:9200 --stores 1`,
}

func index(ctx context.Context, cmd *cobra.Command) error {
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

	workers, _ := cmd.Flags().GetInt("workers")
	showProgress, _ := cmd.Flags().GetBool("progress")

	summary, err := pipeline.Index(ctx, logger, pipelineConfig, &pipeline.IndexRequest{
		Items:        itemsFromFlags(cmd),
		Stores:       storesFromFlags(cmd),
		FieldContext: fieldContextFromFlags(cmd),
		Workers:      workers,
		ShowProgress: showProgress,
	}, provider.NewInstrumentation("index"))
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}

	pterm.Success.Printfln("indexed %d documents (%d items skipped)", summary.Documents, summary.SkippedItems)
	return nil
}
