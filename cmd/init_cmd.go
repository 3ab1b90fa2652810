// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/xataio/catalogsearch/cmd/config"
	"github.com/xataio/catalogsearch/pkg/pipeline"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:    "init",
	Short:  "Initialises the catalog schema and tables of the postgres source",
	PreRun: initDestroyFlagBinding,
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, _ := pterm.DefaultSpinner.WithText("initialising catalogsearch...").Start()

		pipelineConfig, err := config.ParsePipelineConfig()
		if err != nil {
			sp.Fail(err.Error())
			return fmt.Errorf("parsing pipeline config: %w", err)
		}

		if err := pipeline.Init(context.Background(), newLogger(), pipelineConfig); err != nil {
			sp.Fail(err.Error())
			return err
		}

		sp.Success("catalogsearch initialisation complete")
		return nil
	},
	Example: `
	catalogsearch init --postgres-url <postgres-url>
	catalogsearch init -c config.yaml
	catalogsearch init -c config.env`,
}

var destroyCmd = &cobra.Command{
	Use:    "destroy",
	Short:  "Removes the catalog tables of the postgres source, along with the search indices of the given stores",
	PreRun: initDestroyFlagBinding,
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, _ := pterm.DefaultSpinner.WithText("destroying catalogsearch...").Start()

		pipelineConfig, err := config.ParsePipelineConfig()
		if err != nil {
			sp.Fail(err.Error())
			return fmt.Errorf("parsing pipeline config: %w", err)
		}

		if err := pipeline.Destroy(context.Background(), newLogger(), pipelineConfig, storesFromFlags(cmd)); err != nil {
			sp.Fail(err.Error())
			return err
		}

		sp.Success("catalogsearch destroy complete")
		return nil
	},
	Example: `
	catalogsearch destroy --postgres-url <postgres-url>
	catalogsearch destroy -c config.yaml --stores 1,2
	catalogsearch destroy -c config.env`,
}

func initDestroyFlagBinding(cmd *cobra.Command, _ []string) {
	setFromFlag(cmd, "postgres-url", "source.postgres.url", "CATALOGSEARCH_POSTGRES_URL")
}
