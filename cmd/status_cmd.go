// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/catalogsearch/internal/json"
	"github.com/xataio/catalogsearch/pkg/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Checks the status of the catalog initialisation, the search indices and the provided configuration",
	PreRun: func(cmd *cobra.Command, args []string) {
		sourceFlagBinding(cmd, args)
		targetFlagBinding(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, _ := pterm.DefaultSpinner.WithText("checking catalogsearch status...").Start()

		pipelineConfig, err := parsePipelineConfig(cmd)
		if err != nil {
			sp.Fail(err.Error())
			return fmt.Errorf("parsing pipeline config: %w", err)
		}

		status := pipeline.GetStatus(context.Background(), pipelineConfig, storesFromFlags(cmd))

		statusErrs := status.GetErrors()
		if len(statusErrs) == 0 {
			sp.Success("catalogsearch status check encountered no issues")
		} else {
			sp.Warning("catalogsearch status check identified issues with ", strings.Join(statusErrs.Keys(), ", "))
		}

		err = print(cmd, status)
		if err != nil {
			sp.Fail("failed to format catalogsearch status")
			return err
		}

		return nil
	},
	Example: `
	catalogsearch status -c config.env
	catalogsearch status --postgres-url <postgres-url>
	catalogsearch status -c config.yaml --stores 1,2 --json
	`,
}

type printer interface {
	PrettyPrint() string
}

func print(cmd *cobra.Command, p printer) error {
	str := p.PrettyPrint()
	if cmd.Flags().Lookup("json").Value.String() == trueStr {
		jsonData, err := json.Marshal(p)
		if err != nil {
			return err
		}
		prettyJSON, err := json.Indent(jsonData)
		if err != nil {
			return err
		}
		str = string(prettyJSON)
	}

	fmt.Fprintln(cmd.OutOrStdout(), str)
	return nil
}
