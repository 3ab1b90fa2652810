// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xataio/catalogsearch/cmd/config"
	"github.com/xataio/catalogsearch/internal/log/zerolog"
	"github.com/xataio/catalogsearch/internal/profiling"
	loglib "github.com/xataio/catalogsearch/pkg/log"
	"github.com/xataio/catalogsearch/pkg/otel"
)

// Version is the catalogsearch version
var (
	Version = "development"
	Env     string
)

const trueStr = "true"

func Prepare() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "catalogsearch",
		Short:        "Maps catalog products into search documents and indexes them",
		SilenceUsage: true,
		Version:      version(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			return nil
		},
	}

	// env keys already carry the CATALOGSEARCH_ prefix
	viper.AutomaticEnv()

	// Flag definition

	// root cmd
	rootCmd.PersistentFlags().StringP("config", "c", "", ".env or .yaml config file to use with catalogsearch if any")
	rootCmd.PersistentFlags().String("log-level", "info", "log level for the application. One of trace, debug, info, warn, error, fatal, panic")
	rootCmd.PersistentFlags().String("log-format", "console", "log output format. One of console, json")

	// init cmd
	initCmd.Flags().String("postgres-url", "", "Postgres URL where the catalog schema will be created")

	// destroy cmd
	destroyCmd.Flags().String("postgres-url", "", "Postgres URL where the catalog schema will be removed from")
	destroyCmd.Flags().Int64Slice("stores", nil, "Store ids whose search indices will be deleted")

	// map cmd
	mapCmd.Flags().StringP("file", "f", "", "Static catalog YAML file to read the product from, instead of the configured source")
	mapCmd.Flags().String("postgres-url", "", "Postgres URL to read the product from, instead of the configured source")
	mapCmd.Flags().Int64("item", 0, "Item id of the product to map")
	mapCmd.Flags().Int64("store", 0, "Store id used to resolve the store specific values")
	mapCmd.Flags().String("locale", "", "Locale used to resolve the document field names")
	mapCmd.Flags().String("type", "", "Document type used to resolve the document field names")
	mapCmd.MarkFlagRequired("item")  //nolint:errcheck
	mapCmd.MarkFlagRequired("store") //nolint:errcheck

	// index cmd
	indexCmd.Flags().StringP("file", "f", "", "Static catalog YAML file to index, instead of the configured source")
	indexCmd.Flags().String("postgres-url", "", "Postgres URL to index the catalog from, instead of the configured source")
	indexCmd.Flags().String("target", "", "Search target engine. One of elasticsearch, opensearch")
	indexCmd.Flags().String("target-url", "", "Search target URL")
	indexCmd.Flags().Int64Slice("items", nil, "Item ids to index. If not specified, every item of the source is indexed")
	indexCmd.Flags().Int64Slice("stores", nil, "Store ids to index the items for")
	indexCmd.Flags().String("locale", "", "Locale used to resolve the document field names")
	indexCmd.Flags().String("type", "", "Document type used to resolve the document field names")
	indexCmd.Flags().Int("workers", 0, "Number of items indexed concurrently. Defaults to 4")
	indexCmd.Flags().Bool("progress", false, "Whether to render a progress bar of the indexed items")
	indexCmd.Flags().Bool("profile", false, "Whether to produce CPU and memory profile files, as well as exposing a /debug/pprof endpoint on localhost:6060")
	indexCmd.MarkFlagRequired("stores") //nolint:errcheck

	// status cmd
	statusCmd.Flags().String("postgres-url", "", "Postgres URL of the catalog source")
	statusCmd.Flags().Int64Slice("stores", nil, "Store ids whose search indices will be checked")
	statusCmd.Flags().Bool("json", false, "Output the status in JSON format")

	// Flag binding for root cmd
	rootFlagBinding(rootCmd)

	// register subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statusCmd)
	return rootCmd
}

// Execute executes the root command.
func Execute() error {
	cmd := Prepare()
	return cmd.Execute()
}

func withSignalWatcher(fn func(ctx context.Context, cmd *cobra.Command) error) func(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		<-sigc
		cancel()
	}()

	return func(cmd *cobra.Command, args []string) error {
		defer cancel()
		return fn(ctx, cmd)
	}
}

func withProfiling(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) (err error) {
	return func(cmd *cobra.Command, args []string) (err error) {
		if cmd.Flags().Lookup("profile").Value.String() != trueStr {
			return fn(cmd, args)
		}

		session, err := profiling.Start(&profiling.Config{
			Address: "localhost:6060",
		})
		if err != nil {
			return err
		}
		defer func() {
			if stopErr := session.Stop(); stopErr != nil && err == nil {
				err = stopErr
			}
		}()

		return fn(cmd, args)
	}
}

func rootFlagBinding(cmd *cobra.Command) {
	viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("CATALOGSEARCH_LOG_LEVEL", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("CATALOGSEARCH_LOG_FORMAT", cmd.PersistentFlags().Lookup("log-format"))
}

func version() string {
	if Env != "" {
		return Env + " (" + Version + ")"
	}
	return Version
}

func newLogger() loglib.Logger {
	logger := zerolog.NewLogger(&zerolog.Config{
		LogLevel: viper.GetString("CATALOGSEARCH_LOG_LEVEL"),
		Format:   viper.GetString("CATALOGSEARCH_LOG_FORMAT"),
	})
	zerolog.SetGlobalLogger(logger)
	return zerolog.NewStdLogger(logger)
}

func newInstrumentationProvider() (otel.InstrumentationProvider, error) {
	cfg, err := config.ParseInstrumentationConfig()
	if err != nil {
		return nil, fmt.Errorf("parsing instrumentation config: %w", err)
	}

	p, err := otel.NewInstrumentationProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialisating instrumentation provider: %w", err)
	}
	return p, nil
}
