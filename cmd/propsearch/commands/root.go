// Package commands implements the propsearch command-line interface.
package commands

import (
	"context"

	"propsearch/internal/bootstrap"
	"propsearch/internal/config"
	"propsearch/internal/logger"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	datasetPath string
	verbose     bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "propsearch",
		Short: "Natural-language property search over a listings dataset",
		Long: `propsearch answers queries such as "3BHK flat in Pune under 1.2 Cr"
against the configured listings dataset, using the same pipeline as the HTTP server.
Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			return logger.Initialize(level, "console")
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.datasetPath, "dataset", "d", "", "listings CSV (overrides DATASET_PATH)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newQueryCmd(opts), newBatchCmd(opts), newImportCmd(opts))
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.datasetPath != "" {
		cfg.Dataset.Source = config.SourceCSV
		cfg.Dataset.Path = o.datasetPath
	}
	return cfg, nil
}

func (o *rootOptions) openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg)
}
