package commands

import (
	"fmt"

	"propsearch/internal/config"
	"propsearch/internal/dataset"
	"propsearch/internal/repository"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var csvPath, tablesDir string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load listings from CSV into the database",
		Long: `import normalizes listings from a CSV file (or a directory of source tables)
and upserts them into the listings table, for use with DATASET_SOURCE=database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var source dataset.Source
			switch {
			case csvPath != "":
				source = dataset.NewCSVSource(csvPath)
			case tablesDir != "":
				source = dataset.NewTableSource(tablesDir)
			default:
				return errors.WithHint(errors.New("nothing to import"), "pass --csv or --tables")
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.DatabaseEnabled() {
				return errors.WithHint(errors.New("no database configured"), "set DATABASE_URL (and DB_DRIVER for sqlite3)")
			}
			return importListings(cmd, cfg, source)
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "listings CSV file")
	cmd.Flags().StringVar(&tablesDir, "tables", "", "directory of project/address/configuration/variant CSVs")
	return cmd
}

func importListings(cmd *cobra.Command, cfg *config.Config, source dataset.Source) error {
	ctx := cmd.Context()
	repo, err := repository.NewRepository(cfg.Database.Driver, cfg.Database.DSN,
		cfg.Database.MaxConnections, cfg.Database.MaxIdleConnections)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	// The handle applies normalization and drops duplicate ids.
	listings, err := dataset.NewHandle(source).Listings(ctx)
	if err != nil {
		return err
	}
	n, err := repo.InsertListings(ctx, listings)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d listings\n", n)
	return nil
}
