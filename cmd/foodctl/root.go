package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Jep4/diabete-random-generate/internal/exchange"
	"github.com/Jep4/diabete-random-generate/internal/store"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	dsn    string
	format string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "foodctl",
		Short:         "Food-exchange table admin and offline meal tools",
		Long:          "Migrate and seed the food-exchange table, and run the calorie calculator and meal sampler without the server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("load .env: %w", err)
			}
			if opts.format != "json" && opts.format != "text" {
				return fmt.Errorf("--format must be json or text, got %q", opts.format)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.dsn, "db", "d", "", "Food table DSN: postgres://, sqlite:// or a .db path (default: $DB_URL, else the embedded table)")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "Output format: json or text")

	root.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newListCmd(opts),
		newCalcCmd(opts),
		newSampleCmd(opts),
	)
	return root
}

// dbURL prefers --db over $DB_URL.
func (o *options) dbURL() string {
	if o.dsn != "" {
		return o.dsn
	}
	return os.Getenv("DB_URL")
}

func (o *options) openSource(ctx context.Context) (store.Source, error) {
	src, err := store.Open(ctx, o.dbURL())
	if err != nil {
		return nil, fmt.Errorf("open food table: %w", err)
	}
	return src, nil
}

// loadCatalog reads the table from the configured source.
func (o *options) loadCatalog(ctx context.Context) (exchange.Catalog, error) {
	src, err := o.openSource(ctx)
	if err != nil {
		return exchange.Catalog{}, err
	}
	defer src.Close()
	return src.LoadCatalog(ctx)
}
