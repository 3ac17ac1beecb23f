package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jep4/diabete-random-generate/internal/exchange"
)

func newSeedCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the stored food table with the built-in one or a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dbURL() == "" {
				return fmt.Errorf("seed needs a database: set DB_URL or --db")
			}
			c := exchange.DefaultCatalog()
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				if c, err = exchange.ParseCatalog(b); err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
			}

			ctx := cmd.Context()
			src, err := opts.openSource(ctx)
			if err != nil {
				return err
			}
			defer src.Close()
			if err := src.SaveCatalog(ctx, c); err != nil {
				return fmt.Errorf("save catalog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d food item(s).\n", countItems(c))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Catalog JSON (same shape as GET /api/catalog)")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the food table and meal pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			if category != "" && !exchange.Category(category).Valid() {
				return fmt.Errorf("unknown category %q", category)
			}
			c, err := opts.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.format == "json" {
				if category != "" {
					return writeJSON(out, c.Pool(exchange.Category(category)))
				}
				return writeJSON(out, c)
			}
			writeCatalog(out, c, exchange.Category(category))
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only this category: grains, proteins, vegetables or fats")
	return cmd
}

func countItems(c exchange.Catalog) int {
	n := 0
	for _, cat := range exchange.Categories {
		n += len(c.Pool(cat))
	}
	return n
}

// writeCatalog prints each category with its draw count. An empty only prints
// all categories.
func writeCatalog(w io.Writer, c exchange.Catalog, only exchange.Category) {
	for _, cat := range exchange.Categories {
		if only != "" && cat != only {
			continue
		}
		fmt.Fprintf(w, "%s  (draw %d of %d)\n", cat.Title(), c.Pattern[cat], len(c.Pool(cat)))
		for _, it := range c.Pool(cat) {
			fmt.Fprintf(w, "  - %s (%s)\n", it.Name, it.Amount)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
