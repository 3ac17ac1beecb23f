package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
)

// newMigrateCmd runs pending PostgreSQL migrations from db/. The migrations
// table is checked to skip already-applied files; each migration and its
// record insert share one transaction.
func newMigrateCmd(opts *options) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := opts.dbURL()
			if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
				return fmt.Errorf("migrate needs a postgres:// DB_URL (SQLite tables are created on open)")
			}
			ctx := cmd.Context()
			conn, err := pgx.Connect(ctx, dsn)
			if err != nil {
				return fmt.Errorf("unable to connect to database: %w", err)
			}
			defer conn.Close(ctx)
			return runMigrations(ctx, conn, dir, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "db", "Directory holding the *.sql migrations")
	return cmd
}

func runMigrations(ctx context.Context, conn *pgx.Conn, dir string, out io.Writer) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil || len(files) == 0 {
		return fmt.Errorf("no migration files found in %s", dir)
	}

	// The migrations table may not exist yet.
	applied := make(map[string]bool)
	rows, err := conn.Query(ctx, "SELECT migration FROM migrations")
	if err == nil {
		names, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("read applied migrations: %w", err)
		}
		for _, n := range names {
			applied[n] = true
		}
	}

	pending := pendingMigrations(files, applied)
	for _, f := range files {
		if applied[filepath.Base(f)] {
			fmt.Fprintf(out, "  skip: %s\n", filepath.Base(f))
		}
	}
	for _, f := range pending {
		if err := applyMigration(ctx, conn, f); err != nil {
			return err
		}
		fmt.Fprintf(out, "  applied: %s\n", filepath.Base(f))
	}

	if len(pending) == 0 {
		fmt.Fprintln(out, "No pending migrations.")
	} else {
		fmt.Fprintf(out, "\n%d migration(s) applied.\n", len(pending))
	}
	return nil
}

func applyMigration(ctx context.Context, conn *pgx.Conn, path string) error {
	filename := filepath.Base(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("running %s: %w", filename, err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO migrations (migration, description) VALUES ($1, $2)", filename, descriptionFromFilename(filename)); err != nil {
		return fmt.Errorf("recording %s: %w", filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing %s: %w", filename, err)
	}
	return nil
}

// pendingMigrations returns the files not yet applied, in name order.
func pendingMigrations(files []string, applied map[string]bool) []string {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)
	var pending []string
	for _, f := range sorted {
		if !applied[filepath.Base(f)] {
			pending = append(pending, f)
		}
	}
	return pending
}

var migrationPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

// descriptionFromFilename strips the YYYY-MM-DD-NNN- prefix and .sql suffix.
func descriptionFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	name = migrationPrefix.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "-", " ")
}
