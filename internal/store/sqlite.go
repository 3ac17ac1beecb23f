package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/Jep4/diabete-random-generate/internal/exchange"
)

// SQLiteSource keeps the table in a local SQLite file. The schema is created
// on open.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource opens or creates a database at path.
func NewSQLiteSource(path string) (*SQLiteSource, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &SQLiteSource{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteSource) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS food_exchange_items (
		category   TEXT NOT NULL,
		sort_order INTEGER NOT NULL,
		name       TEXT NOT NULL,
		amount     TEXT NOT NULL,
		PRIMARY KEY (category, sort_order),
		UNIQUE (category, name)
	);
	CREATE TABLE IF NOT EXISTS meal_pattern (
		category   TEXT PRIMARY KEY,
		draw_count INTEGER NOT NULL CHECK (draw_count >= 0)
	);`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteSource) LoadCatalog(ctx context.Context) (exchange.Catalog, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, sort_order, name, amount FROM food_exchange_items ORDER BY category, sort_order")
	if err != nil {
		return exchange.Catalog{}, fmt.Errorf("load foods: %w", err)
	}
	defer rows.Close()
	var foods []foodRow
	for rows.Next() {
		var r foodRow
		if err := rows.Scan(&r.Category, &r.SortOrder, &r.Name, &r.Amount); err != nil {
			return exchange.Catalog{}, fmt.Errorf("scan food: %w", err)
		}
		foods = append(foods, r)
	}
	if err := rows.Err(); err != nil {
		return exchange.Catalog{}, err
	}

	prows, err := s.db.QueryContext(ctx, "SELECT category, draw_count FROM meal_pattern")
	if err != nil {
		return exchange.Catalog{}, fmt.Errorf("load pattern: %w", err)
	}
	defer prows.Close()
	var patterns []patternRow
	for prows.Next() {
		var r patternRow
		if err := prows.Scan(&r.Category, &r.DrawCount); err != nil {
			return exchange.Catalog{}, fmt.Errorf("scan pattern: %w", err)
		}
		patterns = append(patterns, r)
	}
	if err := prows.Err(); err != nil {
		return exchange.Catalog{}, err
	}
	return buildCatalog(foods, patterns)
}

func (s *SQLiteSource) SaveCatalog(ctx context.Context, c exchange.Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}
	foods, patterns := flattenCatalog(c)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM food_exchange_items"); err != nil {
		return fmt.Errorf("clear foods: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM meal_pattern"); err != nil {
		return fmt.Errorf("clear pattern: %w", err)
	}
	for _, r := range foods {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO food_exchange_items (category, sort_order, name, amount) VALUES (?, ?, ?, ?)",
			r.Category, r.SortOrder, r.Name, r.Amount); err != nil {
			return fmt.Errorf("insert %s/%s: %w", r.Category, r.Name, err)
		}
	}
	for _, r := range patterns {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO meal_pattern (category, draw_count) VALUES (?, ?)", r.Category, r.DrawCount); err != nil {
			return fmt.Errorf("insert pattern %s: %w", r.Category, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
