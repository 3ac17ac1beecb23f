// Package store loads the food-exchange table from a database. Without a
// database the embedded table is used.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jep4/diabete-random-generate/internal/exchange"
)

// Source provides the food table.
type Source interface {
	// LoadCatalog reads and validates the whole table.
	LoadCatalog(ctx context.Context) (exchange.Catalog, error)

	// SaveCatalog replaces the stored table with c.
	SaveCatalog(ctx context.Context, c exchange.Catalog) error

	// Close releases the connection.
	Close() error
}

// foodRow is one row of food_exchange_items.
type foodRow struct {
	Category  string `db:"category"`
	SortOrder int    `db:"sort_order"`
	Name      string `db:"name"`
	Amount    string `db:"amount"`
}

// patternRow is one row of meal_pattern.
type patternRow struct {
	Category  string `db:"category"`
	DrawCount int    `db:"draw_count"`
}

// Open picks a source from a DSN:
//
//	""                          embedded table (read-only)
//	postgres://, postgresql://  PostgreSQL via pgx
//	sqlite://path, file.db      SQLite
func Open(ctx context.Context, dsn string) (Source, error) {
	switch {
	case dsn == "":
		return Embedded{}, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgresSource(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		return NewSQLiteSource(strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"):
		return NewSQLiteSource(dsn)
	}
	return nil, fmt.Errorf("unsupported DB_URL %q: want postgres://, sqlite:// or a .db path", dsn)
}

// Embedded serves the built-in table.
type Embedded struct{}

func (Embedded) LoadCatalog(context.Context) (exchange.Catalog, error) {
	return exchange.DefaultCatalog(), nil
}

func (Embedded) SaveCatalog(context.Context, exchange.Catalog) error {
	return fmt.Errorf("embedded catalog is read-only")
}

func (Embedded) Close() error { return nil }

// buildCatalog assembles rows (ordered by category, sort_order) into a catalog.
func buildCatalog(foods []foodRow, patterns []patternRow) (exchange.Catalog, error) {
	c := exchange.Catalog{
		Pattern: exchange.Pattern{},
		Pools:   map[exchange.Category][]exchange.FoodItem{},
	}
	for _, r := range foods {
		cat := exchange.Category(r.Category)
		c.Pools[cat] = append(c.Pools[cat], exchange.FoodItem{Name: r.Name, Amount: r.Amount})
	}
	for _, r := range patterns {
		c.Pattern[exchange.Category(r.Category)] = r.DrawCount
	}
	if err := c.Validate(); err != nil {
		return exchange.Catalog{}, fmt.Errorf("stored catalog: %w", err)
	}
	return c, nil
}

// flattenCatalog turns a catalog into rows in display order.
func flattenCatalog(c exchange.Catalog) ([]foodRow, []patternRow) {
	var foods []foodRow
	var patterns []patternRow
	for _, cat := range exchange.Categories {
		for i, it := range c.Pool(cat) {
			foods = append(foods, foodRow{Category: string(cat), SortOrder: i, Name: it.Name, Amount: it.Amount})
		}
		if n, ok := c.Pattern[cat]; ok {
			patterns = append(patterns, patternRow{Category: string(cat), DrawCount: n})
		}
	}
	return foods, patterns
}
