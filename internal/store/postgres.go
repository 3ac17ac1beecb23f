package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jep4/diabete-random-generate/internal/exchange"
)

// PostgresSource reads the table from PostgreSQL. The schema lives in db/*.sql
// and is applied with `foodctl migrate`.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource connects a pool. Simple query protocol avoids cached-plan
// errors on hosted Postgres after schema changes.
func NewPostgresSource(ctx context.Context, dsn string) (*PostgresSource, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &PostgresSource{pool: pool}, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args ...any) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

func (s *PostgresSource) LoadCatalog(ctx context.Context) (exchange.Catalog, error) {
	foods, err := queryMany[foodRow](ctx, s.pool,
		`SELECT category, sort_order, name, amount
		 FROM food_exchange_items
		 ORDER BY category, sort_order`)
	if err != nil {
		return exchange.Catalog{}, fmt.Errorf("load foods: %w", err)
	}
	patterns, err := queryMany[patternRow](ctx, s.pool,
		"SELECT category, draw_count FROM meal_pattern")
	if err != nil {
		return exchange.Catalog{}, fmt.Errorf("load pattern: %w", err)
	}
	return buildCatalog(foods, patterns)
}

// SaveCatalog replaces both tables in one transaction.
func (s *PostgresSource) SaveCatalog(ctx context.Context, c exchange.Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}
	foods, patterns := flattenCatalog(c)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM food_exchange_items"); err != nil {
		return fmt.Errorf("clear foods: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM meal_pattern"); err != nil {
		return fmt.Errorf("clear pattern: %w", err)
	}
	for _, r := range foods {
		_, err := tx.Exec(ctx,
			`INSERT INTO food_exchange_items (category, sort_order, name, amount)
			 VALUES (@category, @sortOrder, @name, @amount)`,
			pgx.NamedArgs{"category": r.Category, "sortOrder": r.SortOrder, "name": r.Name, "amount": r.Amount})
		if err != nil {
			return fmt.Errorf("insert %s/%s: %w", r.Category, r.Name, err)
		}
	}
	for _, r := range patterns {
		_, err := tx.Exec(ctx,
			"INSERT INTO meal_pattern (category, draw_count) VALUES (@category, @drawCount)",
			pgx.NamedArgs{"category": r.Category, "drawCount": r.DrawCount})
		if err != nil {
			return fmt.Errorf("insert pattern %s: %w", r.Category, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}
