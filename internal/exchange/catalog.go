// Package exchange holds the food-exchange table and draws random meals from it.
package exchange

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

// Category is one of the four exchange groups used in diabetic meal planning.
type Category string

const (
	Grains     Category = "grains"
	Proteins   Category = "proteins"
	Vegetables Category = "vegetables"
	Fats       Category = "fats"
)

// Categories lists the groups in display order.
var Categories = []Category{Grains, Proteins, Vegetables, Fats}

var categoryTitles = map[Category]string{
	Grains:     "🍚 곡류군",
	Proteins:   "🥩 어육류군",
	Vegetables: "🥦 채소군",
	Fats:       "🥑 지방군",
}

// Title is the section heading shown on the page.
func (c Category) Title() string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return string(c)
}

// Valid reports whether c is one of the four known groups.
func (c Category) Valid() bool {
	_, ok := categoryTitles[c]
	return ok
}

// FoodItem is one exchange unit: a food and its serving-size label.
type FoodItem struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Pattern is how many items to draw per category for one meal.
type Pattern map[Category]int

// Catalog is the static food table plus the meal pattern it is sampled with.
// Treat it as read-only once loaded.
type Catalog struct {
	Pattern Pattern                 `json:"pattern"`
	Pools   map[Category][]FoodItem `json:"categories"`
}

// Pool returns the items of one category.
func (c Catalog) Pool(cat Category) []FoodItem {
	return c.Pools[cat]
}

// Validate rejects unknown categories, negative counts, empty names and
// duplicate names within a category. Sampling without replacement only keeps
// meals duplicate-free if the pools themselves are.
func (c Catalog) Validate() error {
	for cat, n := range c.Pattern {
		if !cat.Valid() {
			return fmt.Errorf("pattern: unknown category %q", cat)
		}
		if n < 0 {
			return fmt.Errorf("pattern: negative count %d for %s", n, cat)
		}
	}
	for cat, items := range c.Pools {
		if !cat.Valid() {
			return fmt.Errorf("unknown category %q", cat)
		}
		seen := make(map[string]bool, len(items))
		for i, it := range items {
			if it.Name == "" {
				return fmt.Errorf("%s[%d]: empty name", cat, i)
			}
			if seen[it.Name] {
				return fmt.Errorf("%s: duplicate item %q", cat, it.Name)
			}
			seen[it.Name] = true
		}
	}
	return nil
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(b []byte) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if c.Pools == nil {
		c.Pools = map[Category][]FoodItem{}
	}
	if c.Pattern == nil {
		c.Pattern = Pattern{}
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

//go:embed foods.json
var defaultCatalogJSON []byte

var (
	defaultOnce    sync.Once
	defaultCatalog Catalog
)

// DefaultCatalog returns the built-in table. It panics if the embedded file is
// broken, which the package tests catch.
func DefaultCatalog() Catalog {
	defaultOnce.Do(func() {
		c, err := ParseCatalog(defaultCatalogJSON)
		if err != nil {
			panic(fmt.Sprintf("exchange: embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
