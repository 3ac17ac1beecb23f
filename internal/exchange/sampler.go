package exchange

import (
	"math/rand/v2"
	"time"

	"github.com/oklog/ulid/v2"
)

// Meal is one generated suggestion. It is replaced wholesale on the next
// generation.
type Meal struct {
	ID          string     `json:"id"`
	GeneratedAt time.Time  `json:"generated_at"`
	Grains      []FoodItem `json:"grains"`
	Proteins    []FoodItem `json:"proteins"`
	Vegetables  []FoodItem `json:"vegetables"`
	Fats        []FoodItem `json:"fats"`
}

// Items returns the meal's items for one category.
func (m Meal) Items(cat Category) []FoodItem {
	switch cat {
	case Grains:
		return m.Grains
	case Proteins:
		return m.Proteins
	case Vegetables:
		return m.Vegetables
	case Fats:
		return m.Fats
	}
	return nil
}

func (m *Meal) set(cat Category, items []FoodItem) {
	switch cat {
	case Grains:
		m.Grains = items
	case Proteins:
		m.Proteins = items
	case Vegetables:
		m.Vegetables = items
	case Fats:
		m.Fats = items
	}
}

// Section is a category with its drawn items, for rendering.
type Section struct {
	Category Category
	Title    string
	Items    []FoodItem
}

// Sections returns the meal in display order.
func (m Meal) Sections() []Section {
	out := make([]Section, 0, len(Categories))
	for _, cat := range Categories {
		out = append(out, Section{Category: cat, Title: cat.Title(), Items: m.Items(cat)})
	}
	return out
}

// Rand is the random source the sampler draws indexes from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Sampler draws meals from a catalog.
type Sampler struct {
	rnd Rand
	now func() time.Time
}

// NewSampler returns a sampler over rnd. A nil rnd uses the process-wide
// generator, which is safe for concurrent use.
func NewSampler(rnd Rand) *Sampler {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Sampler{rnd: rnd, now: time.Now}
}

// Sample draws one meal using the catalog's pattern. Categories with an empty
// pool or a zero count come back empty.
func (s *Sampler) Sample(c Catalog) Meal {
	m := Meal{
		ID:          ulid.Make().String(),
		GeneratedAt: s.now().UTC(),
	}
	for _, cat := range Categories {
		m.set(cat, pick(s.rnd, c.Pool(cat), c.Pattern[cat]))
	}
	return m
}

// pick draws up to count items without replacement: each draw takes a uniform
// index into what is left and removes it from the working copy.
func pick(rnd Rand, pool []FoodItem, count int) []FoodItem {
	items := make([]FoodItem, 0, max(0, min(count, len(pool))))
	remaining := append([]FoodItem(nil), pool...)
	for len(items) < count && len(remaining) > 0 {
		i := rnd.IntN(len(remaining))
		items = append(items, remaining[i])
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	return items
}
