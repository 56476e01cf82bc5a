package dataset

import (
	"context"
	"fmt"
	"math"

	"github.com/brianvoe/gofakeit/v6"

	"item-catalog-service/internal/domain"
	"item-catalog-service/internal/store"
)

// Brands used for synthetic records.
var Brands = []string{"Samsung", "Apple", "Dell", "HP", "Sony", "LG", "Philips", "Bosch", "Nike", "Adidas"}

const (
	minPrice          = 10.0
	maxPrice          = 2000.0
	minRating         = 1.0
	maxRating         = 5.0
	maxDescriptionLen = 100
)

// Generator produces synthetic catalog records.
type Generator struct {
	seed int64
}

// NewGenerator returns a Generator. A zero seed produces a different
// dataset on every run.
func NewGenerator(seed int64) *Generator {
	return &Generator{seed: seed}
}

// Items returns size records with ids 1..size.
func (g *Generator) Items(ctx context.Context, size int) ([]domain.Item, error) {
	faker := gofakeit.New(g.seed)
	categories := domain.CategoryNames()

	items := make([]domain.Item, 0, size)
	for i := 1; i <= size; i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		items = append(items, domain.Item{
			ID:          int64(i),
			Name:        faker.ProductName(),
			Description: truncate(faker.Sentence(16), maxDescriptionLen),
			Brand:       faker.RandomString(Brands),
			Price:       round(faker.Float64Range(minPrice, maxPrice), 2),
			Rating:      round(faker.Float64Range(minRating, maxRating), 1),
			InStock:     faker.Bool(),
			Category:    faker.RandomString(categories),
		})
	}
	return items, nil
}

// Generate writes size synthetic records to path.
func (g *Generator) Generate(ctx context.Context, path string, size int) error {
	items, err := g.Items(ctx, size)
	if err != nil {
		return fmt.Errorf("dataset: generate %d items: %w", size, err)
	}
	if err := store.WriteItems(path, items); err != nil {
		return fmt.Errorf("dataset: write generated items: %w", err)
	}
	return nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
