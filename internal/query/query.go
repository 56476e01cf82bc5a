// Package query holds the read-side operations over an in-memory item
// collection. Every function is pure: inputs are never modified and the
// returned slices never alias the input's spare capacity.
package query

import (
	"errors"
	"fmt"
	"strings"

	"item-catalog-service/internal/domain"
)

// ErrNotFound is returned when an id does not resolve to a record.
var ErrNotFound = errors.New("query: item not found")

// LookupMode selects how an item id is resolved against a collection.
type LookupMode string

const (
	// LookupByID matches the stored id field through an Index.
	LookupByID LookupMode = "id"
	// LookupByPosition treats the id as a 1-based offset into the array.
	// Deprecated: kept for compatibility with datasets whose ids drifted
	// from their positions and clients that depend on that behaviour.
	LookupByPosition LookupMode = "position"
)

// ParseLookupMode validates a configured lookup mode.
func ParseLookupMode(s string) (LookupMode, error) {
	switch LookupMode(s) {
	case LookupByID, LookupByPosition:
		return LookupMode(s), nil
	}
	return "", fmt.Errorf("invalid lookup mode %q: must be %q or %q", s, LookupByID, LookupByPosition)
}

// Paginate returns items[skip:skip+limit] with the bounds clamped to the
// collection. A negative skip or a non-positive limit yields an empty page.
func Paginate(items []domain.Item, skip, limit int) []domain.Item {
	if skip < 0 || limit <= 0 || skip >= len(items) {
		return []domain.Item{}
	}
	end := len(items)
	if limit < end-skip {
		end = skip + limit
	}
	return items[skip:end:end]
}

// ByPosition returns items[id-1] when 1 <= id <= len(items).
func ByPosition(items []domain.Item, id int64) (domain.Item, error) {
	if id < 1 || id > int64(len(items)) {
		return domain.Item{}, ErrNotFound
	}
	return items[id-1], nil
}

// Index maps a stored item id to its position in the collection.
type Index map[int64]int

// NewIndex builds an Index over items. When ids repeat, the first
// occurrence wins, matching what a linear scan would return.
func NewIndex(items []domain.Item) Index {
	idx := make(Index, len(items))
	for i, it := range items {
		if _, ok := idx[it.ID]; !ok {
			idx[it.ID] = i
		}
	}
	return idx
}

// Position returns the array position of id.
func (idx Index) Position(id int64) (int, bool) {
	pos, ok := idx[id]
	return pos, ok
}

// Locate resolves id to a position in items according to mode.
func Locate(items []domain.Item, mode LookupMode, id int64) (int, error) {
	if mode == LookupByPosition {
		if id < 1 || id > int64(len(items)) {
			return 0, ErrNotFound
		}
		return int(id - 1), nil
	}
	pos, ok := NewIndex(items).Position(id)
	if !ok {
		return 0, ErrNotFound
	}
	return pos, nil
}

// Search returns every item whose name contains q, ignoring case.
// An empty q matches every item.
func Search(items []domain.Item, q string) []domain.Item {
	needle := strings.ToLower(q)
	out := make([]domain.Item, 0)
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			out = append(out, it)
		}
	}
	return out
}

// ByCategorySet projects the items whose category is in allowed.
// A nil or empty allowed set means every known category.
func ByCategorySet(items []domain.Item, allowed []string) []domain.CategoryView {
	if len(allowed) == 0 {
		allowed = domain.CategoryNames()
	}
	set := make(map[string]struct{}, len(allowed))
	for _, c := range allowed {
		set[c] = struct{}{}
	}
	out := make([]domain.CategoryView, 0)
	for _, it := range items {
		if _, ok := set[it.Category]; ok {
			out = append(out, domain.CategoryView{Name: it.Name, Category: it.Category})
		}
	}
	return out
}

// FilterParams narrows a collection. Nil fields impose no constraint, and
// so do empty Category and Brand strings.
type FilterParams struct {
	Category *string
	Brand    *string
	MinPrice *float64
	MaxPrice *float64
	InStock  *bool
}

// Filter applies the set fields of f as a conjunction, in the order
// category, brand, min price, max price, stock flag.
func Filter(items []domain.Item, f FilterParams) []domain.Item {
	preds := make([]func(domain.Item) bool, 0, 5)
	if f.Category != nil && *f.Category != "" {
		c := *f.Category
		preds = append(preds, func(it domain.Item) bool { return it.Category == c })
	}
	if f.Brand != nil && *f.Brand != "" {
		b := *f.Brand
		preds = append(preds, func(it domain.Item) bool { return it.Brand == b })
	}
	if f.MinPrice != nil {
		lo := *f.MinPrice
		preds = append(preds, func(it domain.Item) bool { return it.Price >= lo })
	}
	if f.MaxPrice != nil {
		hi := *f.MaxPrice
		preds = append(preds, func(it domain.Item) bool { return it.Price <= hi })
	}
	if f.InStock != nil {
		s := *f.InStock
		preds = append(preds, func(it domain.Item) bool { return it.InStock == s })
	}

	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		keep := true
		for _, p := range preds {
			if !p(it) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, it)
		}
	}
	return out
}
