package api

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"item-catalog-service/internal/domain"
	"item-catalog-service/internal/query"
)

// ItemInput defines the expected body for creating an item. The category
// comes from the path and the id is assigned by the store.
type ItemInput struct {
	Name        *string  `json:"name" validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Brand       *string  `json:"brand" validate:"required"`
	Price       *float64 `json:"price" validate:"required"`
	Rating      *float64 `json:"rating"` // defaults to 0
	InStock     *bool    `json:"in_stock" validate:"required"`
}

// Fields converts a validated input into store fields.
func (in ItemInput) Fields() domain.ItemFields {
	f := domain.ItemFields{
		Name:        deref(in.Name),
		Description: deref(in.Description),
		Brand:       deref(in.Brand),
		Price:       deref(in.Price),
		Rating:      deref(in.Rating),
		InStock:     deref(in.InStock),
	}
	return f
}

// ItemUpdateInput defines the expected body for replacing an item.
// Category is optional; when omitted the stored category is kept.
type ItemUpdateInput struct {
	ItemInput
	Category *string `json:"category" validate:"omitempty,oneof=Electronics Home Food Toys Tools"`
}

// Fields converts a validated update input into store fields.
func (in ItemUpdateInput) Fields() domain.ItemFields {
	f := in.ItemInput.Fields()
	f.Category = deref(in.Category)
	return f
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func parseItemID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("item_id must be an integer >= 1, got %q", raw)
	}
	return id, nil
}

// parsePagination reads skip and limit, defaulting to 0 and 1000.
func parsePagination(q url.Values) (skip, limit int, err error) {
	skip, limit = 0, defaultLimit
	if raw := q.Get("skip"); raw != "" {
		if skip, err = strconv.Atoi(raw); err != nil {
			return 0, 0, fmt.Errorf("skip must be an integer, got %q", raw)
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return 0, 0, fmt.Errorf("limit must be an integer, got %q", raw)
		}
	}
	return skip, limit, nil
}

// validateSearchQuery accepts an empty query or up to five ASCII
// letters and digits.
func validateSearchQuery(v *validator.Validate, q string) error {
	if err := v.Var(q, "omitempty,max=5,alphanum"); err != nil {
		return fmt.Errorf("q must be at most 5 letters or digits")
	}
	return nil
}

var filterKeys = map[string]bool{
	"category":  true,
	"brand":     true,
	"min_price": true,
	"max_price": true,
	"in_stock":  true,
}

// parseFilterParams builds query.FilterParams from the request query.
// Unknown keys are rejected.
func parseFilterParams(q url.Values) (query.FilterParams, error) {
	var p query.FilterParams

	var unknown []string
	for k := range q {
		if !filterKeys[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return p, fmt.Errorf("unknown query parameters: %s", strings.Join(unknown, ", "))
	}

	if q.Has("category") {
		v := q.Get("category")
		p.Category = &v
	}
	if q.Has("brand") {
		v := q.Get("brand")
		p.Brand = &v
	}
	if q.Has("min_price") {
		v, err := strconv.ParseFloat(q.Get("min_price"), 64)
		if err != nil {
			return p, fmt.Errorf("min_price must be a number, got %q", q.Get("min_price"))
		}
		p.MinPrice = &v
	}
	if q.Has("max_price") {
		v, err := strconv.ParseFloat(q.Get("max_price"), 64)
		if err != nil {
			return p, fmt.Errorf("max_price must be a number, got %q", q.Get("max_price"))
		}
		p.MaxPrice = &v
	}
	if q.Has("in_stock") {
		v, err := parseBool(q.Get("in_stock"))
		if err != nil {
			return p, err
		}
		p.InStock = &v
	}
	return p, nil
}

// parseBool accepts the usual spellings of a boolean query flag.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("in_stock must be a boolean, got %q", raw)
}
