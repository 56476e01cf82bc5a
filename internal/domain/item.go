package domain

import "fmt"

// Category is one of the fixed item categories accepted at creation time.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryHome        Category = "Home"
	CategoryFood        Category = "Food"
	CategoryToys        Category = "Toys"
	CategoryTools       Category = "Tools"
)

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategoryElectronics,
	CategoryHome,
	CategoryFood,
	CategoryToys,
	CategoryTools,
}

// ParseCategory returns the Category named by s, or an error when s is not
// part of the enumeration. Matching is exact and case-sensitive.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// CategoryNames returns the enumeration as plain strings.
func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return names
}

// Item is a single catalog record as stored in the dataset file.
// The json tags match the on-disk format and the API responses.
type Item struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"` // no 1-5 bound is enforced
	InStock     bool    `json:"in_stock"`
	Category    string  `json:"category"` // only validated on create
}

// ItemFields carries the user-supplied part of an Item, i.e. everything
// except the id and, for creation, the category.
type ItemFields struct {
	Name        string
	Description string
	Brand       string
	Price       float64
	Rating      float64
	InStock     bool
	// Category is optional on update. Empty means keep the stored value.
	Category string
}

// CategoryView is the projection returned by category listing.
type CategoryView struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}
