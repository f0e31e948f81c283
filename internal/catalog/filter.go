// Package catalog holds the in-memory product catalog and the views derived from it:
// filtered listings, category lists, the featured showcase and the rotating slider.
package catalog

import (
	"github.com/abgdnv/storefront/internal/product"
)

// Filter keeps a catalog, its distinct categories and the subset matching the current criteria.
// Categories are computed once per SetCatalog. A Filter is not safe for concurrent mutation;
// WithCriteria derives independent filters for concurrent readers.
type Filter struct {
	catalog    []product.Product
	categories []string
	criteria   Criteria
	filtered   []product.Product
}

func NewFilter() *Filter {
	return &Filter{}
}

// SetCatalog replaces the product list and re-applies the current criteria.
func (f *Filter) SetCatalog(products []product.Product) {
	f.catalog = products
	f.categories = distinctCategories(products)
	f.apply()
}

// SetCriteria replaces the criteria and recomputes the filtered view.
func (f *Filter) SetCriteria(c Criteria) {
	f.criteria = c
	f.apply()
}

// WithCriteria returns a filter over the same catalog and categories with its own criteria.
func (f *Filter) WithCriteria(c Criteria) *Filter {
	derived := &Filter{
		catalog:    f.catalog,
		categories: f.categories,
		criteria:   c,
	}
	derived.apply()
	return derived
}

// Filtered returns the products matching the criteria in catalog order.
func (f *Filter) Filtered() []product.Product {
	return f.filtered
}

// Categories returns the distinct categories in first-seen order.
func (f *Filter) Categories() []string {
	return f.categories
}

func (f *Filter) Catalog() []product.Product {
	return f.catalog
}

func (f *Filter) Criteria() Criteria {
	return f.criteria
}

// Find returns the catalog product with the given id.
func (f *Filter) Find(id string) (product.Product, bool) {
	for _, p := range f.catalog {
		if p.ID == id {
			return p, true
		}
	}
	return product.Product{}, false
}

func (f *Filter) apply() {
	filtered := make([]product.Product, 0, len(f.catalog))
	for _, p := range f.catalog {
		if f.criteria.Matches(p) {
			filtered = append(filtered, p)
		}
	}
	f.filtered = filtered
}

func distinctCategories(products []product.Product) []string {
	seen := make(map[string]struct{}, len(products))
	categories := make([]string, 0)
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}
