package catalog

import (
	"testing"

	"github.com/abgdnv/storefront/internal/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(id, category, price string) product.Product {
	return product.Product{ID: id, Name: id, Category: category, Price: decimal.RequireFromString(price)}
}

func ids(list []product.Product) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestFilter_Filtered(t *testing.T) {
	catalog := []product.Product{
		item("book-10", "books", "10"),
		item("book-30", "books", "30"),
		item("elec-20", "electronics", "20"),
	}
	testCases := []struct {
		name     string
		criteria Criteria
		expected []string
	}{
		{name: "no criteria", criteria: Criteria{}, expected: []string{"book-10", "book-30", "elec-20"}},
		{name: "all sentinel", criteria: Criteria{Category: AllCategories}, expected: []string{"book-10", "book-30", "elec-20"}},
		{name: "category", criteria: Criteria{Category: "books"}, expected: []string{"book-10", "book-30"}},
		{name: "min price", criteria: Criteria{MinPrice: dec("15")}, expected: []string{"book-30", "elec-20"}},
		{name: "max price", criteria: Criteria{MaxPrice: dec("20")}, expected: []string{"book-10", "elec-20"}},
		{name: "bounds are inclusive", criteria: Criteria{MinPrice: dec("10"), MaxPrice: dec("10")}, expected: []string{"book-10"}},
		{name: "conjunction", criteria: Criteria{Category: "books", MinPrice: dec("15"), MaxPrice: dec("40")}, expected: []string{"book-30"}},
		{name: "unknown category", criteria: Criteria{Category: "toys"}, expected: []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := NewFilter()
			f.SetCatalog(catalog)

			// when
			f.SetCriteria(tc.criteria)

			// then
			assert.Equal(t, tc.expected, ids(f.Filtered()))
		})
	}
}

func TestFilter_SetCatalogReappliesCriteria(t *testing.T) {
	f := NewFilter()
	f.SetCriteria(Criteria{Category: "books"})
	f.SetCatalog([]product.Product{item("a", "books", "1"), item("b", "home", "1")})

	assert.Equal(t, []string{"a"}, ids(f.Filtered()))

	f.SetCatalog([]product.Product{item("c", "home", "1"), item("d", "books", "1")})

	assert.Equal(t, []string{"d"}, ids(f.Filtered()))
}

func TestFilter_Categories(t *testing.T) {
	f := NewFilter()
	f.SetCatalog([]product.Product{
		item("1", "electronics", "1"),
		item("2", "clothing", "1"),
		item("3", "electronics", "1"),
		item("4", "home", "1"),
		item("5", "clothing", "1"),
	})

	assert.Equal(t, []string{"electronics", "clothing", "home"}, f.Categories())

	f.SetCriteria(Criteria{Category: "home"})
	assert.Equal(t, []string{"electronics", "clothing", "home"}, f.Categories(), "criteria must not change categories")
}

func TestFilter_WithCriteriaLeavesParentUntouched(t *testing.T) {
	parent := NewFilter()
	parent.SetCatalog([]product.Product{item("a", "books", "5"), item("b", "home", "50")})

	derived := parent.WithCriteria(Criteria{Category: "home"})

	assert.Equal(t, []string{"b"}, ids(derived.Filtered()))
	assert.Equal(t, []string{"a", "b"}, ids(parent.Filtered()))
	assert.Equal(t, parent.Categories(), derived.Categories())
}

func TestFilter_Find(t *testing.T) {
	f := NewFilter()
	f.SetCatalog([]product.Product{item("a", "books", "5")})

	found, ok := f.Find("a")
	_, missing := f.Find("zzz")

	assert.True(t, ok)
	assert.Equal(t, "a", found.ID)
	assert.False(t, missing)
}

func TestParseCriteria(t *testing.T) {
	testCases := []struct {
		name        string
		category    string
		minPrice    string
		maxPrice    string
		expectedMin string
		expectedMax string
	}{
		{name: "both numeric", category: "books", minPrice: "10.5", maxPrice: "99", expectedMin: "10.5", expectedMax: "99"},
		{name: "non numeric ignored", minPrice: "abc", maxPrice: "1e2", expectedMax: "100"},
		{name: "blank ignored", minPrice: "  ", maxPrice: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := ParseCriteria(tc.category, tc.minPrice, tc.maxPrice)

			assert.Equal(t, tc.category, c.Category)
			if tc.expectedMin == "" {
				assert.Nil(t, c.MinPrice)
			} else {
				assert.True(t, decimal.RequireFromString(tc.expectedMin).Equal(*c.MinPrice))
			}
			if tc.expectedMax == "" {
				assert.Nil(t, c.MaxPrice)
			} else {
				assert.True(t, decimal.RequireFromString(tc.expectedMax).Equal(*c.MaxPrice))
			}
		})
	}
}
