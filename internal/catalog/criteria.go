package catalog

import (
	"strings"

	"github.com/abgdnv/storefront/internal/product"
	"github.com/shopspring/decimal"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// Criteria narrows the catalog. Zero value matches every product.
type Criteria struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// ParseCriteria builds Criteria from raw inputs. Prices that are not numbers are left unset.
func ParseCriteria(category, minPrice, maxPrice string) Criteria {
	return Criteria{
		Category: strings.TrimSpace(category),
		MinPrice: parsePrice(minPrice),
		MaxPrice: parsePrice(maxPrice),
	}
}

func parsePrice(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

// Matches applies the category, then the minimum, then the maximum price. All must hold.
func (c Criteria) Matches(p product.Product) bool {
	if c.Category != "" && c.Category != AllCategories && p.Category != c.Category {
		return false
	}
	if c.MinPrice != nil && p.Price.LessThan(*c.MinPrice) {
		return false
	}
	if c.MaxPrice != nil && p.Price.GreaterThan(*c.MaxPrice) {
		return false
	}
	return true
}
