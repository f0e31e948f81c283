package catalog

import "github.com/abgdnv/storefront/internal/product"

const (
	// InitialDisplayCount is the number of featured products shown before any "show more".
	InitialDisplayCount = 4
	// DisplayStep is how many more products each "show more" reveals.
	DisplayStep = 4
)

// Showcase reveals featured products incrementally.
type Showcase struct {
	featured     []product.Product
	displayCount int
}

func NewShowcase(featured []product.Product) *Showcase {
	return &Showcase{featured: featured, displayCount: InitialDisplayCount}
}

// RestoreShowcase resumes a showcase at displayCount, clamped to the valid range.
func RestoreShowcase(featured []product.Product, displayCount int) *Showcase {
	s := NewShowcase(featured)
	s.displayCount = s.clamp(displayCount)
	return s
}

// ShowMore reveals the next step. Once everything is visible it has no effect.
func (s *Showcase) ShowMore() {
	s.displayCount = s.clamp(s.displayCount + DisplayStep)
}

func (s *Showcase) HasMore() bool {
	return s.displayCount < len(s.featured)
}

func (s *Showcase) DisplayCount() int {
	return s.displayCount
}

// Visible returns the revealed products.
func (s *Showcase) Visible() []product.Product {
	return s.featured[:min(s.displayCount, len(s.featured))]
}

func (s *Showcase) Total() int {
	return len(s.featured)
}

// clamp keeps n between InitialDisplayCount and the number of featured products.
func (s *Showcase) clamp(n int) int {
	upper := max(len(s.featured), InitialDisplayCount)
	return max(InitialDisplayCount, min(n, upper))
}
