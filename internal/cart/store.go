package cart

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/product"
	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity a single line can hold.
const MaxQuantity = 9999

// Store holds the cart of one session. Every mutation is written to the slot.
// A Store is not safe for concurrent use; Sessions serializes access per session.
type Store struct {
	slot   Slot
	key    string
	lines  []Line
	logger *slog.Logger
}

// Open loads the cart saved under key. Absent or unreadable data yields an empty cart.
func Open(ctx context.Context, slot Slot, key string, logger *slog.Logger) *Store {
	s := &Store{slot: slot, key: key, logger: logger}

	data, found, err := slot.Load(ctx, key)
	switch {
	case err != nil:
		logger.ErrorContext(ctx, "Failed to load cart, starting empty", "key", key, "error", err)
	case !found:
	default:
		lines, err := decode(data)
		if err != nil {
			logger.WarnContext(ctx, "Discarding unreadable cart", "key", key, "error", err)
			break
		}
		s.lines = lines
	}
	return s
}

// AddToCart adds quantity units of p. Quantities below 1 count as 1.
// A product already in the cart has its quantity increased, otherwise a new line is appended.
// A line never holds more than MaxQuantity units.
func (s *Store) AddToCart(ctx context.Context, p product.Product, quantity int) error {
	if p.ID == "" {
		return fmt.Errorf("cannot add product without id: %w", perrors.ErrInvalidProduct)
	}
	quantity = clampQuantity(quantity)
	if i := s.indexOf(p.ID); i >= 0 {
		s.lines[i].Quantity = min(s.lines[i].Quantity+quantity, MaxQuantity)
	} else {
		s.lines = append(s.lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Quantity:  quantity,
		})
	}
	return s.persist(ctx)
}

// UpdateQuantity sets the quantity of productID, clamped to 1..MaxQuantity.
// Unknown products are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if i := s.indexOf(productID); i >= 0 {
		s.lines[i].Quantity = clampQuantity(quantity)
	}
	return s.persist(ctx)
}

// RemoveFromCart drops the line of productID if present.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) error {
	if i := s.indexOf(productID); i >= 0 {
		s.lines = slices.Delete(s.lines, i, i+1)
	}
	return s.persist(ctx)
}

// ClearCart removes every line.
func (s *Store) ClearCart(ctx context.Context) error {
	s.lines = nil
	return s.persist(ctx)
}

// Cart returns a copy of the current content.
func (s *Store) Cart() Cart {
	return Cart{Lines: slices.Clone(s.lines)}
}

func (s *Store) Total() decimal.Decimal {
	return Cart{Lines: s.lines}.Total()
}

func (s *Store) ItemCount() int {
	return Cart{Lines: s.lines}.ItemCount()
}

func clampQuantity(q int) int {
	return min(max(q, 1), MaxQuantity)
}

func (s *Store) indexOf(productID string) int {
	return slices.IndexFunc(s.lines, func(l Line) bool { return l.ProductID == productID })
}

// persist writes the cart to the slot. The in-memory state is kept when saving fails.
func (s *Store) persist(ctx context.Context) error {
	data, err := encode(s.lines)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode cart", "key", s.key, "error", err)
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.slot.Save(ctx, s.key, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist cart", "key", s.key, "error", err)
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
