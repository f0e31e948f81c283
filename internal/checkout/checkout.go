// Package checkout completes a cart: it announces the order and empties the cart.
// Payment is out of scope.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/internal/cart"
	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Receipt summarizes a completed checkout.
type Receipt struct {
	OrderID     string          `json:"orderId"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"itemCount"`
	CompletedAt time.Time       `json:"completedAt"`
}

type Service struct {
	sessions  *cart.Sessions
	publisher messaging.Publisher
	logger    *slog.Logger
	now       func() time.Time

	completed metric.Int64Counter
	revenue   metric.Float64Counter
}

func NewService(sessions *cart.Sessions, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("github.com/abgdnv/storefront/internal/checkout")
	completed, _ := meter.Int64Counter("checkouts_completed", metric.WithDescription("Completed checkouts"))
	revenue, _ := meter.Float64Counter("checkout_revenue", metric.WithDescription("Sum of checkout totals"))
	return &Service{
		sessions:  sessions,
		publisher: publisher,
		logger:    logger.With("component", "checkout"),
		now:       time.Now,
		completed: completed,
		revenue:   revenue,
	}
}

// Checkout completes the cart of session. An empty cart returns ErrEmptyCart.
// The order is announced only once the cleared cart is persisted. A publishing failure is only logged.
func (s *Service) Checkout(ctx context.Context, session string) (*Receipt, error) {
	var receipt *Receipt
	err := s.sessions.With(ctx, session, func(st *cart.Store) error {
		c := st.Cart()
		if c.IsEmpty() {
			return perrors.ErrEmptyCart
		}
		receipt = &Receipt{
			OrderID:     uuid.NewString(),
			Total:       c.Total(),
			ItemCount:   c.ItemCount(),
			CompletedAt: s.now().UTC(),
		}

		if err := st.ClearCart(ctx); err != nil {
			return err
		}

		if err := s.publisher.Publish(ctx, toEvent(session, c, receipt)); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish checkout event", "order_id", receipt.OrderID, "error", err)
		}
		total, _ := receipt.Total.Float64()
		s.completed.Add(ctx, 1, metric.WithAttributes(attribute.Int("lines", len(c.Lines))))
		s.revenue.Add(ctx, total)
		s.logger.InfoContext(ctx, "Checkout completed", "order_id", receipt.OrderID, "total", receipt.Total.StringFixed(2), "items", receipt.ItemCount)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("checkout failed: %w", err)
	}
	return receipt, nil
}

func toEvent(session string, c cart.Cart, r *Receipt) events.CheckoutCompletedEvent {
	lines := make([]events.CheckoutLine, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = events.CheckoutLine{ProductID: l.ProductID, Name: l.Name, Price: l.Price, Quantity: l.Quantity}
	}
	return events.CheckoutCompletedEvent{
		OrderID:     r.OrderID,
		Session:     session,
		Lines:       lines,
		Total:       r.Total,
		ItemCount:   r.ItemCount,
		CompletedAt: r.CompletedAt,
	}
}
