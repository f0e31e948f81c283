package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/shopspring/decimal"
)

type CheckoutLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type CheckoutCompletedEvent struct {
	OrderID     string          `json:"order_id"`
	Session     string          `json:"session"`
	Lines       []CheckoutLine  `json:"lines"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
	CompletedAt time.Time       `json:"completed_at"`
}

func (e CheckoutCompletedEvent) Subject() string {
	return messaging.CheckoutCompletedSubject
}

func (e CheckoutCompletedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
