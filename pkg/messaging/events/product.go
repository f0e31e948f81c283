// Package events holds the JSON payloads published on the storefront subjects.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/pkg/messaging"
)

// Product change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionSeeded  = "seeded"
)

type ProductsChangedEvent struct {
	Action    string    `json:"action"`
	ProductID string    `json:"product_id,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

func (e ProductsChangedEvent) Subject() string {
	return messaging.ProductsChangedSubject
}

func (e ProductsChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
