// Package messaging defines the domain events the storefront emits and the publisher abstraction used to send them.
package messaging

import (
	"context"
)

const (
	// StreamSubjects is captured by the storefront JetStream stream.
	StreamSubjects = "storefront.>"
	// ProductsChangedSubject carries admin edits to the catalog.
	ProductsChangedSubject = "storefront.products.changed"
	// CheckoutCompletedSubject carries the content of every completed checkout.
	CheckoutCompletedSubject = "storefront.checkout.completed"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. It is used when messaging is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
