package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Reloader refreshes the catalog.
type Reloader interface {
	Reload(ctx context.Context) error
}

type ackableMsg interface {
	Data() []byte
	Ack() error
	Nak() error
}

// StartRefresher consumes product change events from stream and reloads the catalog for each one.
// Every instance needs its own durable consumer so that all instances see every event.
func StartRefresher(ctx context.Context, js jetstream.JetStream, stream string, cfg config.SubscriberConfig, reloader Reloader, logger *slog.Logger) error {
	logger = logger.With("component", "refresher")
	consumer, err := js.CreateOrUpdateConsumer(ctx, stream, jetstream.ConsumerConfig{
		Durable:       cfg.Consumer,
		FilterSubject: cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Catalog refresher started", "stream", stream, "consumer", cfg.Consumer, "subject", cfg.Subject)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(1, jetstream.FetchMaxWait(cfg.Timeout))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				logger.Error("failed to fetch messages", "error", err)
				time.Sleep(cfg.Interval)
				continue
			}
			for msg := range batch.Messages() {
				handleMessage(ctx, msg, reloader, logger)
			}
		}
	}
}

// handleMessage reloads the catalog. Unreadable events are acknowledged and dropped,
// failed reloads are handed back for redelivery.
func handleMessage(ctx context.Context, msg ackableMsg, reloader Reloader, logger *slog.Logger) {
	var event events.ProductsChangedEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		logger.ErrorContext(ctx, "failed to unmarshal message", "error", err)
		if err := msg.Ack(); err != nil {
			logger.ErrorContext(ctx, "failed to ack message", "error", err)
		}
		return
	}
	logger.DebugContext(ctx, "received products changed event", "action", event.Action, "product_id", event.ProductID)

	if err := reloader.Reload(ctx); err != nil {
		if err := msg.Nak(); err != nil {
			logger.ErrorContext(ctx, "failed to nack message", "error", err)
		}
		return
	}
	if err := msg.Ack(); err != nil {
		logger.ErrorContext(ctx, "failed to ack message", "error", err)
	}
}
