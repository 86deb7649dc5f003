package event

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	pkgkafka "github.com/caffeinepub/saree-catalogue-portal/pkg/kafka"
)

// ConsumerGroupCatalogCache is the consumer group of the cache invalidator.
const ConsumerGroupCatalogCache = "catalog-cache"

// Invalidator drops cached public reads of one weaver.
type Invalidator interface {
	InvalidateOwner(ctx context.Context, owner string) (int, error)
}

// Consumer invalidates cached public catalog reads when a product changes,
// including changes made by the backend in remote mode.
type Consumer struct {
	cache  Invalidator
	logger *slog.Logger
}

// NewConsumer creates a new cache-invalidating consumer.
func NewConsumer(cache Invalidator, logger *slog.Logger) *Consumer {
	return &Consumer{
		cache:  cache,
		logger: logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	if !strings.HasPrefix(event.EventType, AggregateTypeProduct+".") {
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	owner := event.Owner
	if owner == "" {
		var data ProductDeletedData
		if err := event.UnmarshalData(&data); err != nil {
			return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
		}
		owner = data.Owner
	}
	if owner == "" {
		c.logger.WarnContext(ctx, "product event without owner",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	n, err := c.cache.InvalidateOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("invalidate catalog cache for %s: %w", owner, err)
	}

	c.logger.InfoContext(ctx, "invalidated catalog cache from event",
		slog.String("event_type", event.EventType),
		slog.String("weaver_id", owner),
		slog.Int("keys", n),
	)
	return nil
}
