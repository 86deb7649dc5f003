package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	pkgkafka "github.com/caffeinepub/saree-catalogue-portal/pkg/kafka"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/logger"
)

// Event types carried on the product topic.
const (
	TypeProductCreated      = "product.created"
	TypeProductUpdated      = "product.updated"
	TypeProductDeleted      = "product.deleted"
	TypeProductStockChanged = "product.stock_changed"
)

// AggregateTypeProduct is the aggregate type of every product event.
const AggregateTypeProduct = "product"

// SourceCatalogService identifies events published by this service.
const SourceCatalogService = "catalog-service"

// TopicProductEvents is the single topic all product events go to, keyed by
// product so per-product ordering holds.
var TopicProductEvents = pkgkafka.Topic("product", "events")

// ProductEventData is the payload of created, updated and stock_changed events.
type ProductEventData struct {
	ID                uint64 `json:"id"`
	Owner             string `json:"owner"`
	Name              string `json:"name"`
	Visibility        string `json:"visibility"`
	AvailableQuantity int64  `json:"available_quantity"`
	MadeToOrder       bool   `json:"made_to_order"`
	InStock           bool   `json:"in_stock"`
}

// ProductDeletedData is the payload of a product.deleted event.
type ProductDeletedData struct {
	ID    uint64 `json:"id"`
	Owner string `json:"owner"`
}

// Publisher is the subset of the Kafka producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes product domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TypeProductCreated, product.Owner, product.ID, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TypeProductUpdated, product.Owner, product.ID, productData(product))
}

// PublishProductStockChanged publishes a product.stock_changed event.
func (p *Producer) PublishProductStockChanged(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TypeProductStockChanged, product.Owner, product.ID, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, owner string, id uint64) error {
	return p.publish(ctx, TypeProductDeleted, owner, id, ProductDeletedData{ID: id, Owner: owner})
}

func (p *Producer) publish(ctx context.Context, eventType, owner string, id uint64, data any) error {
	aggregateID := owner + "/" + strconv.FormatUint(id, 10)

	event, err := pkgkafka.NewEvent(eventType, aggregateID, AggregateTypeProduct, SourceCatalogService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	event.WithOwner(owner)
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, TopicProductEvents, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published product event",
		slog.String("event_type", eventType),
		slog.String("weaver_id", owner),
		slog.Uint64("product_id", id),
	)
	return nil
}

func productData(p *domain.Product) ProductEventData {
	return ProductEventData{
		ID:                p.ID,
		Owner:             p.Owner,
		Name:              p.Name,
		Visibility:        p.Visibility.String(),
		AvailableQuantity: p.AvailableQuantity,
		MadeToOrder:       p.MadeToOrder,
		InStock:           p.InStock(),
	}
}
