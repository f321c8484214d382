// Package event publishes order lifecycle events to Kafka.
package event

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/commercekit/fulfillment/internal/domain"
	"github.com/commercekit/fulfillment/pkg/kafka"
	"github.com/commercekit/fulfillment/pkg/logger"
)

const (
	source = "fulfillment"

	TopicOrderCreated   = "fulfillment.order.created"
	TopicOrderCompleted = "fulfillment.order.completed"
	TopicOrderCancelled = "fulfillment.order.cancelled"
)

// OrderEventPayload is the body carried by every order lifecycle event.
type OrderEventPayload struct {
	OrderID        uuid.UUID          `json:"order_id"`
	OrganizationID uuid.UUID          `json:"organization_id"`
	UserID         *uuid.UUID         `json:"user_id,omitempty"`
	OrderNumber    string             `json:"order_number"`
	Status         domain.OrderStatus `json:"status"`
	Currency       string             `json:"currency"`
	Subtotal       int64              `json:"subtotal"`
	TotalAmount    int64              `json:"total_amount"`
	ItemCount      int                `json:"item_count"`
}

// Producer publishes order events, one topic per lifecycle transition.
// Events are keyed by order id so per-order ordering is preserved.
type Producer struct {
	created   *kafka.Producer
	completed *kafka.Producer
	cancelled *kafka.Producer
}

// NewProducer creates producers for all three order topics.
func NewProducer(brokers []string, log *slog.Logger) *Producer {
	return &Producer{
		created:   kafka.NewProducer(kafka.ProducerConfig{Brokers: brokers, Topic: TopicOrderCreated}, log),
		completed: kafka.NewProducer(kafka.ProducerConfig{Brokers: brokers, Topic: TopicOrderCompleted}, log),
		cancelled: kafka.NewProducer(kafka.ProducerConfig{Brokers: brokers, Topic: TopicOrderCancelled}, log),
	}
}

func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, p.created, "order.created", order)
}

func (p *Producer) PublishOrderCompleted(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, p.completed, "order.completed", order)
}

func (p *Producer) PublishOrderCancelled(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, p.cancelled, "order.cancelled", order)
}

func (p *Producer) publish(ctx context.Context, producer *kafka.Producer, eventType string, order *domain.Order) error {
	payload := OrderEventPayload{
		OrderID:        order.ID,
		OrganizationID: order.OrganizationID,
		UserID:         order.UserID,
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		Currency:       order.Currency,
		Subtotal:       order.Subtotal,
		TotalAmount:    order.TotalAmount,
		ItemCount:      len(order.Items),
	}

	evt, err := kafka.NewEvent(eventType, source, payload)
	if err != nil {
		return err
	}
	evt.CorrelationID = logger.CorrelationIDFromContext(ctx)

	return producer.Publish(ctx, order.ID.String(), evt)
}

// Close flushes and closes all topic writers.
func (p *Producer) Close() error {
	var firstErr error
	for _, producer := range []*kafka.Producer{p.created, p.completed, p.cancelled} {
		if err := producer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Noop satisfies the publisher contract when event publishing is disabled.
type Noop struct{}

func (Noop) PublishOrderCreated(context.Context, *domain.Order) error   { return nil }
func (Noop) PublishOrderCompleted(context.Context, *domain.Order) error { return nil }
func (Noop) PublishOrderCancelled(context.Context, *domain.Order) error { return nil }
