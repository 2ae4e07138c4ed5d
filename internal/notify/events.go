package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	RKOrderPaid          = "order.paid"
	RKOrderReceipt       = "order.receipt"
	RKOrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	Event      string `json:"event"`
	Version    int    `json:"version"`
	OccurredAt string `json:"occurred_at"`
	Data       struct {
		OrderID   int64  `json:"order_id"`
		Reference string `json:"reference"`
		Amount    string `json:"amount"`
		Email     string `json:"email"`
		Status    string `json:"status"`
		ProductID *int64 `json:"product_id,omitempty"`
		UserID    *int64 `json:"user_id,omitempty"`
	} `json:"data"`
}

// publishChannel is the part of *amqp.Channel the publisher uses.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// EventPublisher emits order events to a topic exchange.
type EventPublisher struct {
	conn     *amqp.Connection
	ch       publishChannel
	exchange string
	logger   zerolog.Logger
	now      func() time.Time
}

func NewEventPublisher(url, exchange string, logger zerolog.Logger) (*EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p := newEventPublisher(ch, exchange, logger)
	p.conn = conn
	logger.Info().Str("exchange", exchange).Msg("Order event publisher connected")
	return p, nil
}

func newEventPublisher(ch publishChannel, exchange string, logger zerolog.Logger) *EventPublisher {
	return &EventPublisher{
		ch:       ch,
		exchange: exchange,
		logger:   logger,
		now:      time.Now,
	}
}

func (p *EventPublisher) OrderConfirmation(ctx context.Context, order *models.Order) error {
	return p.publish(ctx, RKOrderPaid, order)
}

func (p *EventPublisher) PaymentReceipt(ctx context.Context, order *models.Order) error {
	return p.publish(ctx, RKOrderReceipt, order)
}

func (p *EventPublisher) StatusChanged(ctx context.Context, order *models.Order) error {
	return p.publish(ctx, RKOrderStatusChanged, order)
}

func (p *EventPublisher) publish(ctx context.Context, key string, order *models.Order) error {
	evt := OrderEvent{
		Event:      key,
		Version:    1,
		OccurredAt: p.now().UTC().Format(time.RFC3339),
	}
	evt.Data.OrderID = order.ID
	evt.Data.Reference = order.Reference
	evt.Data.Amount = order.Amount.StringFixed(2)
	evt.Data.Email = order.Email
	evt.Data.Status = string(order.Status)
	evt.Data.ProductID = order.ProductID
	evt.Data.UserID = order.UserID

	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    order.Reference + ":" + key,
		Timestamp:    p.now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
