package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"burger-forge/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	EventsExchange        = "burgerforge.events"
	OrderPlacedRoutingKey = "order.placed.v1"
	EventTypeOrderPlaced  = "OrderPlaced"
	producerName          = "burger-forge"
	publishTimeout        = 3 * time.Second
)

// EventEnvelope wraps every published payload.
type EventEnvelope struct {
	EventName    string          `json:"eventName"`
	EventVersion int             `json:"eventVersion"`
	EventID      string          `json:"eventId"`
	Producer     string          `json:"producer"`
	PartitionKey string          `json:"partitionKey"`
	OccurredAt   time.Time       `json:"occurredAt"`
	Payload      json.RawMessage `json:"payload"`
}

type OrderPlacedItem struct {
	CatalogID int    `json:"catalogId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	IsMeal    bool   `json:"isMeal"`
}

type OrderPlacedPayload struct {
	OrderID     string             `json:"orderId"`
	Customer    string             `json:"customer"`
	Total       int64              `json:"total"`
	Fulfillment models.Fulfillment `json:"fulfillment"`
	Items       []OrderPlacedItem  `json:"items"`
	PlacedAt    time.Time          `json:"placedAt"`
}

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends an OrderPlaced event for every placed order. Publishing is
// best effort: failures are logged, the order is already saved.
type Publisher struct {
	ch     channel
	logger *zap.Logger
}

func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	return conn, nil
}

func NewPublisher(conn *amqp.Connection, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &Publisher{ch: ch, logger: logger.Named("events")}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) OrderPlaced(ctx context.Context, owner string, order models.Order) {
	body, err := json.Marshal(newOrderPlacedEvent(owner, order, uuid.NewString()))
	if err != nil {
		p.logger.Error("marshal OrderPlaced", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	if err := p.publishJSON(ctx, OrderPlacedRoutingKey, body); err != nil {
		p.logger.Warn("publish OrderPlaced failed", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	p.logger.Debug("published OrderPlaced", zap.String("order_id", order.ID))
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func newOrderPlacedEvent(owner string, order models.Order, eventID string) EventEnvelope {
	payload := OrderPlacedPayload{
		OrderID:     order.ID,
		Customer:    owner,
		Total:       order.Total,
		Fulfillment: order.Details.Fulfillment,
		Items:       make([]OrderPlacedItem, 0, len(order.Items)),
		PlacedAt:    order.CreatedAt,
	}
	for _, li := range order.Items {
		payload.Items = append(payload.Items, OrderPlacedItem{
			CatalogID: li.CatalogID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			IsMeal:    li.IsMeal,
		})
	}
	// Marshalling plain structs of strings and numbers cannot fail.
	raw, _ := json.Marshal(payload)
	return EventEnvelope{
		EventName:    EventTypeOrderPlaced,
		EventVersion: 1,
		EventID:      eventID,
		Producer:     producerName,
		PartitionKey: order.ID,
		OccurredAt:   order.CreatedAt,
		Payload:      raw,
	}
}
