package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
	"github.com/Apurer/singgah-pos/internal/domains/ordering/ports"
	"github.com/Apurer/singgah-pos/internal/platform/messaging/rabbitmq"
)

// Broker is the subset of the rabbitmq client the publisher needs.
type Broker interface {
	Publish(ctx context.Context, exchange, key string, body []byte, headers amqp.Table) error
}

// Envelope is the JSON body published for every ordering event.
type Envelope struct {
	Event      string    `json:"event"`
	OrderID    string    `json:"orderId"`
	OccurredAt time.Time `json:"occurredAt"`
	Total      int64     `json:"total,omitempty"`
	ItemNames  []string  `json:"itemNames,omitempty"`
	FromStatus string    `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus,omitempty"`
}

// RabbitPublisher publishes events to the orders topic exchange, routed by event name.
type RabbitPublisher struct {
	broker   Broker
	exchange string
}

func NewRabbitPublisher(broker Broker) *RabbitPublisher {
	return &RabbitPublisher{broker: broker, exchange: rabbitmq.OrdersExchange}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event domain.Event) error {
	envelope, err := NewEnvelope(event)
	if err != nil {
		return err
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(headers))
	return p.broker.Publish(ctx, p.exchange, envelope.Event, body, headers)
}

// NewEnvelope flattens a domain event into its wire form.
func NewEnvelope(event domain.Event) (Envelope, error) {
	env := Envelope{Event: event.EventName(), OccurredAt: event.OccurredAt().UTC()}
	switch e := event.(type) {
	case domain.OrderPlaced:
		env.OrderID = e.OrderID
		env.Total = e.Total
		env.ItemNames = e.ItemNames
	case domain.OrderStatusChanged:
		env.OrderID = e.OrderID
		env.FromStatus = string(e.FromStatus)
		env.ToStatus = string(e.ToStatus)
	default:
		return Envelope{}, fmt.Errorf("unsupported ordering event %T", event)
	}
	return env, nil
}

// headerCarrier adapts amqp headers to the otel propagation carrier.
type headerCarrier amqp.Table

func (c headerCarrier) Get(key string) string {
	v, _ := c[key].(string)
	return v
}

func (c headerCarrier) Set(key, value string) {
	c[key] = value
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

var _ ports.EventPublisher = (*RabbitPublisher)(nil)
