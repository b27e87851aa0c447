// Package events publishes and consumes order lifecycle events on Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mescude1/skinly-ecomm/internal/config"
	"github.com/mescude1/skinly-ecomm/internal/model"
)

var tracer = otel.Tracer("github.com/mescude1/skinly-ecomm/internal/events")

const (
	OrderCreated  = "order.created"
	OrderCanceled = "order.canceled"
)

type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderEvent is the message body written to the order topic.
type OrderEvent struct {
	Type       string          `json:"type"`
	OrderID    string          `json:"order_id"`
	UserID     string          `json:"user_id"`
	Items      []Item          `json:"items"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewOrderEvent snapshots the order's items and total.
func NewOrderEvent(eventType string, o *model.Order, at time.Time) OrderEvent {
	items := make([]Item, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return OrderEvent{
		Type:       eventType,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Items:      items,
		Total:      o.TotalPrice,
		OccurredAt: at.UTC(),
	}
}

// Key is "order-<type>-<order id>", e.g. order-created-1234.
func (e OrderEvent) Key() string {
	return fmt.Sprintf("order-%s-%s", strings.TrimPrefix(e.Type, "order."), e.OrderID)
}

// Publisher sends order events.
type Publisher interface {
	Publish(ctx context.Context, e OrderEvent) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher writes events to a single topic.
type KafkaPublisher struct {
	w messageWriter
}

// NewWriter builds the writer for the order topic.
func NewWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func NewPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

// Publish writes e keyed by order, carrying the caller's trace context in the message headers.
func (p *KafkaPublisher) Publish(ctx context.Context, e OrderEvent) error {
	ctx, span := tracer.Start(ctx, "order_events publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("event.type", e.Type),
			attribute.String("order.id", e.OrderID),
		),
	)
	defer span.End()

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	msg := kafka.Message{Key: []byte(e.Key()), Value: value}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(&msg.Headers))

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		return fmt.Errorf("write order event: %w", err)
	}
	return nil
}

// Decode parses a consumed message.
func Decode(msg kafka.Message) (OrderEvent, error) {
	var e OrderEvent
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return OrderEvent{}, fmt.Errorf("decode order event: %w", err)
	}
	if e.OrderID == "" || e.Type == "" {
		return OrderEvent{}, fmt.Errorf("decode order event: missing type or order id")
	}
	return e, nil
}

// headerCarrier adapts Kafka headers to propagation.TextMapCarrier.
type headerCarrier []kafka.Header

func (h *headerCarrier) Get(key string) string {
	for _, hd := range *h {
		if hd.Key == key {
			return string(hd.Value)
		}
	}
	return ""
}

func (h *headerCarrier) Set(key, value string) {
	for i, hd := range *h {
		if hd.Key == key {
			(*h)[i].Value = []byte(value)
			return
		}
	}
	*h = append(*h, kafka.Header{Key: key, Value: []byte(value)})
}

func (h *headerCarrier) Keys() []string {
	keys := make([]string, len(*h))
	for i, hd := range *h {
		keys[i] = hd.Key
	}
	return keys
}
