package events

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mescude1/skinly-ecomm/internal/config"
	"github.com/mescude1/skinly-ecomm/internal/logging"
)

// Handler processes one decoded event.
type Handler func(ctx context.Context, e OrderEvent) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Consumer reads the order topic within a consumer group.
type Consumer struct {
	r messageReader
	h Handler
}

// NewReader builds a group reader for the order topic.
func NewReader(cfg config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

func NewConsumer(r messageReader, h Handler) *Consumer {
	return &Consumer{r: r, h: h}
}

// Run consumes until ctx is canceled. Undecodable messages and handler failures are
// logged and committed so a poison message cannot stall the partition.
func (c *Consumer) Run(ctx context.Context) error {
	log := logging.With().Str("component", "order_consumer").Logger()
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		e, err := Decode(msg)
		if err != nil {
			log.Error().Err(err).Str("key", string(msg.Key)).Int64("offset", msg.Offset).Msg("skip_message")
		} else if err := c.handle(ctx, msg, e); err != nil {
			log.Error().Err(err).Str("event", e.Type).Str("order_id", e.OrderID).Msg("handle_failed")
		}

		if err := c.r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// handle runs the handler inside a consumer span linked to the producer's trace.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message, e OrderEvent) error {
	headers := headerCarrier(msg.Headers)
	ctx = otel.GetTextMapPropagator().Extract(ctx, &headers)
	ctx, span := tracer.Start(ctx, "order_events process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("event.type", e.Type),
			attribute.String("order.id", e.OrderID),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	if err := c.h(ctx, e); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
		return err
	}
	return nil
}
