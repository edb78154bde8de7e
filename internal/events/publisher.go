// Package events publishes checkout lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/middleware"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/sequence"
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	ch       channel
	seqRepo  sequence.Repository
	producer string
	now      func() time.Time
}

func NewPublisher(conn *amqp.Connection, seqRepo sequence.Repository, producer string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return newPublisher(ch, seqRepo, producer), nil
}

func newPublisher(ch channel, seqRepo sequence.Repository, producer string) *Publisher {
	if producer == "" {
		producer = defaultProducer
	}
	return &Publisher{ch: ch, seqRepo: seqRepo, producer: producer, now: time.Now}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// OrderPlaced publishes an OrderPlaced event partitioned by session id.
func (p *Publisher) OrderPlaced(ctx context.Context, s *checkout.Session, d checkout.OrderDraft, out checkout.Outcome) error {
	seq, err := p.seqRepo.NextSequence(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}
	ev := newEvent(ctx, EventTypeOrderPlaced, orderPlacedSchema, p.producer, s.ID, seq, p.now(), orderPlacedPayload(s, d, out))
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced: %w", err)
	}
	return p.publishJSON(ctx, OrderPlacedRoutingKey, body)
}

// CheckoutFailed publishes a CheckoutFailed event partitioned by session id.
func (p *Publisher) CheckoutFailed(ctx context.Context, s *checkout.Session, d checkout.OrderDraft, out checkout.Outcome) error {
	seq, err := p.seqRepo.NextSequence(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}
	ev := newEvent(ctx, EventTypeCheckoutFailed, checkoutFailedSchema, p.producer, s.ID, seq, p.now(), checkoutFailedPayload(s, d, out))
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal CheckoutFailed: %w", err)
	}
	return p.publishJSON(ctx, CheckoutFailedRoutingKey, body)
}

func newEvent[T any](ctx context.Context, name, schema, producer, partitionKey string, seq int64, at time.Time, payload T) EventEnvelope[T] {
	return EventEnvelope[T]{
		EventName:     name,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: middleware.GetCorrelationID(ctx),
		Producer:      producer,
		PartitionKey:  partitionKey,
		Sequence:      &seq,
		OccurredAt:    at.UTC(),
		Schema:        schema,
		Payload:       payload,
	}
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			CorrelationId: middleware.GetCorrelationID(ctx),
			Timestamp:     p.now().UTC(),
			Body:          body,
		},
	)
}
