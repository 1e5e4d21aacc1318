// Package kafka relays outbox events to the order events topic.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/ports"

	kafkago "github.com/segmentio/kafka-go"
)

var ErrNoBrokers = errors.New("kafka: no brokers configured")

const (
	headerEventType = "event-type"
	headerEventID   = "event-id"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter builds a writer for topic over a comma separated broker list.
func NewWriter(brokers, topic string) (*kafkago.Writer, error) {
	addrs := make([]string, 0)
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	if len(addrs) == 0 {
		return nil, ErrNoBrokers
	}

	return &kafkago.Writer{
		Addr:                   kafkago.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}, nil
}

// EventPublisher keys every message by order id, so the hash balancer keeps
// the events of one order on one partition and consumers see them in order.
type EventPublisher struct {
	writer MessageWriter
}

func NewEventPublisher(writer MessageWriter) *EventPublisher {
	return &EventPublisher{writer: writer}
}

func (p *EventPublisher) Publish(ctx context.Context, events []ports.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, len(events))
	for _, e := range events {
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(e.AggregateID.String()),
			Value: e.Payload,
			Time:  e.CreatedAt,
			Headers: []kafkago.Header{
				{Key: headerEventType, Value: []byte(e.Type)},
				{Key: headerEventID, Value: []byte(e.ID.String())},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d order events: %w", len(msgs), err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
