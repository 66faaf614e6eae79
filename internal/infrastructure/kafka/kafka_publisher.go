package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/loanintake/internal/domain/event"
	pkgevents "github.com/bibbank/loanintake/pkg/events"
	pkgkafka "github.com/bibbank/loanintake/pkg/kafka"
)

// MessageWriter is the subset of pkg/kafka.Producer the publisher needs.
type MessageWriter interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// EventPublisher implements port.EventPublisher by writing event envelopes
// to one Kafka topic, keyed by aggregate id.
type EventPublisher struct {
	writer MessageWriter
	topic  string
	logger *slog.Logger
}

// NewEventPublisher creates a publisher for topic.
func NewEventPublisher(writer MessageWriter, topic string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{writer: writer, topic: topic, logger: logger}
}

// Publish encodes every event before sending any, so a bad event sends nothing.
func (p *EventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(events))
	for _, evt := range events {
		payload, err := pkgevents.Marshal(evt)
		if err != nil {
			return err
		}

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"topic", p.topic,
			"payload_size", len(payload),
		)

		messages = append(messages, pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type": evt.EventType(),
				"event_id":   evt.EventID(),
			},
		})
	}

	if len(messages) == 0 {
		return nil
	}
	if err := p.writer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("publish events to topic %s: %w", p.topic, err)
	}
	return nil
}
