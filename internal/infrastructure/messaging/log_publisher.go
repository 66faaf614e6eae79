// Package messaging holds event publishers that need no broker.
package messaging

import (
	"context"
	"log/slog"

	"github.com/bibbank/loanintake/internal/domain/event"
	pkgevents "github.com/bibbank/loanintake/pkg/events"
)

// LogEventPublisher implements port.EventPublisher by logging each event
// envelope. It is used when no Kafka brokers are configured.
type LogEventPublisher struct {
	logger *slog.Logger
}

func NewLogEventPublisher(logger *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger}
}

func (p *LogEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	for _, evt := range events {
		payload, err := pkgevents.Marshal(evt)
		if err != nil {
			return err
		}
		p.logger.InfoContext(ctx, "domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"event", string(payload),
		)
	}
	return nil
}
