package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed message. A returned error leaves the
// message uncommitted.
type Handler func(ctx context.Context, msg Message) error

// Consumer reads one topic. With a ConsumerGroup offsets are committed
// after each handled message; without one it reads from StartOffset.
type Consumer struct {
	reader  *kafkago.Reader
	handler Handler
	grouped bool
	logger  *slog.Logger
}

// ConsumerOption adjusts the reader before it is created.
type ConsumerOption func(*kafkago.ReaderConfig)

// FromBeginning starts an ungrouped consumer at the oldest retained offset.
func FromBeginning() ConsumerOption {
	return func(rc *kafkago.ReaderConfig) { rc.StartOffset = kafkago.FirstOffset }
}

// NewConsumer creates a Consumer for topic.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger, opts ...ConsumerOption) (*Consumer, error) {
	mechanism, err := cfg.saslMechanism()
	if err != nil {
		return nil, err
	}

	rc := kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    10 * 1024 * 1024,
		StartOffset: kafkago.LastOffset,
	}
	if cfg.TLS || mechanism != nil {
		rc.Dialer = &kafkago.Dialer{
			ClientID:      cfg.ClientID,
			DualStack:     true,
			TLS:           cfg.tlsConfig(),
			SASLMechanism: mechanism,
		}
	}
	for _, opt := range opts {
		opt(&rc)
	}

	return &Consumer{
		reader:  kafkago.NewReader(rc),
		handler: handler,
		grouped: cfg.ConsumerGroup != "",
		logger:  logger,
	}, nil
}

// Start consumes until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	rc := c.reader.Config()
	c.logger.Info("consumer starting", "topic", rc.Topic, "group", rc.GroupID)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping")
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		msg := Message{
			Key:     m.Key,
			Value:   m.Value,
			Headers: make(map[string]string, len(m.Headers)),
		}
		for _, h := range m.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}

		if err := c.handler(ctx, msg); err != nil {
			c.logger.Error("handler error",
				"topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
			continue
		}

		if !c.grouped {
			continue
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit error",
				"topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
		}
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}
