package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092", "localhost:9093"}, ClientID: "intake"})
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, p.brokers)
	assert.Empty(t, p.writers)
	assert.Equal(t, "intake", p.transport.ClientID)
	assert.Nil(t, p.transport.TLS)
	assert.Nil(t, p.transport.SASL)
}

func TestNewProducer_Security(t *testing.T) {
	p, err := NewProducer(Config{
		Brokers:      []string{"kafka:9093"},
		TLS:          true,
		SASLEnabled:  true,
		SASLUsername: "svc",
		SASLPassword: "pw",
	})
	require.NoError(t, err)
	require.NotNil(t, p.transport.TLS)
	assert.Equal(t, plain.Mechanism{Username: "svc", Password: "pw"}, p.transport.SASL)

	_, err = NewProducer(Config{SASLEnabled: true, SASLMechanism: "GSSAPI"})
	assert.ErrorContains(t, err, "unsupported SASL mechanism")
}

func TestSASLMechanism_Scram(t *testing.T) {
	for _, name := range []string{"SCRAM-SHA-256", "scram-sha-512"} {
		m, err := Config{SASLEnabled: true, SASLMechanism: name, SASLUsername: "u", SASLPassword: "p"}.saslMechanism()
		require.NoError(t, err, name)
		assert.Contains(t, m.Name(), "SCRAM-SHA-")
	}
}

func TestProducer_WriterPerTopic(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)

	w1 := p.writer("topic-a")
	assert.Same(t, w1, p.writer("topic-a"))
	w3 := p.writer("topic-b")
	assert.NotSame(t, w1, w3)
	assert.Same(t, p.transport, w1.Transport)
	assert.Len(t, p.writers, 2)

	require.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}

func TestProducer_PublishNothing(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	require.NoError(t, p.Publish(t.Context(), "topic-a"))
	assert.Empty(t, p.writers)
}

func TestNewConsumer(t *testing.T) {
	noop := func(_ context.Context, _ Message) error { return nil }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := NewConsumer(Config{Brokers: []string{"localhost:9092"}}, "topic-a", noop, logger, FromBeginning())
	require.NoError(t, err)
	defer c.Close()
	assert.False(t, c.grouped)
	assert.Equal(t, "topic-a", c.reader.Config().Topic)

	g, err := NewConsumer(Config{Brokers: []string{"localhost:9092"}, ConsumerGroup: "g"}, "topic-a", noop, logger)
	require.NoError(t, err)
	defer g.Close()
	assert.True(t, g.grouped)
}
