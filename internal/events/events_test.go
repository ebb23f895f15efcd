package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/storefront/internal/order"
)

var sample = order.Event{
	Type:       order.EventCreated,
	OrderID:    "o1",
	OwnerID:    "u1",
	TotalPrice: 61.75,
	ItemCount:  3,
	OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	require.NoError(t, p.Publish(context.Background(), sample))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("o1"), w.msgs[0].Key)
	assert.Equal(t, "type", w.msgs[0].Headers[0].Key)

	var got order.Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, sample, got)
}

func TestKafkaPublisher_PropagatesWriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("no brokers")}}
	assert.Error(t, p.Publish(context.Background(), sample))
}

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func (c *fakeChannel) Close() error { return nil }

func TestRabbitPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{ch: ch}

	require.NoError(t, p.Publish(context.Background(), sample))
	assert.Equal(t, Exchange, ch.exchange)
	assert.Equal(t, "order.created.v1", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, order.EventCreated, ch.msg.Type)

	var got order.Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, "o1", got.OrderID)
	assert.NoError(t, p.Close())
}

func TestNop(t *testing.T) {
	var p order.Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), sample))
}
