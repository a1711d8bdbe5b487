package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared   string
	kind       string
	durable    bool
	exchange   string
	msgs       []amqp.Publishing
	declareErr error
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp.Table) error {
	c.declared, c.kind, c.durable = name, kind, durable
	return c.declareErr
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, _ string, _, _ bool, msg amqp.Publishing) error {
	c.exchange = exchange
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestRabbitMQSinkPublishesToFanout(t *testing.T) {
	ch := &fakeChannel{}
	sink, err := newRabbitMQSink(ch, "admin_events")
	require.NoError(t, err)
	assert.Equal(t, "admin_events", ch.declared)
	assert.Equal(t, "fanout", ch.kind)
	assert.True(t, ch.durable)

	e := NewAdminProvisioned(time.Now(), 3, "trainops", "Train Ops", "TRAIN", "Rail Co", "pending")
	require.NoError(t, sink.Publish(context.Background(), e))
	require.Len(t, ch.msgs, 1)

	msg := ch.msgs[0]
	assert.Equal(t, "admin_events", ch.exchange)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, e.EventID, msg.MessageId)

	var decoded AdminProvisioned
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "trainops", decoded.Username)
	assert.Equal(t, "Rail Co", decoded.CompanyName)

	require.NoError(t, sink.Close())
	assert.True(t, ch.closed)
}

func TestRabbitMQSinkDeclareFailure(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := newRabbitMQSink(ch, "admin_events")
	require.Error(t, err)
	assert.True(t, ch.closed)
}
