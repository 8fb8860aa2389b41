package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dserve-api/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange, key, msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:          "order-1",
		OrderNumber: "#5",
		OrderType:   models.OrderTakeOut,
		TotalAmount: decimal.RequireFromString("150.00"),
		CreatedAt:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{Name: "Latte", Quantity: 1, Size: models.SizeLarge},
		},
	}
}

func TestAMQPPublisherPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{exchange: DefaultExchange, ch: ch}

	require.NoError(t, p.PublishOrderPlaced(context.Background(), NewOrderPlaced(sampleOrder())))
	require.Len(t, ch.sent, 1)

	got := ch.sent[0]
	assert.Equal(t, "pos_orders", got.exchange)
	assert.Equal(t, "order.placed.take-out", got.key)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, "order-1", got.msg.MessageId)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "#5", body["order_number"])
	assert.Equal(t, "150", body["total"])
	assert.Len(t, body["items"], 1)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisherWrapsErrors(t *testing.T) {
	boom := errors.New("channel closed")
	p := &AMQPPublisher{exchange: DefaultExchange, ch: &fakeChannel{err: boom}}
	err := p.PublishOrderPlaced(context.Background(), NewOrderPlaced(sampleOrder()))
	assert.ErrorIs(t, err, boom)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.PublishOrderPlaced(context.Background(), OrderPlaced{}))
	assert.NoError(t, p.Close())
}
