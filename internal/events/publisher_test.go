package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/middleware"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/sequence"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	PublishFn func(ctx context.Context, exchange, key string, msg amqp.Publishing) error
	sent      []published
	closed    bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.PublishFn != nil {
		if err := f.PublishFn(ctx, exchange, key, msg); err != nil {
			return err
		}
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type failingSeq struct{}

func (failingSeq) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	return 0, errors.New("db down")
}

var (
	placedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sess     = &checkout.Session{ID: "sess-1", UserID: "u1"}
	draft    = checkout.OrderDraft{
		Payment: checkout.PaymentDescriptor{Reference: "ALB-1-abc", Method: checkout.FlowGateway, AmountMinor: 1050000, Currency: "NGN"},
		UserID:  "u1",
		Email:   "ada@example.com",
		Allocation: checkout.Allocation{
			PlatformTotalMinor: 100000,
			Stores: []checkout.StoreAllocation{
				{StoreID: "storeA", ProductAmountMinor: 600000, SellerAmountMinor: 570000, PlatformFeeMinor: 30000},
				{StoreID: "storeB", ProductAmountMinor: 400000, SellerAmountMinor: 380000, PlatformFeeMinor: 20000},
			},
		},
	}
)

func TestOrderPlaced(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, sequence.NewCounter(), "")
	p.now = func() time.Time { return placedAt }
	ctx := middleware.WithCorrelationID(context.Background(), "cid-1")

	out := checkout.Outcome{
		Status:      checkout.StatusSuccess,
		Flow:        checkout.FlowGateway,
		Reference:   "ALB-1-abc",
		Orders:      []checkout.SubOrder{{OrderID: "o1", StoreID: "storeA", Status: "Confirmed"}, {OrderID: "o2", StoreID: "storeB", Status: "Confirmed", Healed: true}},
		CompletedAt: placedAt,
	}
	require.NoError(t, p.OrderPlaced(ctx, sess, draft, out))
	require.NoError(t, p.OrderPlaced(ctx, sess, draft, out))
	require.Len(t, ch.sent, 2)

	msg := ch.sent[1]
	assert.Equal(t, EventsExchange, msg.exchange)
	assert.Equal(t, OrderPlacedRoutingKey, msg.key)
	assert.Equal(t, "application/json", msg.msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.msg.DeliveryMode)
	assert.Equal(t, "cid-1", msg.msg.CorrelationId)

	var ev OrderPlacedEvent
	require.NoError(t, json.Unmarshal(msg.msg.Body, &ev))
	require.NoError(t, ev.Validate(EventTypeOrderPlaced, 1))
	assert.Equal(t, "sess-1", ev.PartitionKey)
	assert.Equal(t, defaultProducer, ev.Producer)
	assert.Equal(t, orderPlacedSchema, ev.Schema)
	assert.Equal(t, "cid-1", ev.CorrelationID)
	require.NotNil(t, ev.Sequence)
	assert.Equal(t, int64(2), *ev.Sequence)

	assert.Equal(t, "ALB-1-abc", ev.Payload.Reference)
	assert.Equal(t, int64(1050000), ev.Payload.AmountMinor)
	assert.False(t, ev.Payload.Guest)
	assert.Len(t, ev.Payload.Stores, 2)
	assert.Equal(t, int64(570000), ev.Payload.Stores[0].SellerAmountMinor)
	require.Len(t, ev.Payload.Orders, 2)
	assert.True(t, ev.Payload.Orders[1].Healed)
}

func TestCheckoutFailed(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, sequence.NewCounter(), "checkout-test")
	p.now = func() time.Time { return placedAt }

	out := checkout.Outcome{
		Status:    checkout.StatusFailed,
		Flow:      checkout.FlowCOD,
		Reference: "ALB-COD-abc",
		Orders:    []checkout.SubOrder{{OrderID: "o1", Status: "failed", Remark: "Out of stock"}, {Status: "failed"}},
	}
	require.NoError(t, p.CheckoutFailed(context.Background(), sess, draft, out))
	require.Len(t, ch.sent, 1)
	assert.Equal(t, CheckoutFailedRoutingKey, ch.sent[0].key)

	var ev CheckoutFailedEvent
	require.NoError(t, json.Unmarshal(ch.sent[0].msg.Body, &ev))
	require.NoError(t, ev.Validate(EventTypeCheckoutFailed, 1))
	assert.Equal(t, "checkout-test", ev.Producer)
	assert.Equal(t, "cod", ev.Payload.Flow)
	assert.Equal(t, []string{"Out of stock"}, ev.Payload.Remarks)
}

func TestPublishErrors(t *testing.T) {
	out := checkout.Outcome{Status: checkout.StatusSuccess}

	ch := &fakeChannel{}
	p := newPublisher(ch, failingSeq{}, "")
	err := p.OrderPlaced(context.Background(), sess, draft, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserve sequence")
	assert.Empty(t, ch.sent)

	boom := errors.New("channel closed")
	ch = &fakeChannel{PublishFn: func(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return boom
	}}
	p = newPublisher(ch, sequence.NewCounter(), "")
	assert.ErrorIs(t, p.OrderPlaced(context.Background(), sess, draft, out), boom)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestEnvelopeValidate(t *testing.T) {
	ev := newEvent(context.Background(), EventTypeOrderPlaced, orderPlacedSchema, "p", "sess-1", 1, placedAt, OrderPlacedPayload{})
	require.NoError(t, ev.Validate(EventTypeOrderPlaced, 1))

	assert.Error(t, ev.Validate(EventTypeCheckoutFailed, 1))
	assert.Error(t, ev.Validate(EventTypeOrderPlaced, 2))

	ev.PartitionKey = ""
	assert.Error(t, ev.Validate(EventTypeOrderPlaced, 1))
}
