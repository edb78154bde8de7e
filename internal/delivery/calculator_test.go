package delivery

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/cart"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/clients"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/session"
)

type fakeQuoter struct {
	CalculateFn func(ctx context.Context, token string, req clients.DeliveryRequest) (*clients.DeliveryResponse, error)
	calls       atomic.Int32
}

func (f *fakeQuoter) Calculate(ctx context.Context, token string, req clients.DeliveryRequest) (*clients.DeliveryResponse, error) {
	f.calls.Add(1)
	return f.CalculateFn(ctx, token, req)
}

var guestCart = []checkout.Line{
	{ProductID: "p1", StoreID: "storeA", Quantity: 2, UnitPrice: 3000},
	{ProductID: "p2", StoreID: "storeB", Quantity: 1, UnitPrice: 4000},
}

var lagos = checkout.Address{ID: "guest-1", FullName: "Ada Obi", City: "Lagos", IsGuest: true}

func setup(t *testing.T, q Quoter, mutate func(s *checkout.Session)) (*Calculator, session.Store, string) {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	s := session.New(checkout.Identity{})
	s.GuestCart = guestCart
	s.GuestAddress = &lagos
	s.SelectAddress(lagos)
	if mutate != nil {
		mutate(s)
	}
	require.NoError(t, store.Save(context.Background(), s))

	calc := NewCalculator(store, cart.NewSource(nil), q, true, log.New(io.Discard, "", 0))
	return calc, store, s.ID
}

func okQuoter() *fakeQuoter {
	return &fakeQuoter{CalculateFn: func(ctx context.Context, token string, req clients.DeliveryRequest) (*clients.DeliveryResponse, error) {
		return &clients.DeliveryResponse{Token: "dtok", TotalCharge: 500, Discount: 100}, nil
	}}
}

func TestQuote_Success(t *testing.T) {
	q := okQuoter()
	var seen clients.DeliveryRequest
	inner := q.CalculateFn
	q.CalculateFn = func(ctx context.Context, token string, req clients.DeliveryRequest) (*clients.DeliveryResponse, error) {
		seen = req
		return inner(ctx, token, req)
	}
	calc, store, id := setup(t, q, nil)

	res, err := calc.Quote(context.Background(), id, checkout.Identity{})
	require.NoError(t, err)
	assert.Equal(t, "dtok", res.Quote.Token)
	assert.Equal(t, int64(50000), res.Quote.ChargeMinor)
	assert.Equal(t, int64(10000), res.Quote.DiscountMinor)
	assert.Equal(t, int64(1000000), res.CartTotalMinor)
	assert.Equal(t, int64(1000000+50000-10000), res.GrandTotalMinor)
	assert.False(t, res.Cached)

	// first line only, quantity 1
	require.Len(t, seen.Cart, 1)
	assert.Equal(t, "p1", seen.Cart[0].ProductID)
	assert.Equal(t, 1, seen.Cart[0].Quantity)
	assert.Equal(t, "guest-1", seen.Address.ID)

	s, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, s.Quote)
	assert.Equal(t, cart.Fingerprint(guestCart, "guest-1"), s.Quote.Fingerprint)
}

func TestQuote_FullCartWhenApproximationOff(t *testing.T) {
	var seen clients.DeliveryRequest
	q := &fakeQuoter{CalculateFn: func(ctx context.Context, token string, req clients.DeliveryRequest) (*clients.DeliveryResponse, error) {
		seen = req
		return &clients.DeliveryResponse{Token: "dtok", TotalCharge: 500}, nil
	}}
	calc, _, id := setup(t, q, nil)
	calc.firstLineOnly = false

	_, err := calc.Quote(context.Background(), id, checkout.Identity{})
	require.NoError(t, err)
	require.Len(t, seen.Cart, 2)
	assert.Equal(t, 2, seen.Cart[0].Quantity)
}

func TestQuote_ReusedForUnchangedPair(t *testing.T) {
	q := okQuoter()
	calc, store, id := setup(t, q, nil)
	ctx := context.Background()

	_, err := calc.Quote(ctx, id, checkout.Identity{})
	require.NoError(t, err)
	res, err := calc.Quote(ctx, id, checkout.Identity{})
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, int32(1), q.calls.Load())

	// changing the cart invalidates the quote
	s, err := store.Get(ctx, id)
	require.NoError(t, err)
	s.GuestCart = append(s.GuestCart, checkout.Line{ProductID: "p3", StoreID: "storeB", Quantity: 1, UnitPrice: 10})
	require.NoError(t, store.Save(ctx, s))

	res, err = calc.Quote(ctx, id, checkout.Identity{})
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, int32(2), q.calls.Load())
}

func TestQuote_ConcurrentCallsShareOneRequest(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	q := &fakeQuoter{CalculateFn: func(ctx context.Context, token string, req clients.DeliveryRequest) (*clients.DeliveryResponse, error) {
		once.Do(func() { close(started) })
		<-release
		return &clients.DeliveryResponse{Token: "dtok", TotalCharge: 500}, nil
	}}
	calc, _, id := setup(t, q, nil)

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	errs := make([]error, 2)
	run := func(i int) {
		defer wg.Done()
		results[i], errs[i] = calc.Quote(context.Background(), id, checkout.Identity{})
	}

	wg.Add(1)
	go run(0)
	<-started
	wg.Add(1)
	go run(1)
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), q.calls.Load())
	assert.Equal(t, results[0].Quote.Token, results[1].Quote.Token)
}

func TestQuote_Validation(t *testing.T) {
	q := okQuoter()

	calc, _, id := setup(t, q, func(s *checkout.Session) { s.GuestCart = nil })
	_, err := calc.Quote(context.Background(), id, checkout.Identity{})
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)

	calc, _, id = setup(t, q, func(s *checkout.Session) { s.SelectedAddressID = ""; s.SelectedAddress = nil })
	_, err = calc.Quote(context.Background(), id, checkout.Identity{})
	assert.ErrorIs(t, err, checkout.ErrMissingAddress)

	calc, _, id = setup(t, q, func(s *checkout.Session) { s.SelectAddress(checkout.Address{City: "Lagos"}) })
	_, err = calc.Quote(context.Background(), id, checkout.Identity{})
	assert.ErrorIs(t, err, checkout.ErrMissingAddress)

	assert.Equal(t, int32(0), q.calls.Load(), "validation must not reach the network")
}

func TestQuote_FailureResetsQuote(t *testing.T) {
	q := &fakeQuoter{CalculateFn: func(ctx context.Context, token string, req clients.DeliveryRequest) (*clients.DeliveryResponse, error) {
		return nil, &clients.UpstreamError{Service: "backend", Status: 200, Message: "Location not serviceable", Kind: clients.KindRejected}
	}}
	calc, store, id := setup(t, q, func(s *checkout.Session) {
		s.Quote = &checkout.DeliveryQuote{Token: "old", ChargeMinor: 1, Fingerprint: "stale"}
	})

	_, err := calc.Quote(context.Background(), id, checkout.Identity{})
	require.Error(t, err)
	assert.ErrorIs(t, err, checkout.ErrDeliveryUnavailable)
	assert.Contains(t, err.Error(), "Location not serviceable")

	s, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, s.Quote)
}

func TestQuote_MissingTokenIsUnavailable(t *testing.T) {
	q := &fakeQuoter{CalculateFn: func(ctx context.Context, token string, req clients.DeliveryRequest) (*clients.DeliveryResponse, error) {
		return &clients.DeliveryResponse{TotalCharge: 500}, nil
	}}
	calc, _, id := setup(t, q, nil)

	_, err := calc.Quote(context.Background(), id, checkout.Identity{})
	assert.ErrorIs(t, err, checkout.ErrDeliveryUnavailable)
}

func TestQuote_SessionNotFound(t *testing.T) {
	calc, _, _ := setup(t, okQuoter(), nil)
	_, err := calc.Quote(context.Background(), "missing", checkout.Identity{})
	assert.True(t, errors.Is(err, session.ErrNotFound))
}
