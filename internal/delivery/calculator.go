// Package delivery computes and caches the delivery quote for a checkout session.
package delivery

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/cart"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/clients"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/money"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/session"
)

type Quoter interface {
	Calculate(ctx context.Context, token string, req clients.DeliveryRequest) (*clients.DeliveryResponse, error)
}

type CartSource interface {
	Lines(ctx context.Context, s *checkout.Session, id checkout.Identity) ([]checkout.Line, error)
}

type Result struct {
	Quote           checkout.DeliveryQuote `json:"quote"`
	CartTotalMinor  int64                  `json:"cartTotalMinor"`
	GrandTotalMinor int64                  `json:"grandTotalMinor"`
	Cached          bool                   `json:"cached"`
}

type Calculator struct {
	store         session.Store
	carts         CartSource
	quoter        Quoter
	firstLineOnly bool
	logger        *log.Logger
	now           func() time.Time

	inflight singleflight.Group
}

// NewCalculator returns a Calculator. With firstLineOnly the upstream is asked
// to price only the first cart line at quantity 1, which keeps weight-based
// rates from scaling with the cart.
func NewCalculator(store session.Store, carts CartSource, quoter Quoter, firstLineOnly bool, logger *log.Logger) *Calculator {
	return &Calculator{
		store:         store,
		carts:         carts,
		quoter:        quoter,
		firstLineOnly: firstLineOnly,
		logger:        logger,
		now:           time.Now,
	}
}

// Quote returns the delivery quote for the session's current cart and address.
// A stored quote for the same pair is reused, and concurrent calls for the same
// pair share one upstream request.
func (c *Calculator) Quote(ctx context.Context, sessionID string, id checkout.Identity) (*Result, error) {
	s, err := session.Load(ctx, c.store, sessionID, id)
	if err != nil {
		return nil, err
	}
	lines, err := c.carts.Lines(ctx, s, id)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, checkout.ErrEmptyCart
	}
	addr := s.DeliveryAddress()
	if addr == nil {
		return nil, checkout.ErrMissingAddress
	}

	total := checkout.CartTotalMinor(lines)
	fp := cart.Fingerprint(lines, addr.ID)
	if q := s.Quote; q != nil && q.Token != "" && q.Fingerprint == fp {
		return result(*q, total, true), nil
	}

	v, err, shared := c.inflight.Do(s.ID+":"+fp, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), s, id, lines, *addr, fp)
	})
	if shared {
		c.logger.Printf("session=%s delivery quote shared with in-flight request", s.ID)
	}
	if err != nil {
		return nil, err
	}
	return result(v.(checkout.DeliveryQuote), total, false), nil
}

func (c *Calculator) fetch(ctx context.Context, s *checkout.Session, id checkout.Identity, lines []checkout.Line, addr checkout.Address, fp string) (checkout.DeliveryQuote, error) {
	resp, err := c.quoter.Calculate(ctx, id.Token, clients.DeliveryRequest{
		Cart:    c.items(lines),
		Address: addr,
	})
	if err != nil || resp.Token == "" {
		reason := "no delivery token returned"
		if err != nil {
			reason = err.Error()
			if ue, ok := clients.AsUpstream(err); ok {
				reason = ue.Message
			}
		}
		c.logger.Printf("session=%s delivery unavailable: %s", s.ID, reason)

		s.ResetQuote()
		if saveErr := c.store.Save(ctx, s); saveErr != nil {
			c.logger.Printf("session=%s reset quote: %v", s.ID, saveErr)
		}
		return checkout.DeliveryQuote{}, fmt.Errorf("%w: %s", checkout.ErrDeliveryUnavailable, reason)
	}

	q := checkout.DeliveryQuote{
		Token:         resp.Token,
		ChargeMinor:   money.ToMinor(resp.TotalCharge),
		DiscountMinor: money.ToMinor(resp.Discount),
		Fingerprint:   fp,
		ComputedAt:    c.now().UTC(),
	}
	s.Quote = &q
	// a fresh quote after a completed order is a new checkout
	s.BeginCheckout()
	if err := c.store.Save(ctx, s); err != nil {
		return checkout.DeliveryQuote{}, err
	}
	return q, nil
}

func (c *Calculator) items(lines []checkout.Line) []clients.DeliveryItem {
	if c.firstLineOnly {
		l := lines[0]
		return []clients.DeliveryItem{{ProductID: l.ProductID, StoreID: l.StoreID, Quantity: 1, UnitPrice: l.UnitPrice, VariantID: l.VariantID}}
	}
	out := make([]clients.DeliveryItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, clients.DeliveryItem{ProductID: l.ProductID, StoreID: l.StoreID, Quantity: l.Quantity, UnitPrice: l.UnitPrice, VariantID: l.VariantID})
	}
	return out
}

func result(q checkout.DeliveryQuote, total int64, cached bool) *Result {
	return &Result{
		Quote:           q,
		CartTotalMinor:  total,
		GrandTotalMinor: total + q.ChargeMinor - q.DiscountMinor,
		Cached:          cached,
	}
}
