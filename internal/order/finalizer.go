// Package order turns a paid (or cash-on-delivery) checkout session into
// orders at the order service, exactly once per checkout.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/cart"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/clients"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/payment"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/session"
)

type Verifier interface {
	Verify(ctx context.Context, token, reference string) (*clients.PaymentVerification, error)
}

type Submitter interface {
	Create(ctx context.Context, token, idempotencyKey string, payload any) (json.RawMessage, error)
	CreateGuest(ctx context.Context, idempotencyKey string, payload any) (json.RawMessage, error)
}

type Carts interface {
	Lines(ctx context.Context, s *checkout.Session, id checkout.Identity) ([]checkout.Line, error)
	Clear(ctx context.Context, s *checkout.Session, id checkout.Identity) error
}

type EventPublisher interface {
	OrderPlaced(ctx context.Context, s *checkout.Session, d checkout.OrderDraft, out checkout.Outcome) error
	CheckoutFailed(ctx context.Context, s *checkout.Session, d checkout.OrderDraft, out checkout.Outcome) error
}

type Notifier interface {
	OrderConfirmation(ctx context.Context, d checkout.OrderDraft, out checkout.Outcome) error
}

type Options struct {
	FeePercent             int64
	Currency               string
	HealDuplicateReference bool
	RefundMessage          string
}

type FinalizeRequest struct {
	Flow      checkout.Flow
	Reference string
}

type Finalizer struct {
	store     session.Store
	carts     Carts
	verifier  Verifier
	submitter Submitter
	ledger    Ledger
	events    EventPublisher
	notifier  Notifier
	opts      Options
	logger    *log.Logger
	now       func() time.Time
}

func NewFinalizer(store session.Store, carts Carts, verifier Verifier, submitter Submitter, ledger Ledger,
	events EventPublisher, notifier Notifier, opts Options, logger *log.Logger) *Finalizer {
	return &Finalizer{
		store:     store,
		carts:     carts,
		verifier:  verifier,
		submitter: submitter,
		ledger:    ledger,
		events:    events,
		notifier:  notifier,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Finalize submits the session's order and reports the outcome. A session that
// already completed returns its stored outcome marked Replayed. Failures to
// place the order are reported as a failed outcome, not an error; errors are
// reserved for validation, verification and infrastructure problems.
func (f *Finalizer) Finalize(ctx context.Context, sessionID string, id checkout.Identity, req FinalizeRequest) (*checkout.Outcome, error) {
	if !req.Flow.Valid() {
		return nil, checkout.ErrInvalidFlow
	}
	s, err := session.Load(ctx, f.store, sessionID, id)
	if err != nil {
		return nil, err
	}
	if s.Completed && s.LastOutcome != nil {
		out := *s.LastOutcome
		out.Replayed = true
		return &out, nil
	}

	var (
		draft checkout.OrderDraft
		key   string
	)
	switch req.Flow {
	case checkout.FlowGateway:
		draft, key, err = f.gatewayDraft(s, req.Reference)
	case checkout.FlowCOD:
		draft, key, err = f.codDraft(ctx, s, id)
	}
	if err != nil {
		return nil, err
	}

	prior, err := f.ledger.Claim(ctx, key, s.ID)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		// another request already finished this checkout
		s.ClearCheckout()
		s.Complete(*prior)
		if err := f.store.Save(ctx, s); err != nil {
			f.logger.Printf("session=%s save replayed outcome: %v", s.ID, err)
		}
		out := *prior
		out.Replayed = true
		return &out, nil
	}

	if req.Flow == checkout.FlowGateway {
		if err := f.verify(ctx, s, id, &draft); err != nil {
			f.release(ctx, s.ID, key)
			return nil, err
		}
	}

	raw, err := f.submit(ctx, s, id, key, draft)
	if err != nil {
		f.logger.Printf("session=%s ref=%s order creation failed: %v", s.ID, draft.Payment.Reference, err)
		return f.fail(ctx, s, key, draft, req.Flow, nil), nil
	}

	subs, err := parseSubOrders(raw)
	if err != nil {
		f.logger.Printf("session=%s ref=%s unreadable order response: %v", s.ID, draft.Payment.Reference, err)
		return f.fail(ctx, s, key, draft, req.Flow, nil), nil
	}
	rec := reconcile(subs, f.opts.HealDuplicateReference, f.logger, s.ID)
	if rec.AllFailed() {
		return f.fail(ctx, s, key, draft, req.Flow, rec.Orders), nil
	}
	for _, so := range rec.Failures {
		f.logger.Printf("session=%s order=%s store=%s partial failure status=%s remark=%q",
			s.ID, so.OrderID, so.StoreID, so.Status, so.Remark)
	}

	out := checkout.Outcome{
		Status:          checkout.StatusSuccess,
		Flow:            req.Flow,
		Reference:       draft.Payment.Reference,
		Orders:          rec.Orders,
		PartialFailures: rec.Failures,
		CompletedAt:     f.now().UTC(),
	}
	f.succeed(ctx, s, id, key, draft, out)
	return &out, nil
}

func (f *Finalizer) gatewayDraft(s *checkout.Session, reference string) (checkout.OrderDraft, string, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		ref = s.PaymentReference
	}
	if ref == "" {
		return checkout.OrderDraft{}, "", checkout.ErrReferenceNotFound
	}
	if s.Draft == nil {
		return checkout.OrderDraft{}, "", fmt.Errorf("%w: no pending order for %s", checkout.ErrReferenceNotFound, ref)
	}

	d := *s.Draft
	key := s.IdempotencyKey
	if d.Payment.Reference != ref {
		// Paid under an earlier initialization of this checkout (another tab or
		// a back navigation). The reference is still verified before use and
		// keys its own submission.
		f.logger.Printf("session=%s ref=%s superseded by %s, finalizing with the paid reference",
			s.ID, ref, d.Payment.Reference)
		d.Payment.Reference = ref
		key = ref
	}
	if key == "" {
		key = ref
	}
	return d, key, nil
}

// codDraft builds the draft from the live session. The idempotency key is
// derived from the session and quote so that concurrent submissions of the
// same checkout agree on it without coordinating.
func (f *Finalizer) codDraft(ctx context.Context, s *checkout.Session, id checkout.Identity) (checkout.OrderDraft, string, error) {
	p, err := payment.Prepare(ctx, s, id, f.carts, "", f.opts.FeePercent)
	if err != nil {
		return checkout.OrderDraft{}, "", err
	}

	seed := strings.Join([]string{s.ID, p.Quote.Fingerprint, p.Quote.Token, p.Quote.ComputedAt.Format(time.RFC3339Nano)}, "|")
	key := uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
	now := f.now().UTC()

	return checkout.OrderDraft{
		Payment: checkout.PaymentDescriptor{
			Reference:     "ALB-COD-" + strings.ReplaceAll(key, "-", "")[:12],
			Method:        checkout.FlowCOD,
			AmountMinor:   p.Allocation.AuthorizedMinor,
			Currency:      f.opts.Currency,
			GatewayStatus: "pay_on_delivery",
			InitializedAt: now,
		},
		Lines:                 p.Lines,
		Address:               p.Address,
		DeliveryToken:         p.Quote.Token,
		DeliveryChargeMinor:   p.Quote.ChargeMinor,
		DeliveryDiscountMinor: p.Quote.DiscountMinor,
		UserID:                id.UserID,
		Email:                 p.Email,
		Allocation:            p.Allocation,
		CreatedAt:             now,
	}, key, nil
}

func (f *Finalizer) verify(ctx context.Context, s *checkout.Session, id checkout.Identity, d *checkout.OrderDraft) error {
	v, err := f.verifier.Verify(ctx, id.Token, d.Payment.Reference)
	if err != nil {
		f.logger.Printf("session=%s ref=%s verification error: %v", s.ID, d.Payment.Reference, err)
		return fmt.Errorf("%w: %v", checkout.ErrVerificationFailed, err)
	}
	if !v.Successful() {
		f.logger.Printf("session=%s ref=%s verification status=%s", s.ID, d.Payment.Reference, v.Status)
		return fmt.Errorf("%w: gateway status %q", checkout.ErrVerificationFailed, v.Status)
	}

	if v.AmountMinor > 0 && v.AmountMinor != d.Payment.AmountMinor {
		f.logger.Printf("session=%s ref=%s verified amount %d, order total %d",
			s.ID, d.Payment.Reference, v.AmountMinor, d.Payment.AmountMinor)
		return fmt.Errorf("%w: paid %d, expected %d", checkout.ErrAmountMismatch, v.AmountMinor, d.Payment.AmountMinor)
	}

	d.Payment.GatewayStatus = v.Status
	if v.PaidAt != nil {
		d.Payment.PaidAt = v.PaidAt
	} else {
		now := f.now().UTC()
		d.Payment.PaidAt = &now
	}
	return nil
}

func (f *Finalizer) submit(ctx context.Context, s *checkout.Session, id checkout.Identity, key string, d checkout.OrderDraft) (json.RawMessage, error) {
	if id.IsGuest() {
		return f.submitter.CreateGuest(ctx, key, buildGuestPayload(s.ID, d))
	}
	return f.submitter.Create(ctx, id.Token, key, buildOrderPayload(s.ID, d))
}

// fail reports a failed outcome. The session keeps its draft and quote so the
// shopper can go back and retry.
func (f *Finalizer) fail(ctx context.Context, s *checkout.Session, key string, d checkout.OrderDraft, flow checkout.Flow, orders []checkout.SubOrder) *checkout.Outcome {
	f.release(ctx, s.ID, key)

	out := checkout.Outcome{
		Status:      checkout.StatusFailed,
		Flow:        flow,
		Reference:   d.Payment.Reference,
		Orders:      orders,
		Message:     f.opts.RefundMessage,
		CompletedAt: f.now().UTC(),
	}
	if err := f.events.CheckoutFailed(ctx, s, d, out); err != nil {
		f.logger.Printf("session=%s publish checkout failed: %v", s.ID, err)
	}
	return &out
}

// succeed applies the post-order side effects. They are best effort: the
// orders exist whatever happens here.
func (f *Finalizer) succeed(ctx context.Context, s *checkout.Session, id checkout.Identity, key string, d checkout.OrderDraft, out checkout.Outcome) {
	if err := f.ledger.Complete(ctx, key, out); err != nil {
		f.logger.Printf("session=%s complete submission: %v", s.ID, err)
	}
	if err := f.carts.Clear(ctx, s, id); err != nil {
		f.logger.Printf("session=%s clear cart: %v", s.ID, err)
	}

	s.ClearCheckout()
	if id.IsGuest() {
		s.GuestAddress = nil
		s.SelectedAddress = nil
		s.SelectedAddressID = ""
	}
	s.Complete(out)
	if err := f.store.Save(ctx, s); err != nil {
		f.logger.Printf("session=%s save completed session: %v", s.ID, err)
	}

	if err := f.events.OrderPlaced(ctx, s, d, out); err != nil {
		f.logger.Printf("session=%s publish order placed: %v", s.ID, err)
	}
	if err := f.notifier.OrderConfirmation(ctx, d, out); err != nil {
		f.logger.Printf("session=%s order confirmation email: %v", s.ID, err)
	}
	f.logger.Printf("session=%s ref=%s order placed flow=%s orders=%d partial_failures=%d",
		s.ID, out.Reference, out.Flow, len(out.Orders), len(out.PartialFailures))
}

func (f *Finalizer) release(ctx context.Context, sessionID, key string) {
	if err := f.ledger.Release(ctx, key); err != nil && !errors.Is(err, context.Canceled) {
		f.logger.Printf("session=%s release submission: %v", sessionID, err)
	}
}

// compile-time check
var _ Carts = (*cart.Source)(nil)
