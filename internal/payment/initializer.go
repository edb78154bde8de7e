// Package payment initializes gateway payments for a checkout session,
// including the seller/platform split.
package payment

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/clients"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/session"
)

type Gateway interface {
	Initialize(ctx context.Context, token string, req clients.PaymentRequest) (*clients.PaymentInit, error)
	InitializeSplit(ctx context.Context, token string, req clients.PaymentRequest) (*clients.PaymentInit, error)
}

type Options struct {
	FeePercent  int64
	Currency    string
	CallbackURL string
}

type InitOptions struct {
	Email       string
	CallbackURL string
}

type InitResult struct {
	AuthorizationURL string              `json:"authorizationUrl"`
	Reference        string              `json:"reference"`
	Split            bool                `json:"split"`
	FellBack         bool                `json:"fellBack"`
	Allocation       checkout.Allocation `json:"allocation"`
}

type Initializer struct {
	store   session.Store
	carts   CartSource
	gateway Gateway
	opts    Options
	logger  *log.Logger
	now     func() time.Time
}

func NewInitializer(store session.Store, carts CartSource, gateway Gateway, opts Options, logger *log.Logger) *Initializer {
	return &Initializer{store: store, carts: carts, gateway: gateway, opts: opts, logger: logger, now: time.Now}
}

// Initialize validates the session, computes the split and asks the gateway for
// an authorization URL. Signed-in checkouts use the split endpoint; if that is
// refused for authorization reasons the request is retried once, unsplit.
func (in *Initializer) Initialize(ctx context.Context, sessionID string, id checkout.Identity, opts InitOptions) (*InitResult, error) {
	s, err := session.Load(ctx, in.store, sessionID, id)
	if err != nil {
		return nil, err
	}
	p, err := Prepare(ctx, s, id, in.carts, opts.Email, in.opts.FeePercent)
	if err != nil {
		return nil, err
	}
	if p.Email == "" {
		// the gateway needs a receipt address even for signed-in users
		return nil, checkout.ErrMissingEmail
	}

	now := in.now().UTC()
	ref := NewReference(now)
	callback := opts.CallbackURL
	if callback == "" {
		callback = in.opts.CallbackURL
	}

	req := clients.PaymentRequest{
		Email:       p.Email,
		AmountMinor: p.Allocation.AuthorizedMinor,
		Currency:    in.opts.Currency,
		Reference:   ref,
		CallbackURL: callback,
		Metadata: clients.PaymentMetadata{
			SessionID:     s.ID,
			UserID:        id.UserID,
			DeliveryToken: p.Quote.Token,
			Allocation:    p.Allocation,
		},
	}

	split := len(p.Groups) > 0 && !id.IsGuest()
	res := &InitResult{Reference: ref, Allocation: p.Allocation}

	var init *clients.PaymentInit
	if split {
		req.StoreID = p.Groups[0].StoreID
		req.SplitPayment = true
		for _, st := range p.Allocation.Stores {
			req.Subaccounts = append(req.Subaccounts, clients.Subaccount{StoreID: st.StoreID, AmountMinor: st.SellerAmountMinor})
		}

		init, err = in.gateway.InitializeSplit(ctx, id.Token, req)
		refused := err != nil && clients.IsUnauthorized(err)
		if refused || (err == nil && (init == nil || init.AuthorizationURL == "")) {
			if refused {
				in.logger.Printf("session=%s ref=%s split payment refused, retrying unsplit: %v", s.ID, ref, err)
			} else {
				in.logger.Printf("session=%s ref=%s split payment returned no authorization url, retrying unsplit", s.ID, ref)
			}
			res.FellBack = true
			split = false
			init, err = in.gateway.Initialize(ctx, id.Token, req.WithoutSplit())
		}
	} else {
		init, err = in.gateway.Initialize(ctx, id.Token, req)
	}
	if err != nil {
		ge := Categorize(err)
		in.logger.Printf("session=%s ref=%s payment init failed category=%s: %v", s.ID, ref, ge.Category, err)
		return nil, ge
	}
	if init == nil || init.AuthorizationURL == "" {
		in.logger.Printf("session=%s ref=%s no authorization url", s.ID, ref)
		return nil, Categorize(ErrNoAuthorizationURL)
	}
	res.Split = split
	res.AuthorizationURL = init.AuthorizationURL

	s.BeginCheckout()
	s.PaymentReference = ref
	s.IdempotencyKey = uuid.NewString()
	s.Draft = &checkout.OrderDraft{
		Payment: checkout.PaymentDescriptor{
			Reference:        ref,
			Method:           checkout.FlowGateway,
			AmountMinor:      p.Allocation.AuthorizedMinor,
			Currency:         in.opts.Currency,
			GatewayStatus:    "pending",
			AuthorizationURL: init.AuthorizationURL,
			InitializedAt:    now,
			Split:            split,
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
	}
	if err := in.store.Save(ctx, s); err != nil {
		return nil, err
	}

	in.logger.Printf("session=%s ref=%s payment initialized split=%t fallback=%t amount=%d",
		s.ID, ref, res.Split, res.FellBack, p.Allocation.AuthorizedMinor)
	return res, nil
}
