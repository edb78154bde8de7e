package payment

import (
	"context"
	"strings"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/cart"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

type CartSource interface {
	Lines(ctx context.Context, s *checkout.Session, id checkout.Identity) ([]checkout.Line, error)
}

// Prepared is a validated checkout ready to be paid for or ordered.
type Prepared struct {
	Lines      []checkout.Line
	Groups     []cart.StoreGroup
	Address    checkout.Address
	Quote      checkout.DeliveryQuote
	Email      string
	Allocation checkout.Allocation
}

// Prepare checks the session has everything an order needs and computes the
// allocation. It makes no upstream calls other than reading the cart.
func Prepare(ctx context.Context, s *checkout.Session, id checkout.Identity, carts CartSource, email string, feePercent int64) (*Prepared, error) {
	lines, err := carts.Lines(ctx, s, id)
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
	if s.Quote == nil || s.Quote.Token == "" {
		return nil, checkout.ErrMissingDeliveryToken
	}
	if s.Quote.Fingerprint != cart.Fingerprint(lines, addr.ID) {
		return nil, checkout.ErrStaleQuote
	}

	email = firstNonEmpty(email, id.Email, s.GuestEmail)
	if email == "" && id.IsGuest() {
		return nil, checkout.ErrMissingEmail
	}

	groups := cart.GroupByStore(lines)
	return &Prepared{
		Lines:      lines,
		Groups:     groups,
		Address:    *addr,
		Quote:      *s.Quote,
		Email:      email,
		Allocation: Allocate(groups, s.Quote.ChargeMinor, s.Quote.DiscountMinor, feePercent),
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
