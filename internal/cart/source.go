package cart

import (
	"context"
	"fmt"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

// Backend is the authenticated user's server-side cart.
type Backend interface {
	Get(ctx context.Context, token string) ([]checkout.Line, error)
	Clear(ctx context.Context, token string) error
}

// Source resolves the cart for a session: guests use the lines stored in the
// session, authenticated users the backend cart.
type Source struct {
	backend Backend
}

func NewSource(backend Backend) *Source { return &Source{backend: backend} }

func (s *Source) Lines(ctx context.Context, sess *checkout.Session, id checkout.Identity) ([]checkout.Line, error) {
	if id.IsGuest() {
		return sess.GuestCart, nil
	}
	lines, err := s.backend.Get(ctx, id.Token)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return lines, nil
}

// Clear empties the cart that Lines reads from.
func (s *Source) Clear(ctx context.Context, sess *checkout.Session, id checkout.Identity) error {
	if id.IsGuest() {
		sess.GuestCart = nil
		return nil
	}
	if err := s.backend.Clear(ctx, id.Token); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
