package session

import (
	"context"
	"errors"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

var ErrForbidden = errors.New("checkout session belongs to another user")

// Load fetches a session and checks that the caller may use it. A guest
// session picked up by a signed-in user is bound to that user.
func Load(ctx context.Context, store Store, sessionID string, id checkout.Identity) (*checkout.Session, error) {
	s, err := store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch {
	case s.UserID == "" && !id.IsGuest():
		s.UserID = id.UserID
	case s.UserID != "" && s.UserID != id.UserID:
		return nil, ErrForbidden
	}
	return s, nil
}
