// Package session persists checkout sessions across the payment redirect.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

var ErrNotFound = errors.New("checkout session not found")

type Store interface {
	Get(ctx context.Context, id string) (*checkout.Session, error)
	Save(ctx context.Context, s *checkout.Session) error
	Delete(ctx context.Context, id string) error
}

// New returns an unsaved session for the given identity.
func New(id checkout.Identity) *checkout.Session {
	now := time.Now().UTC()
	return &checkout.Session{
		ID:         uuid.NewString(),
		UserID:     id.UserID,
		GuestEmail: id.Email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func encode(s *checkout.Session) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return b, nil
}

func decode(id string, b []byte) (*checkout.Session, error) {
	var s checkout.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}
