// Package address decides which delivery address a checkout session uses.
package address

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/session"
)

const guestIDPrefix = "guest-"

// Lister returns an authenticated user's saved addresses.
type Lister interface {
	List(ctx context.Context, token string) ([]checkout.Address, error)
}

type Resolution struct {
	Addresses []checkout.Address `json:"addresses,omitempty"`
	Selected  *checkout.Address  `json:"selected,omitempty"`
	NeedsForm bool               `json:"needsForm"`
}

type Resolver struct {
	store    session.Store
	lister   Lister
	validate *validator.Validate
	logger   *log.Logger
}

func NewResolver(store session.Store, lister Lister, logger *log.Logger) *Resolver {
	return &Resolver{store: store, lister: lister, validate: validator.New(), logger: logger}
}

// Resolve returns the candidate addresses for the session. Signed-in users get
// their saved addresses with the first one selected when none was; guests get
// their stored address, or NeedsForm when they have not entered one.
func (r *Resolver) Resolve(ctx context.Context, sessionID string, id checkout.Identity) (*Resolution, error) {
	s, err := session.Load(ctx, r.store, sessionID, id)
	if err != nil {
		return nil, err
	}

	if id.IsGuest() {
		if s.GuestAddress == nil {
			return &Resolution{NeedsForm: true}, nil
		}
		if s.SelectedAddressID != s.GuestAddress.ID {
			s.SelectAddress(*s.GuestAddress)
			if err := r.store.Save(ctx, s); err != nil {
				return nil, err
			}
		}
		return &Resolution{
			Addresses: []checkout.Address{*s.GuestAddress},
			Selected:  s.GuestAddress,
		}, nil
	}

	addrs, err := r.lister.List(ctx, id.Token)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	res := &Resolution{Addresses: addrs}
	if len(addrs) == 0 {
		res.NeedsForm = true
		return res, nil
	}

	selected := find(addrs, s.SelectedAddressID)
	if selected == nil {
		selected = &addrs[0]
		r.logger.Printf("session=%s auto-selected address %s", s.ID, selected.ID)
	}
	// refresh the snapshot so edits made through address CRUD are picked up
	if s.DeliveryAddress() == nil || *s.DeliveryAddress() != *selected {
		s.SelectAddress(*selected)
		if err := r.store.Save(ctx, s); err != nil {
			return nil, err
		}
	}
	res.Selected = selected
	return res, nil
}

// SaveGuest stores and selects a guest address. It never reaches address CRUD.
func (r *Resolver) SaveGuest(ctx context.Context, sessionID string, addr checkout.Address, email string) (*checkout.Address, error) {
	s, err := session.Load(ctx, r.store, sessionID, checkout.Identity{})
	if err != nil {
		return nil, err
	}
	if err := r.validate.Struct(addr); err != nil {
		return nil, fmt.Errorf("%w: %v", checkout.ErrInvalidAddress, err)
	}
	if err := r.validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: %v", checkout.ErrMissingEmail, err)
	}

	addr.IsGuest = true
	if s.GuestAddress != nil {
		addr.ID = s.GuestAddress.ID
	} else {
		addr.ID = guestIDPrefix + uuid.NewString()
	}

	s.GuestAddress = &addr
	s.GuestEmail = email
	s.SelectAddress(addr)
	if err := r.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return &addr, nil
}

// Select makes one of the user's saved addresses (or the guest address) current.
func (r *Resolver) Select(ctx context.Context, sessionID string, id checkout.Identity, addressID string) (*checkout.Address, error) {
	s, err := session.Load(ctx, r.store, sessionID, id)
	if err != nil {
		return nil, err
	}

	var selected *checkout.Address
	if id.IsGuest() {
		if s.GuestAddress != nil && s.GuestAddress.ID == addressID {
			selected = s.GuestAddress
		}
	} else {
		addrs, err := r.lister.List(ctx, id.Token)
		if err != nil {
			return nil, fmt.Errorf("list addresses: %w", err)
		}
		selected = find(addrs, addressID)
	}
	if selected == nil {
		return nil, fmt.Errorf("%w: unknown address %q", checkout.ErrMissingAddress, addressID)
	}

	s.SelectAddress(*selected)
	if err := r.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return selected, nil
}

func find(addrs []checkout.Address, id string) *checkout.Address {
	if id == "" {
		return nil
	}
	for i := range addrs {
		if addrs[i].ID == id {
			return &addrs[i]
		}
	}
	return nil
}
