package address

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/session"
)

type fakeLister struct {
	ListFn func(ctx context.Context, token string) ([]checkout.Address, error)
	calls  int
}

func (f *fakeLister) List(ctx context.Context, token string) ([]checkout.Address, error) {
	f.calls++
	return f.ListFn(ctx, token)
}

func newResolver(t *testing.T, lister Lister) (*Resolver, session.Store) {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	return NewResolver(store, lister, log.New(io.Discard, "", 0)), store
}

func saveSession(t *testing.T, store session.Store, id checkout.Identity) *checkout.Session {
	t.Helper()
	s := session.New(id)
	require.NoError(t, store.Save(context.Background(), s))
	return s
}

var saved = []checkout.Address{
	{ID: "a1", FullName: "Ada Obi", City: "Lagos"},
	{ID: "a2", FullName: "Ada Obi", City: "Abuja"},
}

func TestResolve_AuthenticatedAutoSelectsFirst(t *testing.T) {
	lister := &fakeLister{ListFn: func(ctx context.Context, token string) ([]checkout.Address, error) {
		assert.Equal(t, "tok", token)
		return saved, nil
	}}
	r, store := newResolver(t, lister)
	user := checkout.Identity{UserID: "u1", Token: "tok"}
	s := saveSession(t, store, user)

	res, err := r.Resolve(context.Background(), s.ID, user)
	require.NoError(t, err)
	require.NotNil(t, res.Selected)
	assert.Equal(t, "a1", res.Selected.ID)
	assert.Len(t, res.Addresses, 2)
	assert.False(t, res.NeedsForm)

	got, err := store.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "a1", got.SelectedAddressID)
	require.NotNil(t, got.DeliveryAddress())
}

func TestResolve_AuthenticatedKeepsExistingSelection(t *testing.T) {
	lister := &fakeLister{ListFn: func(ctx context.Context, token string) ([]checkout.Address, error) {
		return saved, nil
	}}
	r, store := newResolver(t, lister)
	user := checkout.Identity{UserID: "u1", Token: "tok"}
	s := session.New(user)
	s.SelectAddress(saved[1])
	require.NoError(t, store.Save(context.Background(), s))

	res, err := r.Resolve(context.Background(), s.ID, user)
	require.NoError(t, err)
	assert.Equal(t, "a2", res.Selected.ID)
}

func TestResolve_AuthenticatedNoAddresses(t *testing.T) {
	lister := &fakeLister{ListFn: func(ctx context.Context, token string) ([]checkout.Address, error) {
		return nil, nil
	}}
	r, store := newResolver(t, lister)
	user := checkout.Identity{UserID: "u1"}
	s := saveSession(t, store, user)

	res, err := r.Resolve(context.Background(), s.ID, user)
	require.NoError(t, err)
	assert.True(t, res.NeedsForm)
	assert.Nil(t, res.Selected)
}

func TestResolve_ListError(t *testing.T) {
	lister := &fakeLister{ListFn: func(ctx context.Context, token string) ([]checkout.Address, error) {
		return nil, errors.New("address service down")
	}}
	r, store := newResolver(t, lister)
	user := checkout.Identity{UserID: "u1"}
	s := saveSession(t, store, user)

	_, err := r.Resolve(context.Background(), s.ID, user)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address service down")
}

func TestGuestAddressFlow(t *testing.T) {
	lister := &fakeLister{ListFn: func(ctx context.Context, token string) ([]checkout.Address, error) {
		t.Fatal("guest flow must not call address CRUD")
		return nil, nil
	}}
	r, store := newResolver(t, lister)
	ctx := context.Background()
	s := saveSession(t, store, checkout.Identity{})

	res, err := r.Resolve(ctx, s.ID, checkout.Identity{})
	require.NoError(t, err)
	assert.True(t, res.NeedsForm)

	addr, err := r.SaveGuest(ctx, s.ID, checkout.Address{
		FullName: "Ada Obi",
		Phone:    "+2348000000000",
		Street:   "1 Marina",
		City:     "Lagos",
		State:    "Lagos",
		Country:  "NG",
	}, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr.ID, guestIDPrefix))
	assert.True(t, addr.IsGuest)

	// a reload resolves the same address without asking again
	res, err = r.Resolve(ctx, s.ID, checkout.Identity{})
	require.NoError(t, err)
	assert.False(t, res.NeedsForm)
	require.NotNil(t, res.Selected)
	assert.Equal(t, addr.ID, res.Selected.ID)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.GuestEmail)
	assert.Equal(t, addr.ID, got.DeliveryAddress().ID)

	// editing keeps the id
	edited, err := r.SaveGuest(ctx, s.ID, checkout.Address{
		FullName: "Ada Obi", Phone: "1", Street: "2 Marina", City: "Lagos", State: "Lagos", Country: "NG",
	}, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, addr.ID, edited.ID)
	assert.Equal(t, 0, lister.calls)
}

func TestSaveGuest_Validation(t *testing.T) {
	r, store := newResolver(t, &fakeLister{})
	s := saveSession(t, store, checkout.Identity{})

	_, err := r.SaveGuest(context.Background(), s.ID, checkout.Address{City: "Lagos"}, "ada@example.com")
	assert.ErrorIs(t, err, checkout.ErrInvalidAddress)

	valid := checkout.Address{FullName: "A", Phone: "1", Street: "s", City: "c", State: "st", Country: "NG"}
	_, err = r.SaveGuest(context.Background(), s.ID, valid, "not-an-email")
	assert.ErrorIs(t, err, checkout.ErrMissingEmail)
}

func TestSelect(t *testing.T) {
	lister := &fakeLister{ListFn: func(ctx context.Context, token string) ([]checkout.Address, error) {
		return saved, nil
	}}
	r, store := newResolver(t, lister)
	user := checkout.Identity{UserID: "u1"}
	s := saveSession(t, store, user)

	addr, err := r.Select(context.Background(), s.ID, user, "a2")
	require.NoError(t, err)
	assert.Equal(t, "Abuja", addr.City)

	_, err = r.Select(context.Background(), s.ID, user, "zzz")
	assert.ErrorIs(t, err, checkout.ErrMissingAddress)
}
