package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

var twoStoreCart = []checkout.Line{
	{ProductID: "p1", StoreID: "storeA", Quantity: 2, UnitPrice: 3000},
	{ProductID: "p2", StoreID: "storeB", Quantity: 1, UnitPrice: 4000},
}

func TestGroupByStore(t *testing.T) {
	lines := append([]checkout.Line{}, twoStoreCart...)
	lines = append(lines, checkout.Line{ProductID: "p3", StoreID: "storeA", Quantity: 1, UnitPrice: 0.5})

	groups := GroupByStore(lines)
	require.Len(t, groups, 2)
	assert.Equal(t, "storeA", groups[0].StoreID)
	assert.Equal(t, int64(600050), groups[0].SubtotalMinor)
	assert.Len(t, groups[0].Lines, 2)
	assert.Equal(t, "storeB", groups[1].StoreID)
	assert.Equal(t, int64(400000), groups[1].SubtotalMinor)
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint(twoStoreCart, "addr-1")

	reversed := []checkout.Line{twoStoreCart[1], twoStoreCart[0]}
	assert.Equal(t, fp, Fingerprint(reversed, "addr-1"), "line order must not matter")
	assert.NotEqual(t, fp, Fingerprint(twoStoreCart, "addr-2"))

	changed := append([]checkout.Line{}, twoStoreCart...)
	changed[0].Quantity = 3
	assert.NotEqual(t, fp, Fingerprint(changed, "addr-1"))
}

func TestNormalizeStoreIDs(t *testing.T) {
	items := NormalizeStoreIDs(twoStoreCart)
	require.Len(t, items, 2)
	for i, it := range items {
		assert.Equal(t, twoStoreCart[i].StoreID, it.StoreID)
		assert.Equal(t, twoStoreCart[i].StoreID, it.StoreIDSnake)
	}
	assert.Equal(t, 6000.0, items[0].TotalPrice)
}

type fakeBackend struct {
	GetFn   func(ctx context.Context, token string) ([]checkout.Line, error)
	ClearFn func(ctx context.Context, token string) error
}

func (f *fakeBackend) Get(ctx context.Context, token string) ([]checkout.Line, error) {
	return f.GetFn(ctx, token)
}

func (f *fakeBackend) Clear(ctx context.Context, token string) error { return f.ClearFn(ctx, token) }

func TestSource(t *testing.T) {
	var cleared string
	backend := &fakeBackend{
		GetFn: func(ctx context.Context, token string) ([]checkout.Line, error) {
			if token != "tok" {
				return nil, errors.New("bad token")
			}
			return twoStoreCart, nil
		},
		ClearFn: func(ctx context.Context, token string) error {
			cleared = token
			return nil
		},
	}
	src := NewSource(backend)
	ctx := context.Background()

	sess := &checkout.Session{GuestCart: twoStoreCart[:1]}
	lines, err := src.Lines(ctx, sess, checkout.Identity{})
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	require.NoError(t, src.Clear(ctx, sess, checkout.Identity{}))
	assert.Empty(t, sess.GuestCart)

	user := checkout.Identity{UserID: "u1", Token: "tok"}
	lines, err = src.Lines(ctx, &checkout.Session{}, user)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
	require.NoError(t, src.Clear(ctx, &checkout.Session{}, user))
	assert.Equal(t, "tok", cleared)

	_, err = src.Lines(ctx, &checkout.Session{}, checkout.Identity{UserID: "u1", Token: "x"})
	assert.Error(t, err)
}
