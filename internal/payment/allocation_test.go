package payment

import (
	"errors"
	"math/rand"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/cart"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/clients"
)

func TestAllocate_TwoStoreExample(t *testing.T) {
	groups := []cart.StoreGroup{
		{StoreID: "A", SubtotalMinor: 600000},
		{StoreID: "B", SubtotalMinor: 400000},
	}

	a := Allocate(groups, 50000, 0, 5)

	assert.Equal(t, int64(1000000), a.ProductTotalMinor)
	assert.Equal(t, int64(50000), a.PlatformProductFeeMinor)
	assert.Equal(t, int64(950000), a.SellerTotalMinor)
	assert.Equal(t, int64(100000), a.PlatformTotalMinor)
	assert.Equal(t, int64(1050000), a.AuthorizedMinor)
	require.Len(t, a.Stores, 2)
	assert.Equal(t, checkout.StoreAllocation{StoreID: "A", ProductAmountMinor: 600000, SellerAmountMinor: 570000, PlatformFeeMinor: 30000}, a.Stores[0])
	assert.Equal(t, checkout.StoreAllocation{StoreID: "B", ProductAmountMinor: 400000, SellerAmountMinor: 380000, PlatformFeeMinor: 20000}, a.Stores[1])
}

func TestAllocate_DiscountBorneByPlatform(t *testing.T) {
	a := Allocate([]cart.StoreGroup{{StoreID: "A", SubtotalMinor: 10000}}, 2000, 500, 5)
	assert.Equal(t, int64(500+2000-500), a.PlatformTotalMinor)
	assert.Equal(t, int64(10000+2000-500), a.AuthorizedMinor)
	assert.Equal(t, int64(9500), a.Stores[0].SellerAmountMinor)
}

func TestAllocate_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(5)
		groups := make([]cart.StoreGroup, n)
		for j := range groups {
			groups[j] = cart.StoreGroup{StoreID: strconv.Itoa(j), SubtotalMinor: 1 + rng.Int63n(5_000_000)}
		}
		delivery := rng.Int63n(500_000)

		a := Allocate(groups, delivery, 0, 5)

		var sellers, fees int64
		for j, st := range a.Stores {
			assert.Equal(t, groups[j].SubtotalMinor, st.SellerAmountMinor+st.PlatformFeeMinor, "no leak within a store")
			sellers += st.SellerAmountMinor
			fees += st.PlatformFeeMinor
		}
		assert.Equal(t, a.AuthorizedMinor, sellers+fees+delivery)

		// product-level fee may drift from the per-store sum by rounding only
		drift := a.PlatformProductFeeMinor - fees
		assert.LessOrEqual(t, drift, int64(n))
		assert.GreaterOrEqual(t, drift, -int64(n))
	}
}

func TestNewReference(t *testing.T) {
	now := time.UnixMilli(1718000000123)
	ref := NewReference(now)
	assert.Regexp(t, regexp.MustCompile(`^ALB-1718000000123-[0-9a-f]{12}$`), ref)
	assert.NotEqual(t, ref, NewReference(now))
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Category
	}{
		{"network", &clients.UpstreamError{Kind: clients.KindNetwork, Message: "dial tcp: refused"}, CategoryNetwork},
		{"5xx", &clients.UpstreamError{Kind: clients.KindUnavailable, Status: 503}, CategoryServiceUnavailable},
		{"code email", &clients.UpstreamError{Kind: clients.KindRejected, Code: "invalid_email"}, CategoryInvalidEmail},
		{"message amount", &clients.UpstreamError{Kind: clients.KindRejected, Message: "Amount must be positive"}, CategoryInvalidAmount},
		{"message email", &clients.UpstreamError{Kind: clients.KindRejected, Message: "Invalid Email Address Passed"}, CategoryInvalidEmail},
		{"other upstream", &clients.UpstreamError{Kind: clients.KindRejected, Message: "duplicate transaction"}, CategoryGeneric},
		{"no url", ErrNoAuthorizationURL, CategoryGeneric},
		{"plain", errors.New("boom"), CategoryGeneric},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ge := Categorize(tc.err)
			assert.Equal(t, tc.want, ge.Category)
			assert.NotEmpty(t, ge.UserMessage())
			assert.ErrorIs(t, ge, tc.err)
		})
	}
	assert.Nil(t, Categorize(nil))
}
