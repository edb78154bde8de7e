package checkout

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartTotalMinor(t *testing.T) {
	lines := []Line{
		{ProductID: "p1", StoreID: "s1", Quantity: 2, UnitPrice: 3000},
		{ProductID: "p2", StoreID: "s2", Quantity: 1, UnitPrice: 4000},
	}
	assert.Equal(t, int64(1000000), CartTotalMinor(lines))
	assert.Equal(t, int64(0), CartTotalMinor(nil))
}

func TestSessionLifecycle(t *testing.T) {
	s := &Session{
		ID:               "sess-1",
		Quote:            &DeliveryQuote{Token: "tok"},
		Draft:            &OrderDraft{DeliveryToken: "tok"},
		PaymentReference: "ALB-1",
	}

	s.ClearCheckout()
	assert.Nil(t, s.Quote)
	assert.Nil(t, s.Draft)
	assert.Empty(t, s.PaymentReference)

	s.Complete(Outcome{Status: StatusSuccess, Flow: FlowCOD})
	require.NotNil(t, s.LastOutcome)
	assert.True(t, s.Completed)
	assert.Equal(t, StatusSuccess, s.LastOutcome.Status)
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(ErrEmptyCart))
	assert.True(t, IsValidation(fmt.Errorf("init payment: %w", ErrStaleQuote)))
	assert.False(t, IsValidation(ErrDeliveryUnavailable))
	assert.False(t, IsValidation(errors.New("boom")))
}

func TestFlowValid(t *testing.T) {
	assert.True(t, FlowCOD.Valid())
	assert.True(t, FlowGateway.Valid())
	assert.False(t, Flow("card").Valid())
}

func TestSessionDeliveryAddress(t *testing.T) {
	s := &Session{}
	assert.Nil(t, s.DeliveryAddress())

	s.SelectAddress(Address{ID: "a1", City: "Lagos"})
	require.NotNil(t, s.DeliveryAddress())
	assert.Equal(t, "Lagos", s.DeliveryAddress().City)

	s.SelectAddress(Address{City: "Abuja"})
	assert.Nil(t, s.DeliveryAddress(), "address without id is not deliverable")
}
