package checkout

import (
	"errors"
	"fmt"
)

// Validation errors. None of these are returned after an upstream call was made.
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrMissingAddress       = errors.New("delivery address not selected")
	ErrMissingDeliveryToken = errors.New("delivery charge not calculated")
	ErrStaleQuote           = errors.New("delivery quote is stale, recalculate delivery")
	ErrMissingEmail         = errors.New("email is required for guest checkout")
	ErrInvalidFlow          = errors.New("unknown checkout flow")
	ErrInvalidAddress       = errors.New("invalid delivery address")
)

// Service errors.
var (
	ErrDeliveryUnavailable = errors.New("delivery unavailable")
	ErrReferenceNotFound   = errors.New("payment reference not found")
	ErrVerificationFailed  = errors.New("payment verification failed")

	// ErrAmountMismatch is a verification failure: the gateway charged a
	// different amount than the order total.
	ErrAmountMismatch = fmt.Errorf("%w: amount paid does not match order total", ErrVerificationFailed)
)

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyCart,
		ErrMissingAddress,
		ErrMissingDeliveryToken,
		ErrStaleQuote,
		ErrMissingEmail,
		ErrInvalidFlow,
		ErrInvalidAddress,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
