package payment

import (
	"errors"
	"strings"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/clients"
)

var ErrNoAuthorizationURL = errors.New("payment gateway returned no authorization url")

type Category string

const (
	CategoryServiceUnavailable Category = "service_unavailable"
	CategoryInvalidEmail       Category = "invalid_email"
	CategoryInvalidAmount      Category = "invalid_amount"
	CategoryNetwork            Category = "network_error"
	CategoryGeneric            Category = "payment_failed"
)

var categoryMessages = map[Category]string{
	CategoryServiceUnavailable: "Payment service is temporarily unavailable. Please try again shortly.",
	CategoryInvalidEmail:       "Please provide a valid email address for payment.",
	CategoryInvalidAmount:      "The payment amount is invalid. Please review your cart and try again.",
	CategoryNetwork:            "Could not reach the payment service. Check your connection and try again.",
	CategoryGeneric:            "Payment could not be initialized. Please try again.",
}

// GatewayError is a payment initialization failure with a user-facing category.
type GatewayError struct {
	Category Category
	Err      error
}

func (e *GatewayError) Error() string {
	return "payment initialization: " + string(e.Category) + ": " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error { return e.Err }

// UserMessage is safe to show to the shopper.
func (e *GatewayError) UserMessage() string { return categoryMessages[e.Category] }

// Categorize maps an initialization error to a GatewayError.
func Categorize(err error) *GatewayError {
	if err == nil {
		return nil
	}
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge
	}
	return &GatewayError{Category: category(err), Err: err}
}

func category(err error) Category {
	if errors.Is(err, ErrNoAuthorizationURL) {
		return CategoryGeneric
	}
	ue, ok := clients.AsUpstream(err)
	if !ok {
		return CategoryGeneric
	}

	switch ue.Code {
	case "service_unavailable", "gateway_unavailable":
		return CategoryServiceUnavailable
	case "invalid_email":
		return CategoryInvalidEmail
	case "invalid_amount":
		return CategoryInvalidAmount
	}

	switch ue.Kind {
	case clients.KindNetwork:
		return CategoryNetwork
	case clients.KindUnavailable:
		return CategoryServiceUnavailable
	}

	msg := strings.ToLower(ue.Message)
	switch {
	case strings.Contains(msg, "email"):
		return CategoryInvalidEmail
	case strings.Contains(msg, "amount"):
		return CategoryInvalidAmount
	}
	return CategoryGeneric
}
