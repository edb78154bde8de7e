package order

import (
	"strings"
	"time"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/cart"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/money"
)

type paymentPayload struct {
	Reference   string     `json:"reference"`
	Method      string     `json:"method"`
	Amount      float64    `json:"amount"`
	AmountMinor int64      `json:"amount_minor"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	Split       bool       `json:"split_payment"`
}

type deliveryPayload struct {
	Token    string  `json:"delivery_token"`
	Charge   float64 `json:"delivery_charge"`
	Discount float64 `json:"delivery_discount"`
}

// orderPayload is the authenticated order-creation body.
type orderPayload struct {
	UserID     string              `json:"user_id"`
	SessionID  string              `json:"session_id"`
	Items      []cart.OrderItem    `json:"cart"`
	Address    checkout.Address    `json:"address"`
	Payment    paymentPayload      `json:"payment"`
	Delivery   deliveryPayload     `json:"delivery"`
	Allocation checkout.Allocation `json:"split"`
	Total      float64             `json:"grand_total"`
}

type guestInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// guestOrderPayload is the guest order-creation body.
type guestOrderPayload struct {
	SessionID       string              `json:"session_id"`
	GuestInfo       guestInfo           `json:"guest_info"`
	DeliveryAddress checkout.Address    `json:"delivery_address"`
	CartItems       []cart.OrderItem    `json:"cart_items"`
	Payment         paymentPayload      `json:"payment"`
	Delivery        deliveryPayload     `json:"delivery"`
	Allocation      checkout.Allocation `json:"split"`
	Total           float64             `json:"grand_total"`
}

// splitName treats the first word as the first name and the rest as the last name.
func splitName(full string) (first, last string) {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func buildPayment(d checkout.OrderDraft) paymentPayload {
	return paymentPayload{
		Reference:   d.Payment.Reference,
		Method:      string(d.Payment.Method),
		Amount:      money.ToMajor(d.Payment.AmountMinor),
		AmountMinor: d.Payment.AmountMinor,
		Currency:    d.Payment.Currency,
		Status:      d.Payment.GatewayStatus,
		PaidAt:      d.Payment.PaidAt,
		Split:       d.Payment.Split,
	}
}

func buildDelivery(d checkout.OrderDraft) deliveryPayload {
	return deliveryPayload{
		Token:    d.DeliveryToken,
		Charge:   money.ToMajor(d.DeliveryChargeMinor),
		Discount: money.ToMajor(d.DeliveryDiscountMinor),
	}
}

func buildOrderPayload(sessionID string, d checkout.OrderDraft) orderPayload {
	return orderPayload{
		UserID:     d.UserID,
		SessionID:  sessionID,
		Items:      cart.NormalizeStoreIDs(d.Lines),
		Address:    d.Address,
		Payment:    buildPayment(d),
		Delivery:   buildDelivery(d),
		Allocation: d.Allocation,
		Total:      money.ToMajor(d.Allocation.AuthorizedMinor),
	}
}

func buildGuestPayload(sessionID string, d checkout.OrderDraft) guestOrderPayload {
	first, last := splitName(d.Address.FullName)
	return guestOrderPayload{
		SessionID: sessionID,
		GuestInfo: guestInfo{
			FirstName: first,
			LastName:  last,
			Email:     d.Email,
			Phone:     d.Address.Phone,
		},
		DeliveryAddress: d.Address,
		CartItems:       cart.NormalizeStoreIDs(d.Lines),
		Payment:         buildPayment(d),
		Delivery:        buildDelivery(d),
		Allocation:      d.Allocation,
		Total:           money.ToMajor(d.Allocation.AuthorizedMinor),
	}
}
