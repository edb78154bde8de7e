package events

import (
	"time"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

type PlacedOrder struct {
	OrderID string `json:"orderId,omitempty"`
	StoreID string `json:"storeId,omitempty"`
	Status  string `json:"status"`
	Healed  bool   `json:"healed,omitempty"`
}

type StoreShare struct {
	StoreID           string `json:"storeId"`
	SellerAmountMinor int64  `json:"sellerAmountMinor"`
	PlatformFeeMinor  int64  `json:"platformFeeMinor"`
}

type OrderPlacedPayload struct {
	SessionID          string        `json:"sessionId"`
	UserID             string        `json:"userId,omitempty"`
	Guest              bool          `json:"guest"`
	Email              string        `json:"email,omitempty"`
	Reference          string        `json:"reference"`
	Flow               string        `json:"flow"`
	Currency           string        `json:"currency"`
	AmountMinor        int64         `json:"amountMinor"`
	PlatformTotalMinor int64         `json:"platformTotalMinor"`
	Stores             []StoreShare  `json:"stores,omitempty"`
	Orders             []PlacedOrder `json:"orders"`
	PartialFailures    int           `json:"partialFailures"`
	PlacedAt           time.Time     `json:"placedAt"`
}

type CheckoutFailedPayload struct {
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId,omitempty"`
	Reference   string    `json:"reference"`
	Flow        string    `json:"flow"`
	AmountMinor int64     `json:"amountMinor"`
	Remarks     []string  `json:"remarks,omitempty"`
	FailedAt    time.Time `json:"failedAt"`
}

type (
	OrderPlacedEvent    = EventEnvelope[OrderPlacedPayload]
	CheckoutFailedEvent = EventEnvelope[CheckoutFailedPayload]
)

func orderPlacedPayload(s *checkout.Session, d checkout.OrderDraft, out checkout.Outcome) OrderPlacedPayload {
	p := OrderPlacedPayload{
		SessionID:          s.ID,
		UserID:             d.UserID,
		Guest:              d.UserID == "",
		Email:              d.Email,
		Reference:          out.Reference,
		Flow:               string(out.Flow),
		Currency:           d.Payment.Currency,
		AmountMinor:        d.Payment.AmountMinor,
		PlatformTotalMinor: d.Allocation.PlatformTotalMinor,
		PartialFailures:    len(out.PartialFailures),
		PlacedAt:           out.CompletedAt,
	}
	for _, st := range d.Allocation.Stores {
		p.Stores = append(p.Stores, StoreShare{
			StoreID:           st.StoreID,
			SellerAmountMinor: st.SellerAmountMinor,
			PlatformFeeMinor:  st.PlatformFeeMinor,
		})
	}
	for _, so := range out.Orders {
		p.Orders = append(p.Orders, PlacedOrder{OrderID: so.OrderID, StoreID: so.StoreID, Status: so.Status, Healed: so.Healed})
	}
	return p
}

func checkoutFailedPayload(s *checkout.Session, d checkout.OrderDraft, out checkout.Outcome) CheckoutFailedPayload {
	p := CheckoutFailedPayload{
		SessionID:   s.ID,
		UserID:      d.UserID,
		Reference:   out.Reference,
		Flow:        string(out.Flow),
		AmountMinor: d.Payment.AmountMinor,
		FailedAt:    out.CompletedAt,
	}
	for _, so := range out.Orders {
		if so.Remark != "" {
			p.Remarks = append(p.Remarks, so.Remark)
		}
	}
	return p
}
