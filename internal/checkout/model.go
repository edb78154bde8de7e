package checkout

import (
	"time"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/money"
)

// Line is one cart line. Prices travel in major units; totals are computed in minor units.
type Line struct {
	ProductID string  `json:"productId" validate:"required"`
	StoreID   string  `json:"storeId" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
	VariantID string  `json:"variantId,omitempty"`
	Name      string  `json:"name,omitempty"`
}

func (l Line) TotalMinor() int64 {
	return money.LineMinor(l.UnitPrice, l.Quantity)
}

// CartTotalMinor sums line totals, each rounded on its own.
func CartTotalMinor(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.TotalMinor()
	}
	return total
}

type Address struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	Country    string `json:"country" validate:"required"`
	PostalCode string `json:"postal_code,omitempty"`
	IsGuest    bool   `json:"is_guest"`
}

// DeliveryQuote is valid only for the (cart, address) pair its Fingerprint was computed from.
type DeliveryQuote struct {
	Token         string    `json:"token"`
	ChargeMinor   int64     `json:"chargeMinor"`
	DiscountMinor int64     `json:"discountMinor"`
	Fingerprint   string    `json:"fingerprint"`
	ComputedAt    time.Time `json:"computedAt"`
}

// Identity is the caller of a checkout operation. An empty UserID is a guest.
type Identity struct {
	UserID string
	Email  string
	Token  string
}

func (i Identity) IsGuest() bool { return i.UserID == "" }

type Flow string

const (
	FlowCOD     Flow = "cod"
	FlowGateway Flow = "gateway"
)

func (f Flow) Valid() bool { return f == FlowCOD || f == FlowGateway }

type PaymentDescriptor struct {
	Reference        string     `json:"reference"`
	Method           Flow       `json:"method"`
	AmountMinor      int64      `json:"amountMinor"`
	Currency         string     `json:"currency"`
	GatewayStatus    string     `json:"gatewayStatus,omitempty"`
	AuthorizationURL string     `json:"authorizationUrl,omitempty"`
	InitializedAt    time.Time  `json:"initializedAt"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	Split            bool       `json:"split"`
}

type StoreAllocation struct {
	StoreID            string `json:"storeId"`
	ProductAmountMinor int64  `json:"productAmountMinor"`
	SellerAmountMinor  int64  `json:"sellerAmountMinor"`
	PlatformFeeMinor   int64  `json:"platformFeeMinor"`
}

// Allocation is the seller/platform breakdown of one authorized payment.
type Allocation struct {
	ProductTotalMinor       int64             `json:"productTotalMinor"`
	PlatformProductFeeMinor int64             `json:"platformProductFeeMinor"`
	PlatformTotalMinor      int64             `json:"platformTotalMinor"`
	SellerTotalMinor        int64             `json:"sellerTotalMinor"`
	DeliveryChargeMinor     int64             `json:"deliveryChargeMinor"`
	DeliveryDiscountMinor   int64             `json:"deliveryDiscountMinor"`
	AuthorizedMinor         int64             `json:"authorizedMinor"`
	Stores                  []StoreAllocation `json:"stores"`
}

type OrderDraft struct {
	Payment               PaymentDescriptor `json:"payment"`
	Lines                 []Line            `json:"lines"`
	Address               Address           `json:"address"`
	DeliveryToken         string            `json:"deliveryToken"`
	DeliveryChargeMinor   int64             `json:"deliveryChargeMinor"`
	DeliveryDiscountMinor int64             `json:"deliveryDiscountMinor"`
	UserID                string            `json:"userId,omitempty"`
	Email                 string            `json:"email,omitempty"`
	Allocation            Allocation        `json:"allocation"`
	CreatedAt             time.Time         `json:"createdAt"`
}

type Status string

const (
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

// SubOrder is one per-store order as reported by the order service.
type SubOrder struct {
	OrderID        string `json:"orderId,omitempty"`
	StoreID        string `json:"storeId,omitempty"`
	Status         string `json:"status"`
	Remark         string `json:"remark,omitempty"`
	Healed         bool   `json:"healed,omitempty"`
	OriginalStatus string `json:"originalStatus,omitempty"`
}

type Outcome struct {
	Status          Status     `json:"status"`
	Flow            Flow       `json:"flow"`
	Reference       string     `json:"reference,omitempty"`
	Orders          []SubOrder `json:"orders,omitempty"`
	PartialFailures []SubOrder `json:"partialFailures,omitempty"`
	Message         string     `json:"message,omitempty"`
	Replayed        bool       `json:"replayed,omitempty"`
	CompletedAt     time.Time  `json:"completedAt"`
}

// Session is the server-side checkout state carried across the payment redirect.
type Session struct {
	ID                string         `json:"id"`
	UserID            string         `json:"userId,omitempty"`
	GuestEmail        string         `json:"guestEmail,omitempty"`
	GuestAddress      *Address       `json:"guestAddress,omitempty"`
	GuestCart         []Line         `json:"guestCart,omitempty"`
	SelectedAddressID string         `json:"selectedAddressId,omitempty"`
	SelectedAddress   *Address       `json:"selectedAddress,omitempty"`
	Quote             *DeliveryQuote `json:"quote,omitempty"`
	PaymentReference  string         `json:"paymentReference,omitempty"`
	IdempotencyKey    string         `json:"idempotencyKey,omitempty"`
	Draft             *OrderDraft    `json:"draft,omitempty"`
	Completed         bool           `json:"completed"`
	LastOutcome       *Outcome       `json:"lastOutcome,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// SelectAddress makes addr the delivery address.
func (s *Session) SelectAddress(addr Address) {
	s.SelectedAddressID = addr.ID
	s.SelectedAddress = &addr
}

// DeliveryAddress returns the selected address, or nil when none with an id is selected.
func (s *Session) DeliveryAddress() *Address {
	if s.SelectedAddress == nil || s.SelectedAddress.ID == "" || s.SelectedAddress.ID != s.SelectedAddressID {
		return nil
	}
	return s.SelectedAddress
}

// BeginCheckout starts a new checkout attempt, dropping the replayable outcome of the last one.
func (s *Session) BeginCheckout() {
	s.Completed = false
	s.LastOutcome = nil
}

// ResetQuote drops the delivery quote so the next payment attempt needs a fresh one.
func (s *Session) ResetQuote() {
	s.Quote = nil
}

// ClearCheckout drops everything tied to the finished checkout attempt.
func (s *Session) ClearCheckout() {
	s.Quote = nil
	s.Draft = nil
	s.PaymentReference = ""
}

// Complete marks the session finished and stores the outcome for replay.
func (s *Session) Complete(out Outcome) {
	s.Completed = true
	s.LastOutcome = &out
}
