package httpapi

import (
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

type createSessionResponse struct {
	ID string `json:"id"`
}

type replaceCartRequest struct {
	Items []checkout.Line `json:"items" validate:"dive"`
}

type guestAddressRequest struct {
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"full_name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	Country    string `json:"country" validate:"required"`
	PostalCode string `json:"postal_code"`
}

func (r guestAddressRequest) address() checkout.Address {
	return checkout.Address{
		FullName:   r.FullName,
		Phone:      r.Phone,
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		Country:    r.Country,
		PostalCode: r.PostalCode,
	}
}

type selectAddressRequest struct {
	AddressID string `json:"addressId" validate:"required"`
}

type initPaymentRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	CallbackURL string `json:"callbackUrl" validate:"omitempty,url"`
}

type finalizeRequest struct {
	Flow      string `json:"flow" validate:"required,oneof=cod gateway"`
	Reference string `json:"reference"`
	Ref       string `json:"ref"`
}

// sessionView is what the browser sees of a session.
type sessionView struct {
	ID               string                  `json:"id"`
	Guest            bool                    `json:"guest"`
	GuestEmail       string                  `json:"guestEmail,omitempty"`
	GuestCart        []checkout.Line         `json:"guestCart,omitempty"`
	SelectedAddress  *checkout.Address       `json:"selectedAddress,omitempty"`
	Quote            *checkout.DeliveryQuote `json:"deliveryQuote,omitempty"`
	PaymentReference string                  `json:"paymentReference,omitempty"`
	Completed        bool                    `json:"completed"`
	LastOutcome      *checkout.Outcome       `json:"lastOutcome,omitempty"`
}

func newSessionView(s *checkout.Session) sessionView {
	return sessionView{
		ID:               s.ID,
		Guest:            s.UserID == "",
		GuestEmail:       s.GuestEmail,
		GuestCart:        s.GuestCart,
		SelectedAddress:  s.DeliveryAddress(),
		Quote:            s.Quote,
		PaymentReference: s.PaymentReference,
		Completed:        s.Completed,
		LastOutcome:      s.LastOutcome,
	}
}
