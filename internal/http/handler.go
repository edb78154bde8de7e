package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/address"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/delivery"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/middleware"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/order"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/payment"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/session"
)

type AddressService interface {
	Resolve(ctx context.Context, sessionID string, id checkout.Identity) (*address.Resolution, error)
	SaveGuest(ctx context.Context, sessionID string, addr checkout.Address, email string) (*checkout.Address, error)
	Select(ctx context.Context, sessionID string, id checkout.Identity, addressID string) (*checkout.Address, error)
}

type DeliveryService interface {
	Quote(ctx context.Context, sessionID string, id checkout.Identity) (*delivery.Result, error)
}

type PaymentService interface {
	Initialize(ctx context.Context, sessionID string, id checkout.Identity, opts payment.InitOptions) (*payment.InitResult, error)
}

type OrderService interface {
	Finalize(ctx context.Context, sessionID string, id checkout.Identity, req order.FinalizeRequest) (*checkout.Outcome, error)
}

type Handler struct {
	sessions  session.Store
	addresses AddressService
	delivery  DeliveryService
	payments  PaymentService
	orders    OrderService
	validate  *validator.Validate
	logger    *log.Logger
}

func NewHandler(sessions session.Store, addresses AddressService, delivery DeliveryService,
	payments PaymentService, orders OrderService, logger *log.Logger) *Handler {
	return &Handler{
		sessions:  sessions,
		addresses: addresses,
		delivery:  delivery,
		payments:  payments,
		orders:    orders,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := session.New(middleware.GetIdentity(r.Context()))
	if err := h.sessions.Save(r.Context(), s); err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{ID: s.ID})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := session.Load(r.Context(), h.sessions, chi.URLParam(r, "sessionId"), middleware.GetIdentity(r.Context()))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

// ReplaceCart stores the guest cart. Signed-in carts live in the cart service.
func (h *Handler) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r.Context())
	if !id.IsGuest() {
		middleware.WriteError(w, r, http.StatusConflict, "cart is managed by the cart service for signed-in users", "cart_managed_upstream")
		return
	}
	var req replaceCartRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	s, err := session.Load(r.Context(), h.sessions, chi.URLParam(r, "sessionId"), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	s.GuestCart = req.Items
	if err := h.sessions.Save(r.Context(), s); err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(s))
}

func (h *Handler) ResolveAddress(w http.ResponseWriter, r *http.Request) {
	res, err := h.addresses.Resolve(r.Context(), chi.URLParam(r, "sessionId"), middleware.GetIdentity(r.Context()))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) SaveGuestAddress(w http.ResponseWriter, r *http.Request) {
	var req guestAddressRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	addr, err := h.addresses.SaveGuest(r.Context(), chi.URLParam(r, "sessionId"), req.address(), req.Email)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (h *Handler) SelectAddress(w http.ResponseWriter, r *http.Request) {
	var req selectAddressRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	addr, err := h.addresses.Select(r.Context(), chi.URLParam(r, "sessionId"), middleware.GetIdentity(r.Context()), req.AddressID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (h *Handler) DeliveryQuote(w http.ResponseWriter, r *http.Request) {
	res, err := h.delivery.Quote(r.Context(), chi.URLParam(r, "sessionId"), middleware.GetIdentity(r.Context()))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) InitializePayment(w http.ResponseWriter, r *http.Request) {
	var req initPaymentRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	res, err := h.payments.Initialize(r.Context(), chi.URLParam(r, "sessionId"), middleware.GetIdentity(r.Context()), payment.InitOptions{
		Email:       req.Email,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Finalize accepts the flow and reference in the body or, for gateway
// redirects, as query parameters.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	q := r.URL.Query()
	req.Flow = q.Get("flow")
	req.Reference = q.Get("reference")
	req.Ref = q.Get("ref")
	if !h.decode(w, r, &req, true) {
		return
	}

	ref := strings.TrimSpace(req.Reference)
	if ref == "" {
		ref = strings.TrimSpace(req.Ref)
	}
	out, err := h.orders.Finalize(r.Context(), chi.URLParam(r, "sessionId"), middleware.GetIdentity(r.Context()), order.FinalizeRequest{
		Flow:      checkout.Flow(req.Flow),
		Reference: ref,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// decode reads an optional or required JSON body into dst and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case errors.Is(err, io.EOF) && optional:
	case err != nil:
		middleware.WriteError(w, r, http.StatusBadRequest, "invalid JSON body", "bad_request")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		middleware.WriteError(w, r, http.StatusUnprocessableEntity, validationMessage(err), "validation")
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
