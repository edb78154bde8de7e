// Package app wires the checkout services onto the HTTP router.
package app

import (
	"log"
	"net/http"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/address"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/cart"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/clients"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/config"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/delivery"
	httpapi "github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/http"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/order"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/payment"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/session"
)

// Infra holds the stateful collaborators chosen at startup.
type Infra struct {
	Sessions session.Store
	Ledger   order.Ledger
	Events   order.EventPublisher
	Notifier order.Notifier
}

func NewRouter(cfg config.Config, infra Infra, logger *log.Logger) http.Handler {
	sharedHTTP := clients.NewHTTPClient(cfg.UpstreamTimeout)
	backend := clients.NewClient("backend", cfg.BackendURL, sharedHTTP).
		WithBreaker(cfg.BreakerFailureThreshold, cfg.BreakerOpenTimeout)

	ep := cfg.Endpoints
	addresses := clients.NewAddressClient(backend, ep.Addresses)
	deliveries := clients.NewDeliveryClient(backend, ep.DeliveryCalculate)
	payments := clients.NewPaymentClient(backend, ep.PaymentInit, ep.PaymentInitSplit, ep.PaymentVerify)
	orders := clients.NewOrderClient(backend, ep.OrderCreate, ep.GuestOrderCreate)
	carts := cart.NewSource(clients.NewCartClient(backend, ep.Cart))

	resolver := address.NewResolver(infra.Sessions, addresses, logger)
	calculator := delivery.NewCalculator(infra.Sessions, carts, deliveries, cfg.DeliveryFirstLineOnly, logger)
	initializer := payment.NewInitializer(infra.Sessions, carts, payments, payment.Options{
		FeePercent:  cfg.PlatformFeePercent,
		Currency:    cfg.Currency,
		CallbackURL: cfg.PaymentCallbackURL,
	}, logger)
	finalizer := order.NewFinalizer(infra.Sessions, carts, payments, orders, infra.Ledger, infra.Events, infra.Notifier, order.Options{
		FeePercent:             cfg.PlatformFeePercent,
		Currency:               cfg.Currency,
		HealDuplicateReference: cfg.HealDuplicateReference,
		RefundMessage:          cfg.FailureRefundMessage,
	}, logger)

	h := httpapi.NewHandler(infra.Sessions, resolver, calculator, initializer, finalizer, logger)
	health := &httpapi.HealthHandler{Probes: []clients.HealthProbe{
		{Name: "backend", Client: backend, Path: ep.Health},
	}}

	return httpapi.NewRouter(h, health, httpapi.RouterOptions{
		Logger:           logger,
		JWTSecret:        cfg.JWTSecret,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})
}
