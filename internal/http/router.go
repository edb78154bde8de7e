// Package httpapi exposes the checkout operations over HTTP.
package httpapi

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/middleware"
)

type RouterOptions struct {
	Logger           *log.Logger
	JWTSecret        string
	CORSAllowOrigins []string
}

func NewRouter(h *Handler, health *HealthHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(opts.Logger))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.CORS(opts.CORSAllowOrigins))
	r.Use(middleware.Recover(opts.Logger))

	r.Get("/health", health.Service)
	r.Get("/health/upstreams", health.Upstreams)

	r.Route("/api/checkout/sessions", func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))

		r.Post("/", h.CreateSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Put("/cart", h.ReplaceCart)
			r.Get("/address", h.ResolveAddress)
			r.Post("/address/guest", h.SaveGuestAddress)
			r.Put("/address/selected", h.SelectAddress)
			r.Post("/delivery-quote", h.DeliveryQuote)
			r.Post("/payment", h.InitializePayment)
			r.Post("/orders", h.Finalize)
		})
	})

	return r
}
