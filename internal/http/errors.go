package httpapi

import (
	"errors"
	"net/http"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/clients"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/middleware"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/order"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/payment"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/session"
)

// writeErr maps service errors onto status codes.
func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var gwErr *payment.GatewayError

	switch {
	case checkout.IsValidation(err):
		middleware.WriteError(w, r, http.StatusUnprocessableEntity, err.Error(), "validation")
	case errors.Is(err, session.ErrNotFound):
		middleware.WriteError(w, r, http.StatusNotFound, err.Error(), "session_not_found")
	case errors.Is(err, session.ErrForbidden):
		middleware.WriteError(w, r, http.StatusForbidden, err.Error(), "forbidden")
	case errors.Is(err, order.ErrSubmissionInProgress):
		middleware.WriteError(w, r, http.StatusConflict, err.Error(), "submission_in_progress")
	case errors.Is(err, checkout.ErrReferenceNotFound):
		middleware.WriteError(w, r, http.StatusNotFound, err.Error(), "reference_not_found")
	case errors.Is(err, checkout.ErrVerificationFailed):
		middleware.WriteError(w, r, http.StatusPaymentRequired, err.Error(), "verification_failed")
	case errors.As(err, &gwErr):
		status := http.StatusBadGateway
		if gwErr.Category == payment.CategoryServiceUnavailable {
			status = http.StatusServiceUnavailable
		}
		h.logger.Printf("payment init failed cid=%s: %v", middleware.GetCorrelationID(r.Context()), err)
		middleware.WriteError(w, r, status, gwErr.UserMessage(), string(gwErr.Category))
	case errors.Is(err, checkout.ErrDeliveryUnavailable):
		middleware.WriteError(w, r, upstreamStatus(err), err.Error(), "delivery_unavailable")
	case clients.IsUnauthorized(err):
		middleware.WriteError(w, r, http.StatusUnauthorized, "session expired, please sign in again", "unauthorized")
	default:
		if _, ok := clients.AsUpstream(err); ok {
			middleware.WriteError(w, r, upstreamStatus(err), err.Error(), "upstream_error")
			return
		}
		h.logger.Printf("internal error cid=%s: %v", middleware.GetCorrelationID(r.Context()), err)
		middleware.WriteError(w, r, http.StatusInternalServerError, "internal error", "internal")
	}
}

func upstreamStatus(err error) int {
	if ue, ok := clients.AsUpstream(err); ok && ue.Kind == clients.KindUnavailable {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}
