package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/model"
)

// WriteError writes a model.ErrorResponse carrying the request's correlation id.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Error:         msg,
		Code:          code,
		CorrelationID: GetCorrelationID(r.Context()),
	})
}
