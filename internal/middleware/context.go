package middleware

import (
	"context"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

type ctxKey string

const (
	ctxCorrelationID ctxKey = "correlation_id"
	ctxIdentity      ctxKey = "identity"
)

func GetCorrelationID(ctx context.Context) string {
	if v := ctx.Value(ctxCorrelationID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithCorrelationID is used by callers outside an HTTP request (tests, background work).
func WithCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, ctxCorrelationID, cid)
}

// GetIdentity returns the caller identity; the zero value is a guest.
func GetIdentity(ctx context.Context) checkout.Identity {
	if v := ctx.Value(ctxIdentity); v != nil {
		if id, ok := v.(checkout.Identity); ok {
			return id
		}
	}
	return checkout.Identity{}
}

func WithIdentity(ctx context.Context, id checkout.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}
