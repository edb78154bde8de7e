package clients

import (
	"context"
	"encoding/json"
	"net/http"
)

type OrderClient struct {
	c         *Client
	path      string
	guestPath string
}

func NewOrderClient(c *Client, path, guestPath string) *OrderClient {
	return &OrderClient{c: c, path: path, guestPath: guestPath}
}

// Create submits an authenticated order. The data is returned undecoded since
// it is either a single order or an array of per-store sub-orders.
func (oc *OrderClient) Create(ctx context.Context, token, idempotencyKey string, payload any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := oc.c.DoJSON(ctx, http.MethodPost, oc.path, payload, authHeaders(token, idempotencyKey), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (oc *OrderClient) CreateGuest(ctx context.Context, idempotencyKey string, payload any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := oc.c.DoJSON(ctx, http.MethodPost, oc.guestPath, payload, authHeaders("", idempotencyKey), &out); err != nil {
		return nil, err
	}
	return out, nil
}
