package clients

import (
	"context"
	"net/http"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

type CartClient struct {
	c    *Client
	path string
}

func NewCartClient(c *Client, path string) *CartClient { return &CartClient{c: c, path: path} }

func (cc *CartClient) Get(ctx context.Context, token string) ([]checkout.Line, error) {
	var out []checkout.Line
	if err := cc.c.DoJSON(ctx, http.MethodGet, cc.path, nil, authHeaders(token, ""), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (cc *CartClient) Clear(ctx context.Context, token string) error {
	return cc.c.DoJSON(ctx, http.MethodDelete, cc.path, nil, authHeaders(token, ""), nil)
}
