package clients

import (
	"context"
	"net/http"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

type AddressClient struct {
	c    *Client
	path string
}

func NewAddressClient(c *Client, path string) *AddressClient {
	return &AddressClient{c: c, path: path}
}

// List returns the authenticated user's saved addresses.
func (ac *AddressClient) List(ctx context.Context, token string) ([]checkout.Address, error) {
	var out []checkout.Address
	if err := ac.c.DoJSON(ctx, http.MethodGet, ac.path, nil, authHeaders(token, ""), &out); err != nil {
		return nil, err
	}
	return out, nil
}
