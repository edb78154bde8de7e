package clients

import (
	"context"
	"net/http"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
)

type DeliveryItem struct {
	ProductID string  `json:"productId"`
	StoreID   string  `json:"storeId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"price"`
	VariantID string  `json:"variantId,omitempty"`
}

type DeliveryRequest struct {
	Cart    []DeliveryItem   `json:"cart"`
	Address checkout.Address `json:"address"`
}

// DeliveryResponse amounts are in major units.
type DeliveryResponse struct {
	Token       string  `json:"token"`
	TotalCharge float64 `json:"totalCharge"`
	Discount    float64 `json:"discount"`
}

type DeliveryClient struct {
	c    *Client
	path string
}

func NewDeliveryClient(c *Client, path string) *DeliveryClient {
	return &DeliveryClient{c: c, path: path}
}

func (dc *DeliveryClient) Calculate(ctx context.Context, token string, req DeliveryRequest) (*DeliveryResponse, error) {
	var out DeliveryResponse
	if err := dc.c.DoJSON(ctx, http.MethodPost, dc.path, req, authHeaders(token, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
