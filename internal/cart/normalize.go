package cart

import (
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/money"
)

// OrderItem is a cart line as the order service expects it. Both store id
// spellings are set because the order service splits by either one.
type OrderItem struct {
	ProductID      string  `json:"productId"`
	ProductIDSnake string  `json:"product_id"`
	StoreID        string  `json:"storeId"`
	StoreIDSnake   string  `json:"store_id"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
	TotalPrice     float64 `json:"totalPrice"`
	VariantID      string  `json:"variantId,omitempty"`
	Name           string  `json:"name,omitempty"`
}

// NormalizeStoreIDs converts lines into order items carrying storeId and store_id.
func NormalizeStoreIDs(lines []checkout.Line) []OrderItem {
	out := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderItem{
			ProductID:      l.ProductID,
			ProductIDSnake: l.ProductID,
			StoreID:        l.StoreID,
			StoreIDSnake:   l.StoreID,
			Quantity:       l.Quantity,
			Price:          l.UnitPrice,
			TotalPrice:     money.ToMajor(l.TotalMinor()),
			VariantID:      l.VariantID,
			Name:           l.Name,
		})
	}
	return out
}
