package payment

import (
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/cart"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/money"
)

// Allocate splits a payment between sellers and the platform. All amounts are
// minor units. Each store is rounded on its own, so sellerAmount+platformFee is
// exactly the store subtotal; the platform fee on the product total is rounded
// separately and may differ from the sum of per-store fees by a unit or two.
// The delivery discount is borne by the platform.
func Allocate(groups []cart.StoreGroup, deliveryChargeMinor, discountMinor, feePercent int64) checkout.Allocation {
	a := checkout.Allocation{
		DeliveryChargeMinor:   deliveryChargeMinor,
		DeliveryDiscountMinor: discountMinor,
		Stores:                make([]checkout.StoreAllocation, 0, len(groups)),
	}

	for _, g := range groups {
		seller := money.Percent(g.SubtotalMinor, 100-feePercent)
		a.Stores = append(a.Stores, checkout.StoreAllocation{
			StoreID:            g.StoreID,
			ProductAmountMinor: g.SubtotalMinor,
			SellerAmountMinor:  seller,
			PlatformFeeMinor:   g.SubtotalMinor - seller,
		})
		a.ProductTotalMinor += g.SubtotalMinor
	}

	a.PlatformProductFeeMinor = money.Percent(a.ProductTotalMinor, feePercent)
	a.SellerTotalMinor = a.ProductTotalMinor - a.PlatformProductFeeMinor
	a.PlatformTotalMinor = a.PlatformProductFeeMinor + deliveryChargeMinor - discountMinor
	a.AuthorizedMinor = a.ProductTotalMinor + deliveryChargeMinor - discountMinor
	return a
}
