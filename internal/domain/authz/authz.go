// Package authz holds the ownership predicates checked before every
// mutating order operation. The predicates only report; turning a
// violation into a Forbidden error is the caller's job.
package authz

import (
	"github.com/storeprime/backend/internal/domain/cart"
	"github.com/storeprime/backend/internal/domain/order"
)

func OwnsCartItem(buyerID string, item *cart.Item) bool {
	return item != nil && buyerID != "" && item.BuyerID == buyerID
}

// OwnsOrderAsSeller is true when at least one line of the order belongs
// to the seller.
func OwnsOrderAsSeller(sellerID string, o *order.Order) bool {
	return o != nil && sellerID != "" && o.HasSeller(sellerID)
}

func OwnsOrderAsBuyer(buyerID string, o *order.Order) bool {
	return o != nil && buyerID != "" && o.BuyerID == buyerID
}
