package cart

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("cart: item not found")
	ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")
)

// Item is a single cart line owned by one buyer. Ownership is immutable;
// converting the item into an order removes it from the store so it can
// never be ordered twice.
type Item struct {
	ID        string
	BuyerID   string
	ProductID string
	Quantity  int
	CreatedAt time.Time
}

func NewItem(id, buyerID, productID string, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Item{
		ID:        id,
		BuyerID:   buyerID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}
