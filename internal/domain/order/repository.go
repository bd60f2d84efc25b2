package order

import "context"

type Repository interface {
	Insert(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	// Update writes the order back. Implementations compare the order's
	// Version against the stored one and fail with ErrConflict on a
	// stale write.
	Update(ctx context.Context, o *Order) error
	ListByBuyer(ctx context.Context, buyerID string) ([]*Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*Order, error)
	ListByBuyerAndStatus(ctx context.Context, buyerID string, status Status) ([]*Order, error)
}
