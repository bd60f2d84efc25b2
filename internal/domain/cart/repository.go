package cart

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Item, error)
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id string) error
	ListByBuyer(ctx context.Context, buyerID string) ([]*Item, error)
}
