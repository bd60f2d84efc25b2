package memory

import (
	"context"
	"fmt"
	"sort"

	domain "github.com/storeprime/backend/internal/domain/cart"
)

type CartRepository struct {
	store *Store
}

func (r *CartRepository) Get(ctx context.Context, id string) (*domain.Item, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.cartItems[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return item.Clone(), nil
}

func (r *CartRepository) Save(ctx context.Context, item *domain.Item) error {
	_ = ctx
	if item == nil || item.ID == "" {
		return fmt.Errorf("cart repository: id is required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.cartItems[item.ID] = item.Clone()
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.cartItems[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.cartItems, id)
	return nil
}

func (r *CartRepository) ListByBuyer(ctx context.Context, buyerID string) ([]*domain.Item, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	items := make([]*domain.Item, 0)
	for _, item := range r.store.cartItems {
		if item.BuyerID == buyerID {
			items = append(items, item.Clone())
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}
