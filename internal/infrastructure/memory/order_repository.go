package memory

import (
	"context"
	"fmt"
	"sort"

	domain "github.com/storeprime/backend/internal/domain/order"
)

type OrderRepository struct {
	store *Store
}

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	_ = ctx
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.orders[o.ID]; exists {
		return domain.ErrConflict
	}
	r.store.orders[o.ID] = o.Clone()
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o.Clone(), nil
}

// Update rejects stale writes: the incoming version must match the
// stored one, otherwise a concurrent transition already won.
func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	_ = ctx
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, exists := r.store.orders[o.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if current.Version != o.Version {
		return domain.ErrConflict
	}
	next := o.Clone()
	next.Version++
	r.store.orders[o.ID] = next
	o.Version = next.Version
	return nil
}

func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]*domain.Order, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return collectOrders(r.store.orders, func(o *domain.Order) bool {
		return o.BuyerID == buyerID
	}), nil
}

func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID string) ([]*domain.Order, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return collectOrders(r.store.orders, func(o *domain.Order) bool {
		return o.HasSeller(sellerID)
	}), nil
}

func (r *OrderRepository) ListByBuyerAndStatus(ctx context.Context, buyerID string, status domain.Status) ([]*domain.Order, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return collectOrders(r.store.orders, func(o *domain.Order) bool {
		return o.BuyerID == buyerID && o.Status == status
	}), nil
}

func collectOrders(table map[string]*domain.Order, match func(*domain.Order) bool) []*domain.Order {
	orders := make([]*domain.Order, 0)
	for _, o := range table {
		if match(o) {
			orders = append(orders, o.Clone())
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders
}
