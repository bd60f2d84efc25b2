package memory

import (
	"context"
	"fmt"

	domain "github.com/storeprime/backend/internal/domain/product"
)

type ProductRepository struct {
	store *Store
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepository) Save(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.products[p.ID] = p.Clone()
	return nil
}
