package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/storeprime/backend/internal/domain/account"
)

type AccountRepository struct {
	store *Store
}

func (r *AccountRepository) Get(ctx context.Context, id string) (*domain.Account, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	acc, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return acc.Clone(), nil
}

func (r *AccountRepository) Save(ctx context.Context, acc *domain.Account) error {
	_ = ctx
	if acc == nil || acc.ID == "" {
		return fmt.Errorf("account repository: id is required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.accounts[acc.ID] = acc.Clone()
	return nil
}

// AdjustBalance applies delta under the store lock, so concurrent
// adjustments on the same account serialize and no update is lost.
func (r *AccountRepository) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	_ = ctx

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	acc, ok := r.store.accounts[id]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	acc.Balance = acc.Balance.Add(delta)
	acc.UpdatedAt = time.Now().UTC()
	return acc.Balance, nil
}
