package account

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository is the account ledger port. AdjustBalance applies delta
// (positive or negative) atomically with respect to concurrent calls on
// the same account and returns the resulting balance. Negative results
// are allowed; business limits belong to the caller.
type Repository interface {
	Get(ctx context.Context, id string) (*Account, error)
	Save(ctx context.Context, acc *Account) error
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error)
}
