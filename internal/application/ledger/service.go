// Package ledger exposes direct balance operations on a single account:
// top-ups and balance reads. Order settlement goes through the same
// repository port but inside the order unit of work.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domaccount "github.com/storeprime/backend/internal/domain/account"
	"github.com/storeprime/backend/internal/pkg/logging"
)

var (
	ErrAccountNotFound = errors.New("ledger: account not found")
	ErrInvalidAmount   = errors.New("ledger: amount must be greater than zero")
)

type Service struct {
	accounts domaccount.Repository
}

func NewService(accounts domaccount.Repository) *Service {
	return &Service{accounts: accounts}
}

// TopUp credits the account and returns the new balance.
func (s *Service) TopUp(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	balance, err := s.accounts.AdjustBalance(ctx, accountID, amount)
	if errors.Is(err, domaccount.ErrNotFound) {
		return decimal.Zero, ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger: adjust balance: %w", err)
	}

	logging.FromContext(ctx).Info("balance_topped_up",
		zap.String("account_id", accountID),
		zap.String("amount", amount.String()),
		zap.String("balance", balance.String()),
	)
	return balance, nil
}

// Balance reads the current balance of the account.
func (s *Service) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	acc, err := s.accounts.Get(ctx, accountID)
	if errors.Is(err, domaccount.ErrNotFound) {
		return decimal.Zero, ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger: get account: %w", err)
	}
	return acc.Balance, nil
}
