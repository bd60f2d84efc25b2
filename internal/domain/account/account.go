package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("account: not found")
	ErrInvalidKind = errors.New("account: unknown account kind")
	ErrConflict    = errors.New("account: already exists")
)

// Kind distinguishes the two account variants. Buyers spend from their
// balance; sellers receive into theirs. There is no inheritance between
// them, only this tag.
type Kind string

const (
	KindBuyer  Kind = "buyer"
	KindSeller Kind = "seller"
)

func (k Kind) Valid() bool {
	return k == KindBuyer || k == KindSeller
}

// Account holds a signed monetary balance. The balance is mutated only
// through the repository's AdjustBalance; nothing else writes it.
type Account struct {
	ID        string
	Kind      Kind
	Name      string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id string, kind Kind, name string, balance decimal.Decimal) (*Account, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	now := time.Now().UTC()
	return &Account{
		ID:        id,
		Kind:      kind,
		Name:      name,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (a *Account) IsBuyer() bool  { return a.Kind == KindBuyer }
func (a *Account) IsSeller() bool { return a.Kind == KindSeller }

func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}
