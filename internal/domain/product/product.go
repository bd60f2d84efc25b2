package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("product: not found")
	ErrInvalidPrice      = errors.New("product: price must be zero or greater")
	ErrInvalidAmount     = errors.New("product: available amount must be zero or greater")
	ErrInsufficientStock = errors.New("product: not enough items available")
)

// Product belongs to exactly one seller; SellerID never changes after
// construction.
type Product struct {
	ID        string
	SellerID  string
	Name      string
	Price     decimal.Decimal
	Available int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id, sellerID, name string, price decimal.Decimal, available int) (*Product, error) {
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if available < 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now().UTC()
	return &Product{
		ID:        id,
		SellerID:  sellerID,
		Name:      name,
		Price:     price,
		Available: available,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Reserve removes qty from the available stock. Stock never goes
// negative.
func (p *Product) Reserve(qty int) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}
	if p.Available < qty {
		return ErrInsufficientStock
	}
	p.Available -= qty
	p.touch()
	return nil
}

// Restore returns qty to the available stock after a cancellation.
func (p *Product) Restore(qty int) error {
	if qty <= 0 {
		return ErrInvalidAmount
	}
	p.Available += qty
	p.touch()
	return nil
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
