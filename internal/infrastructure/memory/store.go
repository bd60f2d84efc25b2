// Package memory provides the in-memory persistence used by the
// backend: one Store holding every table, repository views guarded by
// the store lock, and a unit of work that stages writes and commits them
// atomically.
package memory

import (
	"sync"

	"github.com/storeprime/backend/internal/domain/account"
	"github.com/storeprime/backend/internal/domain/cart"
	"github.com/storeprime/backend/internal/domain/order"
	"github.com/storeprime/backend/internal/domain/product"
)

// Store owns all tables. The single mutex serializes units of work and
// direct repository writes, which is what makes per-account balance
// adjustments and per-order status writes linearizable in-process.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]*account.Account
	products  map[string]*product.Product
	cartItems map[string]*cart.Item
	orders    map[string]*order.Order
}

func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]*account.Account),
		products:  make(map[string]*product.Product),
		cartItems: make(map[string]*cart.Item),
		orders:    make(map[string]*order.Order),
	}
}

func (s *Store) Accounts() *AccountRepository { return &AccountRepository{store: s} }
func (s *Store) Products() *ProductRepository { return &ProductRepository{store: s} }
func (s *Store) CartItems() *CartRepository   { return &CartRepository{store: s} }
func (s *Store) Orders() *OrderRepository     { return &OrderRepository{store: s} }
