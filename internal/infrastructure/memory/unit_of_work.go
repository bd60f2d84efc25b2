package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storeprime/backend/internal/domain/account"
	"github.com/storeprime/backend/internal/domain/cart"
	"github.com/storeprime/backend/internal/domain/order"
	"github.com/storeprime/backend/internal/domain/product"
	"github.com/storeprime/backend/internal/domain/storage"
)

// UnitOfWork runs a function against staged copies of the store tables
// under the store lock. Writes land in the base tables only when the
// function returns nil; an error discards everything, so a failed
// creation or cancellation leaves no trace. Holding the lock for the
// whole transaction is what makes createOrder and cancelOrder
// all-or-nothing with respect to every other operation.
type UnitOfWork struct {
	store *Store
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Within(ctx context.Context, fn func(tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	t := &txn{
		store:        u.store,
		accounts:     make(map[string]*account.Account),
		products:     make(map[string]*product.Product),
		cartItems:    make(map[string]*cart.Item),
		orders:       make(map[string]*order.Order),
		removedItems: make(map[string]struct{}),
	}

	if err := fn(t); err != nil {
		return err
	}

	t.commit()
	return nil
}

// txn buffers writes per table; reads see staged state first, then the
// base tables.
type txn struct {
	store        *Store
	accounts     map[string]*account.Account
	products     map[string]*product.Product
	cartItems    map[string]*cart.Item
	orders       map[string]*order.Order
	removedItems map[string]struct{}
}

func (t *txn) Accounts() account.Repository { return &txAccounts{t} }
func (t *txn) Products() product.Repository { return &txProducts{t} }
func (t *txn) CartItems() cart.Repository   { return &txCartItems{t} }
func (t *txn) Orders() order.Repository     { return &txOrders{t} }

func (t *txn) commit() {
	for id, acc := range t.accounts {
		t.store.accounts[id] = acc
	}
	for id, p := range t.products {
		t.store.products[id] = p
	}
	for id, item := range t.cartItems {
		t.store.cartItems[id] = item
	}
	for id := range t.removedItems {
		delete(t.store.cartItems, id)
	}
	for id, o := range t.orders {
		t.store.orders[id] = o
	}
}

type txAccounts struct{ t *txn }

func (r *txAccounts) Get(ctx context.Context, id string) (*account.Account, error) {
	_ = ctx
	if acc, ok := r.t.accounts[id]; ok {
		return acc.Clone(), nil
	}
	if acc, ok := r.t.store.accounts[id]; ok {
		return acc.Clone(), nil
	}
	return nil, account.ErrNotFound
}

func (r *txAccounts) Save(ctx context.Context, acc *account.Account) error {
	_ = ctx
	if acc == nil || acc.ID == "" {
		return fmt.Errorf("account repository: id is required")
	}
	r.t.accounts[acc.ID] = acc.Clone()
	return nil
}

func (r *txAccounts) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	acc, err := r.Get(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	acc.Balance = acc.Balance.Add(delta)
	acc.UpdatedAt = time.Now().UTC()
	r.t.accounts[id] = acc
	return acc.Balance, nil
}

type txProducts struct{ t *txn }

func (r *txProducts) Get(ctx context.Context, id string) (*product.Product, error) {
	_ = ctx
	if p, ok := r.t.products[id]; ok {
		return p.Clone(), nil
	}
	if p, ok := r.t.store.products[id]; ok {
		return p.Clone(), nil
	}
	return nil, product.ErrNotFound
}

func (r *txProducts) Save(ctx context.Context, p *product.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}
	r.t.products[p.ID] = p.Clone()
	return nil
}

type txCartItems struct{ t *txn }

func (r *txCartItems) Get(ctx context.Context, id string) (*cart.Item, error) {
	_ = ctx
	if _, removed := r.t.removedItems[id]; removed {
		return nil, cart.ErrNotFound
	}
	if item, ok := r.t.cartItems[id]; ok {
		return item.Clone(), nil
	}
	if item, ok := r.t.store.cartItems[id]; ok {
		return item.Clone(), nil
	}
	return nil, cart.ErrNotFound
}

func (r *txCartItems) Save(ctx context.Context, item *cart.Item) error {
	_ = ctx
	if item == nil || item.ID == "" {
		return fmt.Errorf("cart repository: id is required")
	}
	delete(r.t.removedItems, item.ID)
	r.t.cartItems[item.ID] = item.Clone()
	return nil
}

func (r *txCartItems) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	delete(r.t.cartItems, id)
	r.t.removedItems[id] = struct{}{}
	return nil
}

func (r *txCartItems) ListByBuyer(ctx context.Context, buyerID string) ([]*cart.Item, error) {
	_ = ctx
	merged := make(map[string]*cart.Item, len(r.t.store.cartItems))
	for id, item := range r.t.store.cartItems {
		merged[id] = item
	}
	for id, item := range r.t.cartItems {
		merged[id] = item
	}
	for id := range r.t.removedItems {
		delete(merged, id)
	}

	items := make([]*cart.Item, 0)
	for _, item := range merged {
		if item.BuyerID == buyerID {
			items = append(items, item.Clone())
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

type txOrders struct{ t *txn }

func (r *txOrders) Insert(ctx context.Context, o *order.Order) error {
	_ = ctx
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}
	if _, exists := r.t.orders[o.ID]; exists {
		return order.ErrConflict
	}
	if _, exists := r.t.store.orders[o.ID]; exists {
		return order.ErrConflict
	}
	r.t.orders[o.ID] = o.Clone()
	return nil
}

func (r *txOrders) Get(ctx context.Context, id string) (*order.Order, error) {
	_ = ctx
	if o, ok := r.t.orders[id]; ok {
		return o.Clone(), nil
	}
	if o, ok := r.t.store.orders[id]; ok {
		return o.Clone(), nil
	}
	return nil, order.ErrNotFound
}

func (r *txOrders) Update(ctx context.Context, o *order.Order) error {
	_ = ctx
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}
	current, err := r.Get(ctx, o.ID)
	if err != nil {
		return err
	}
	if current.Version != o.Version {
		return order.ErrConflict
	}
	next := o.Clone()
	next.Version++
	r.t.orders[o.ID] = next
	o.Version = next.Version
	return nil
}

func (r *txOrders) ListByBuyer(ctx context.Context, buyerID string) ([]*order.Order, error) {
	_ = ctx
	return collectOrders(r.merged(), func(o *order.Order) bool {
		return o.BuyerID == buyerID
	}), nil
}

func (r *txOrders) ListBySeller(ctx context.Context, sellerID string) ([]*order.Order, error) {
	_ = ctx
	return collectOrders(r.merged(), func(o *order.Order) bool {
		return o.HasSeller(sellerID)
	}), nil
}

func (r *txOrders) ListByBuyerAndStatus(ctx context.Context, buyerID string, status order.Status) ([]*order.Order, error) {
	_ = ctx
	return collectOrders(r.merged(), func(o *order.Order) bool {
		return o.BuyerID == buyerID && o.Status == status
	}), nil
}

func (r *txOrders) merged() map[string]*order.Order {
	merged := make(map[string]*order.Order, len(r.t.store.orders))
	for id, o := range r.t.store.orders {
		merged[id] = o
	}
	for id, o := range r.t.orders {
		merged[id] = o
	}
	return merged
}
