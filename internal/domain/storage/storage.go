// Package storage defines the transactional boundary used by the order
// lifecycle. A unit of work groups the order write and every ledger,
// stock and cart mutation of one operation into a single atomic commit.
package storage

import (
	"context"

	"github.com/storeprime/backend/internal/domain/account"
	"github.com/storeprime/backend/internal/domain/cart"
	"github.com/storeprime/backend/internal/domain/order"
	"github.com/storeprime/backend/internal/domain/product"
)

// Tx exposes repository views bound to one in-flight transaction.
// Writes through these views become visible to other operations only
// when the enclosing Within call returns nil.
type Tx interface {
	Accounts() account.Repository
	Products() product.Repository
	CartItems() cart.Repository
	Orders() order.Repository
}

// UnitOfWork runs fn inside a transaction. Any error from fn aborts the
// transaction and leaves every participating record unchanged.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(tx Tx) error) error
}
