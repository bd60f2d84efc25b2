package order

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaccount "github.com/storeprime/backend/internal/domain/account"
	domcart "github.com/storeprime/backend/internal/domain/cart"
	domorder "github.com/storeprime/backend/internal/domain/order"
	domoutbox "github.com/storeprime/backend/internal/domain/outbox"
	domproduct "github.com/storeprime/backend/internal/domain/product"
	"github.com/storeprime/backend/internal/infrastructure/memory"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("order-%d", g.n)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *capturePublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.EventName())
	}
	return names
}

type fixture struct {
	store     *memory.Store
	svc       *Service
	publisher *capturePublisher
}

func newFixture() *fixture {
	store := memory.NewStore()
	publisher := &capturePublisher{}
	svc := NewService(memory.NewUnitOfWork(store), store.Orders(), &seqIDs{}, publisher)
	return &fixture{store: store, svc: svc, publisher: publisher}
}

func (f *fixture) addAccount(t *testing.T, id string, kind domaccount.Kind, balance int64) {
	t.Helper()
	acc, err := domaccount.New(id, kind, id, decimal.NewFromInt(balance))
	require.NoError(t, err)
	require.NoError(t, f.store.Accounts().Save(context.Background(), acc))
}

func (f *fixture) addProduct(t *testing.T, id, sellerID string, price int64, stock int) {
	t.Helper()
	p, err := domproduct.New(id, sellerID, id, decimal.NewFromInt(price), stock)
	require.NoError(t, err)
	require.NoError(t, f.store.Products().Save(context.Background(), p))
}

func (f *fixture) addCartItem(t *testing.T, id, buyerID, productID string, qty int) {
	t.Helper()
	item, err := domcart.NewItem(id, buyerID, productID, qty)
	require.NoError(t, err)
	require.NoError(t, f.store.CartItems().Save(context.Background(), item))
}

func (f *fixture) balance(t *testing.T, accountID string) decimal.Decimal {
	t.Helper()
	acc, err := f.store.Accounts().Get(context.Background(), accountID)
	require.NoError(t, err)
	return acc.Balance
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.store.Products().Get(context.Background(), productID)
	require.NoError(t, err)
	return p.Available
}

// The concrete settlement scenario: buyer with 100, product priced 10,
// quantity 3.
func TestCreateOrderSettlesBalances(t *testing.T) {
	f := newFixture()
	f.addAccount(t, "b1", domaccount.KindBuyer, 100)
	f.addAccount(t, "s1", domaccount.KindSeller, 0)
	f.addProduct(t, "p1", "s1", 10, 50)
	f.addCartItem(t, "i1", "b1", "p1", 3)

	created, err := f.svc.CreateOrder(context.Background(), "b1", []string{"i1"})
	require.NoError(t, err)

	assert.Equal(t, domorder.StatusCreated, created.Status)
	require.Len(t, created.Lines, 1)
	assert.Equal(t, "p1", created.Lines[0].ProductID)
	assert.Equal(t, 3, created.Lines[0].Quantity)

	assert.True(t, f.balance(t, "b1").Equal(decimal.NewFromInt(70)))
	assert.True(t, f.balance(t, "s1").Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 47, f.stock(t, "p1"))

	// The converted item is gone for good.
	_, err = f.store.CartItems().Get(context.Background(), "i1")
	assert.ErrorIs(t, err, domcart.ErrNotFound)
}

func TestCreateOrderConservationAcrossSellers(t *testing.T) {
	f := newFixture()
	f.addAccount(t, "b1", domaccount.KindBuyer, 1000)
	f.addAccount(t, "s1", domaccount.KindSeller, 0)
	f.addAccount(t, "s2", domaccount.KindSeller, 0)
	f.addProduct(t, "p1", "s1", 10, 10)
	f.addProduct(t, "p2", "s2", 7, 10)
	f.addCartItem(t, "i1", "b1", "p1", 3)
	f.addCartItem(t, "i2", "b1", "p2", 2)

	created, err := f.svc.CreateOrder(context.Background(), "b1", []string{"i1", "i2"})
	require.NoError(t, err)

	buyerDebit := decimal.NewFromInt(1000).Sub(f.balance(t, "b1"))
	sellerCredits := f.balance(t, "s1").Add(f.balance(t, "s2"))
	assert.True(t, buyerDebit.Equal(sellerCredits), "buyer debit must equal sum of seller credits")
	assert.True(t, buyerDebit.Equal(created.Total()))
	assert.True(t, created.Total().Equal(decimal.NewFromInt(44)))
}

func TestCreateOrderAccumulatesDuplicateProduct(t *testing.T) {
	f := newFixture()
	f.addAccount(t, "b1", domaccount.KindBuyer, 100)
	f.addAccount(t, "s1", domaccount.KindSeller, 0)
	f.addProduct(t, "p1", "s1", 10, 10)
	f.addCartItem(t, "i1", "b1", "p1", 2)
	f.addCartItem(t, "i2", "b1", "p1", 3)

	created, err := f.svc.CreateOrder(context.Background(), "b1", []string{"i1", "i2"})
	require.NoError(t, err)

	require.Len(t, created.Lines, 1, "same product appears in a single line")
	assert.Equal(t, 5, created.Lines[0].Quantity)
	assert.True(t, f.balance(t, "b1").Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 5, f.stock(t, "p1"))
}

func TestCreateOrderBuyerNotFound(t *testing.T) {
	f := newFixture()
	f.addAccount(t, "s1", domaccount.KindSeller, 0)

	_, err := f.svc.CreateOrder(context.Background(), "ghost", []string{"i1"})
	assert.ErrorIs(t, err, ErrBuyerNotFound)

	// A seller id is not a buyer.
	_, err = f.svc.CreateOrder(context.Background(), "s1", []string{"i1"})
	assert.ErrorIs(t, err, ErrBuyerNotFound)
}

func TestCreateOrderFirstFailingItemWins(t *testing.T) {
	f := newFixture()
	f.addAccount(t, "b1", domaccount.KindBuyer, 100)
	f.addAccount(t, "s1", domaccount.KindSeller, 0)
	f.addProduct(t, "p1", "s1", 10, 10)
	f.addCartItem(t, "i1", "b1", "p1", 1)

	_, err := f.svc.CreateOrder(context.Background(), "b1", []string{"i1", "missing"})
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	// Nothing was applied: balances untouched, the valid item survives.
	assert.True(t, f.balance(t, "b1").Equal(decimal.NewFromInt(100)))
	assert.True(t, f.balance(t, "s1").IsZero())
	_, err = f.store.CartItems().Get(context.Background(), "i1")
	assert.NoError(t, err)
}

func TestCreateOrderForeignCartItemForbidden(t *testing.T) {
	f := newFixture()
	f.addAccount(t, "b1", domaccount.KindBuyer, 100)
	f.addAccount(t, "b2", domaccount.KindBuyer, 100)
	f.addAccount(t, "s1", domaccount.KindSeller, 0)
	f.addProduct(t, "p1", "s1", 10, 10)
	f.addCartItem(t, "i1", "b2", "p1", 1)

	_, err := f.svc.CreateOrder(context.Background(), "b1", []string{"i1"})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.True(t, f.balance(t, "b1").Equal(decimal.NewFromInt(100)))
	assert.True(t, f.balance(t, "b2").Equal(decimal.NewFromInt(100)))
	assert.True(t, f.balance(t, "s1").IsZero())
}

func TestCreateOrderNoItems(t *testing.T) {
	f := newFixture()
	f.addAccount(t, "b1", domaccount.KindBuyer, 100)

	_, err := f.svc.CreateOrder(context.Background(), "b1", nil)
	assert.ErrorIs(t, err, ErrNoCartItems)
}

func TestCreateOrderOutOfStock(t *testing.T) {
	f := newFixture()
	f.addAccount(t, "b1", domaccount.KindBuyer, 100)
	f.addAccount(t, "s1", domaccount.KindSeller, 0)
	f.addProduct(t, "p1", "s1", 10, 2)
	f.addCartItem(t, "i1", "b1", "p1", 3)

	_, err := f.svc.CreateOrder(context.Background(), "b1", []string{"i1"})
	assert.ErrorIs(t, err, ErrOutOfStock)

	assert.True(t, f.balance(t, "b1").Equal(decimal.NewFromInt(100)))
	assert.True(t, f.balance(t, "s1").IsZero())
	assert.Equal(t, 2, f.stock(t, "p1"))
	_, err = f.store.CartItems().Get(context.Background(), "i1")
	assert.NoError(t, err, "item stays in the cart when creation aborts")
}

func createTestOrder(t *testing.T, f *fixture) *domorder.Order {
	t.Helper()
	f.addAccount(t, "b1", domaccount.KindBuyer, 100)
	f.addAccount(t, "s1", domaccount.KindSeller, 0)
	f.addProduct(t, "p1", "s1", 10, 50)
	f.addCartItem(t, "i1", "b1", "p1", 3)

	created, err := f.svc.CreateOrder(context.Background(), "b1", []string{"i1"})
	require.NoError(t, err)
	return created
}

func TestChangeStatus(t *testing.T) {
	f := newFixture()
	created := createTestOrder(t, f)

	updated, err := f.svc.ChangeStatus(context.Background(), "s1", created.ID, "TRANSITING")
	require.NoError(t, err)
	assert.Equal(t, domorder.StatusTransiting, updated.Status)

	// Intermediate transitions have no ledger effect.
	assert.True(t, f.balance(t, "b1").Equal(decimal.NewFromInt(70)))
	assert.True(t, f.balance(t, "s1").Equal(decimal.NewFromInt(30)))
}

func TestChangeStatusUnknownName(t *testing.T) {
	f := newFixture()
	created := createTestOrder(t, f)

	_, err := f.svc.ChangeStatus(context.Background(), "s1", created.ID, "UNKNOWN_STATUS")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	stored, err := f.store.Orders().Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domorder.StatusCreated, stored.Status)
}

func TestChangeStatusForeignSellerForbidden(t *testing.T) {
	f := newFixture()
	created := createTestOrder(t, f)
	f.addAccount(t, "s2", domaccount.KindSeller, 0)

	_, err := f.svc.ChangeStatus(context.Background(), "s2", created.ID, "TRANSITING")
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := f.store.Orders().Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domorder.StatusCreated, stored.Status)
}

func TestChangeStatusToCancelledForbidden(t *testing.T) {
	f := newFixture()
	created := createTestOrder(t, f)

	_, err := f.svc.ChangeStatus(context.Background(), "s1", created.ID, "CANCELLED")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestChangeStatusAfterCancellationForbidden(t *testing.T) {
	f := newFixture()
	created := createTestOrder(t, f)

	_, err := f.svc.CancelOrder(context.Background(), "b1", created.ID)
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(context.Background(), "s1", created.ID, "TRANSITING")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestChangeStatusOrderNotFound(t *testing.T) {
	f := newFixture()
	f.addAccount(t, "s1", domaccount.KindSeller, 0)

	_, err := f.svc.ChangeStatus(context.Background(), "s1", "ghost", "TRANSITING")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelOrderRoundTrip(t *testing.T) {
	f := newFixture()
	created := createTestOrder(t, f)

	cancelled, err := f.svc.CancelOrder(context.Background(), "b1", created.ID)
	require.NoError(t, err)

	assert.Equal(t, domorder.StatusCancelled, cancelled.Status)
	assert.True(t, f.balance(t, "b1").Equal(decimal.NewFromInt(100)), "buyer balance returns to pre-order value")
	assert.True(t, f.balance(t, "s1").IsZero(), "seller balance returns to pre-order value")
	assert.Equal(t, 50, f.stock(t, "p1"), "stock is restored")
}

func TestCancelOrderTwice(t *testing.T) {
	f := newFixture()
	created := createTestOrder(t, f)

	_, err := f.svc.CancelOrder(context.Background(), "b1", created.ID)
	require.NoError(t, err)

	_, err = f.svc.CancelOrder(context.Background(), "b1", created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Balances moved exactly once.
	assert.True(t, f.balance(t, "b1").Equal(decimal.NewFromInt(100)))
	assert.True(t, f.balance(t, "s1").IsZero())
}

func TestCancelOrderForeignBuyerForbidden(t *testing.T) {
	f := newFixture()
	created := createTestOrder(t, f)
	f.addAccount(t, "b2", domaccount.KindBuyer, 0)

	_, err := f.svc.CancelOrder(context.Background(), "b2", created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.True(t, f.balance(t, "b1").Equal(decimal.NewFromInt(70)))
	assert.True(t, f.balance(t, "s1").Equal(decimal.NewFromInt(30)))
}

func TestCancelOrderNotFound(t *testing.T) {
	f := newFixture()
	f.addAccount(t, "b1", domaccount.KindBuyer, 0)

	_, err := f.svc.CancelOrder(context.Background(), "b1", "ghost")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// The order snapshot, not the live product price, is authoritative for
// the reversal.
func TestCancelOrderUsesPriceSnapshot(t *testing.T) {
	f := newFixture()
	created := createTestOrder(t, f)

	p, err := f.store.Products().Get(context.Background(), "p1")
	require.NoError(t, err)
	p.Price = decimal.NewFromInt(99)
	require.NoError(t, f.store.Products().Save(context.Background(), p))

	_, err = f.svc.CancelOrder(context.Background(), "b1", created.ID)
	require.NoError(t, err)

	assert.True(t, f.balance(t, "b1").Equal(decimal.NewFromInt(100)))
	assert.True(t, f.balance(t, "s1").IsZero())
}

func TestListOrdersScoping(t *testing.T) {
	f := newFixture()
	f.addAccount(t, "b1", domaccount.KindBuyer, 1000)
	f.addAccount(t, "b2", domaccount.KindBuyer, 1000)
	f.addAccount(t, "s1", domaccount.KindSeller, 0)
	f.addAccount(t, "s2", domaccount.KindSeller, 0)
	f.addProduct(t, "p1", "s1", 10, 100)
	f.addProduct(t, "p2", "s2", 5, 100)
	f.addCartItem(t, "i1", "b1", "p1", 1)
	f.addCartItem(t, "i2", "b1", "p2", 1)
	f.addCartItem(t, "i3", "b2", "p2", 1)

	first, err := f.svc.CreateOrder(context.Background(), "b1", []string{"i1", "i2"})
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(context.Background(), "b2", []string{"i3"})
	require.NoError(t, err)

	buyerOrders, err := f.svc.ListBuyerOrders(context.Background(), "b1")
	require.NoError(t, err)
	assert.Len(t, buyerOrders, 1)

	sellerOrders, err := f.svc.ListSellerOrders(context.Background(), "s2")
	require.NoError(t, err)
	assert.Len(t, sellerOrders, 2, "seller sees every order containing one of its products")

	cancelledOrders, err := f.svc.ListCancelledOrders(context.Background(), "b1")
	require.NoError(t, err)
	assert.Empty(t, cancelledOrders)

	_, err = f.svc.CancelOrder(context.Background(), "b1", first.ID)
	require.NoError(t, err)

	cancelledOrders, err = f.svc.ListCancelledOrders(context.Background(), "b1")
	require.NoError(t, err)
	assert.Len(t, cancelledOrders, 1)
}

func TestConcurrentCreatesSameSeller(t *testing.T) {
	f := newFixture()
	const workers = 10

	f.addAccount(t, "s1", domaccount.KindSeller, 0)
	f.addProduct(t, "p1", "s1", 10, 1000)
	for i := 0; i < workers; i++ {
		buyerID := fmt.Sprintf("b%d", i)
		f.addAccount(t, buyerID, domaccount.KindBuyer, 100)
		f.addCartItem(t, fmt.Sprintf("i%d", i), buyerID, "p1", 1)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.CreateOrder(context.Background(), fmt.Sprintf("b%d", i), []string{fmt.Sprintf("i%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// No update lost: the seller collected every credit.
	assert.True(t, f.balance(t, "s1").Equal(decimal.NewFromInt(10*workers)))
	assert.Equal(t, 1000-workers, f.stock(t, "p1"))
}

func TestLifecycleEventsPublished(t *testing.T) {
	f := newFixture()
	created := createTestOrder(t, f)

	_, err := f.svc.ChangeStatus(context.Background(), "s1", created.ID, "PAID")
	require.NoError(t, err)
	_, err = f.svc.CancelOrder(context.Background(), "b1", created.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"order.created", "order.status_changed", "order.cancelled"}, f.publisher.names())
}
