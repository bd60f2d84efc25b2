package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	domaccount "github.com/storeprime/backend/internal/domain/account"
	"github.com/storeprime/backend/internal/domain/authz"
	domcart "github.com/storeprime/backend/internal/domain/cart"
	domorder "github.com/storeprime/backend/internal/domain/order"
	domoutbox "github.com/storeprime/backend/internal/domain/outbox"
	domproduct "github.com/storeprime/backend/internal/domain/product"
	"github.com/storeprime/backend/internal/domain/storage"
	"github.com/storeprime/backend/internal/pkg/logging"
)

const publishTimeout = 300 * time.Millisecond

// Service drives the order lifecycle: creation with settlement, seller
// status transitions, and cancellation with settlement reversal. Every
// mutating operation runs as one unit of work so ledger, stock, cart and
// order writes commit together or not at all.
type Service struct {
	uow       storage.UnitOfWork
	orders    domorder.Repository
	ids       IDGenerator
	publisher domoutbox.Publisher
}

func NewService(uow storage.UnitOfWork, orders domorder.Repository, ids IDGenerator, publisher domoutbox.Publisher) *Service {
	return &Service{
		uow:       uow,
		orders:    orders,
		ids:       ids,
		publisher: publisher,
	}
}

// CreateOrder converts the buyer's cart items into a new order.
//
// Resolution and ownership checks run before any balance is touched, in
// the sequence the ids were given, so the first failing item determines
// the error and an invalid request has no side effect at all. Settlement
// then credits each seller and debits the buyer per product line; the
// order record is only persisted when every transfer succeeded.
func (s *Service) CreateOrder(ctx context.Context, buyerID string, cartItemIDs []string) (*domorder.Order, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "order_service"))
	logger.Info("create_order_start",
		zap.String("buyer_id", buyerID),
		zap.Int("items", len(cartItemIDs)),
	)

	if len(cartItemIDs) == 0 {
		return nil, ErrNoCartItems
	}

	var created *domorder.Order
	err := s.uow.Within(ctx, func(tx storage.Tx) error {
		buyer, err := tx.Accounts().Get(ctx, buyerID)
		if errors.Is(err, domaccount.ErrNotFound) {
			return ErrBuyerNotFound
		}
		if err != nil {
			return wrapRepositoryError(err)
		}
		if !buyer.IsBuyer() {
			return ErrBuyerNotFound
		}

		items := make([]*domcart.Item, 0, len(cartItemIDs))
		for _, itemID := range cartItemIDs {
			item, err := tx.CartItems().Get(ctx, itemID)
			if errors.Is(err, domcart.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrCartItemNotFound, itemID)
			}
			if err != nil {
				return wrapRepositoryError(err)
			}
			if !authz.OwnsCartItem(buyerID, item) {
				return fmt.Errorf("%w: cart item %s belongs to another buyer", ErrForbidden, itemID)
			}
			items = append(items, item)
		}

		lines, err := s.buildLines(ctx, tx, items)
		if err != nil {
			return err
		}

		entity, err := domorder.New(s.ids.NewID(), buyerID, lines)
		if err != nil {
			return fmt.Errorf("order: construct: %w", err)
		}

		for _, line := range entity.Lines {
			amount := line.Subtotal()
			if _, err := tx.Accounts().AdjustBalance(ctx, line.SellerID, amount); err != nil {
				return wrapRepositoryError(err)
			}
			if _, err := tx.Accounts().AdjustBalance(ctx, buyerID, amount.Neg()); err != nil {
				return wrapRepositoryError(err)
			}
		}

		// Converted items must never be orderable again.
		for _, item := range items {
			if err := tx.CartItems().Delete(ctx, item.ID); err != nil {
				return wrapRepositoryError(err)
			}
		}

		if err := tx.Orders().Insert(ctx, entity); err != nil {
			return wrapRepositoryError(err)
		}

		created = entity
		return nil
	})
	if err != nil {
		logger.Warn("create_order_failed", zap.String("buyer_id", buyerID), zap.Error(err))
		return nil, err
	}

	s.publish(ctx, domorder.NewCreatedEvent(created))

	logger.Info("create_order_success",
		zap.String("order_id", created.ID),
		zap.String("total", created.Total().String()),
	)
	return created, nil
}

// buildLines snapshots price and seller for each product, accumulating
// quantity when the same product appears in several cart items, and
// reserves stock while the prices are being captured.
func (s *Service) buildLines(ctx context.Context, tx storage.Tx, items []*domcart.Item) ([]domorder.Line, error) {
	lines := make([]domorder.Line, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		if at, ok := index[item.ProductID]; ok {
			lines[at].Quantity += item.Quantity
			continue
		}
		p, err := tx.Products().Get(ctx, item.ProductID)
		if err != nil {
			return nil, wrapRepositoryError(err)
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, domorder.Line{
			ProductID: p.ID,
			SellerID:  p.SellerID,
			UnitPrice: p.Price,
			Quantity:  item.Quantity,
		})
	}

	for _, line := range lines {
		p, err := tx.Products().Get(ctx, line.ProductID)
		if err != nil {
			return nil, wrapRepositoryError(err)
		}
		if err := p.Reserve(line.Quantity); err != nil {
			if errors.Is(err, domproduct.ErrInsufficientStock) {
				return nil, fmt.Errorf("%w: product %s", ErrOutOfStock, line.ProductID)
			}
			return nil, wrapRepositoryError(err)
		}
		if err := tx.Products().Save(ctx, p); err != nil {
			return nil, wrapRepositoryError(err)
		}
	}

	return lines, nil
}

// ChangeStatus lets a seller owning at least one line advance the order.
// The target must be a recognized status; nothing moves out of
// CANCELLED, and CANCELLED itself is not seller-settable.
func (s *Service) ChangeStatus(ctx context.Context, sellerID, orderID, statusName string) (*domorder.Order, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "order_service"))

	var updated *domorder.Order
	err := s.uow.Within(ctx, func(tx storage.Tx) error {
		entity, err := tx.Orders().Get(ctx, orderID)
		if errors.Is(err, domorder.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return wrapRepositoryError(err)
		}
		status, err := domorder.ParseStatus(statusName)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, statusName)
		}
		if !authz.OwnsOrderAsSeller(sellerID, entity) {
			return fmt.Errorf("%w: seller %s has no line in order %s", ErrForbidden, sellerID, orderID)
		}
		if err := entity.AdvanceTo(status); err != nil {
			return fmt.Errorf("%w: %w", ErrForbidden, err)
		}
		if err := tx.Orders().Update(ctx, entity); err != nil {
			return wrapRepositoryError(err)
		}
		updated = entity
		return nil
	})
	if err != nil {
		logger.Warn("change_status_failed",
			zap.String("order_id", orderID),
			zap.String("seller_id", sellerID),
			zap.Error(err),
		)
		return nil, err
	}

	s.publish(ctx, domorder.NewStatusChangedEvent(updated, sellerID))

	logger.Info("change_status_success",
		zap.String("order_id", updated.ID),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

// CancelOrder reverses the settlement of an order owned by the buyer.
// Amounts come from the order's immutable snapshot, never from live
// product prices, so the reversal is the exact inverse of creation.
// A second cancellation is rejected before any balance moves.
func (s *Service) CancelOrder(ctx context.Context, buyerID, orderID string) (*domorder.Order, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "order_service"))

	var cancelled *domorder.Order
	err := s.uow.Within(ctx, func(tx storage.Tx) error {
		entity, err := tx.Orders().Get(ctx, orderID)
		if errors.Is(err, domorder.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return wrapRepositoryError(err)
		}
		if !authz.OwnsOrderAsBuyer(buyerID, entity) {
			return fmt.Errorf("%w: order %s belongs to another buyer", ErrForbidden, orderID)
		}
		if err := entity.Cancel(); err != nil {
			return fmt.Errorf("%w: %w", ErrForbidden, err)
		}

		if _, err := tx.Accounts().AdjustBalance(ctx, buyerID, entity.Total()); err != nil {
			return wrapRepositoryError(err)
		}
		for sellerID, subtotal := range entity.SellerSubtotals() {
			if _, err := tx.Accounts().AdjustBalance(ctx, sellerID, subtotal.Neg()); err != nil {
				return wrapRepositoryError(err)
			}
		}

		for _, line := range entity.Lines {
			p, err := tx.Products().Get(ctx, line.ProductID)
			if err != nil {
				return wrapRepositoryError(err)
			}
			if err := p.Restore(line.Quantity); err != nil {
				return wrapRepositoryError(err)
			}
			if err := tx.Products().Save(ctx, p); err != nil {
				return wrapRepositoryError(err)
			}
		}

		if err := tx.Orders().Update(ctx, entity); err != nil {
			return wrapRepositoryError(err)
		}
		cancelled = entity
		return nil
	})
	if err != nil {
		logger.Warn("cancel_order_failed",
			zap.String("order_id", orderID),
			zap.String("buyer_id", buyerID),
			zap.Error(err),
		)
		return nil, err
	}

	s.publish(ctx, domorder.NewCancelledEvent(cancelled))

	logger.Info("cancel_order_success",
		zap.String("order_id", cancelled.ID),
		zap.String("refunded", cancelled.Total().String()),
	)
	return cancelled, nil
}

// ListBuyerOrders is a read-only projection scoped to the buyer.
func (s *Service) ListBuyerOrders(ctx context.Context, buyerID string) ([]*domorder.Order, error) {
	orders, err := s.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return orders, nil
}

// ListSellerOrders returns every order containing at least one of the
// seller's products.
func (s *Service) ListSellerOrders(ctx context.Context, sellerID string) ([]*domorder.Order, error) {
	orders, err := s.orders.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return orders, nil
}

// ListCancelledOrders returns the buyer's cancelled orders.
func (s *Service) ListCancelledOrders(ctx context.Context, buyerID string) ([]*domorder.Order, error) {
	orders, err := s.orders.ListByBuyerAndStatus(ctx, buyerID, domorder.StatusCancelled)
	if err != nil {
		return nil, wrapRepositoryError(err)
	}
	return orders, nil
}

// publish sends an event after commit; delivery is best effort and never
// fails the operation.
func (s *Service) publish(ctx context.Context, e domoutbox.Event) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, e); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed",
			zap.String("event", e.EventName()),
			zap.Error(err),
		)
	}
}
