package order

import (
	"errors"
	"fmt"

	domorder "github.com/storeprime/backend/internal/domain/order"
)

var (
	ErrBuyerNotFound    = errors.New("order: buyer not found")
	ErrCartItemNotFound = errors.New("order: cart item not found")
	ErrOrderNotFound    = errors.New("order: order not found")
	ErrForbidden        = errors.New("order: forbidden")
	ErrInvalidStatus    = errors.New("order: status is not a recognized order status")
	ErrNoCartItems      = errors.New("order: at least one cart item id is required")
	ErrOutOfStock       = errors.New("order: not enough product available")
	ErrConflict         = domorder.ErrConflict
	ErrRepository       = errors.New("order: repository failure")
)

// wrapRepositoryError keeps serialization conflicts recognizable through
// errors.Is while folding everything else into a generic transactional
// failure.
func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domorder.ErrConflict) {
		return ErrConflict
	}
	return fmt.Errorf("%w: %w", ErrRepository, err)
}
