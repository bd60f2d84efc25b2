package order

import "time"

// CreatedEvent is emitted after an order and its settlement have been
// committed.
type CreatedEvent struct {
	OrderID    string
	BuyerID    string
	Total      string
	OccurredAt time.Time
}

func (CreatedEvent) EventName() string { return "order.created" }

func NewCreatedEvent(o *Order) CreatedEvent {
	return CreatedEvent{
		OrderID:    o.ID,
		BuyerID:    o.BuyerID,
		Total:      o.Total().String(),
		OccurredAt: time.Now().UTC(),
	}
}

// StatusChangedEvent is emitted when a seller advances an order.
type StatusChangedEvent struct {
	OrderID    string
	SellerID   string
	Status     Status
	OccurredAt time.Time
}

func (StatusChangedEvent) EventName() string { return "order.status_changed" }

func NewStatusChangedEvent(o *Order, sellerID string) StatusChangedEvent {
	return StatusChangedEvent{
		OrderID:    o.ID,
		SellerID:   sellerID,
		Status:     o.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// CancelledEvent is emitted after the cancellation reversal has been
// committed.
type CancelledEvent struct {
	OrderID    string
	BuyerID    string
	Total      string
	OccurredAt time.Time
}

func (CancelledEvent) EventName() string { return "order.cancelled" }

func NewCancelledEvent(o *Order) CancelledEvent {
	return CancelledEvent{
		OrderID:    o.ID,
		BuyerID:    o.BuyerID,
		Total:      o.Total().String(),
		OccurredAt: time.Now().UTC(),
	}
}
