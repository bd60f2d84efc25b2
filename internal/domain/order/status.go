package order

import "errors"

var (
	ErrUnknownStatus   = errors.New("order: unknown status name")
	ErrTerminalState   = errors.New("order: no transition allowed out of a terminal status")
	ErrNotSellerStatus = errors.New("order: status cannot be set by a seller")
)

type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusPaid       Status = "PAID"
	StatusAssembling Status = "ASSEMBLING"
	StatusTransiting Status = "TRANSITING"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// sellerStatuses are the statuses a seller may advance an order into.
// CANCELLED is deliberately absent: cancellation is a buyer operation
// with its own settlement reversal.
var sellerStatuses = map[Status]struct{}{
	StatusCreated:    {},
	StatusPaid:       {},
	StatusAssembling: {},
	StatusTransiting: {},
	StatusDelivered:  {},
}

var allStatuses = map[Status]struct{}{
	StatusCreated:    {},
	StatusPaid:       {},
	StatusAssembling: {},
	StatusTransiting: {},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ParseStatus resolves a status name supplied by a caller. Unrecognized
// names are rejected rather than stored verbatim.
func ParseStatus(name string) (Status, error) {
	s := Status(name)
	if _, ok := allStatuses[s]; !ok {
		return "", ErrUnknownStatus
	}
	return s, nil
}

// AdvanceTo moves the order into a seller-set status. Re-setting the
// current status is an ordinary write with no extra effect. Nothing
// leaves CANCELLED, and nothing enters it through this path.
func (o *Order) AdvanceTo(s Status) error {
	if o.Status == StatusCancelled {
		return ErrTerminalState
	}
	if _, ok := sellerStatuses[s]; !ok {
		return ErrNotSellerStatus
	}
	o.Status = s
	o.touch()
	return nil
}

// Cancel moves the order into the terminal CANCELLED status. Cancelling
// twice is rejected so the settlement reversal cannot be applied twice.
func (o *Order) Cancel() error {
	if o.Status == StatusCancelled {
		return ErrTerminalState
	}
	o.Status = StatusCancelled
	o.touch()
	return nil
}
