package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("order: not found")
	ErrConflict = errors.New("order: concurrent modification")
	ErrNoLines  = errors.New("order: at least one line is required")
)

// Line is the immutable snapshot of one purchased product. UnitPrice is
// captured at creation time; later price changes on the product never
// affect settlement of this order.
type Line struct {
	ProductID string
	SellerID  string
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order maps products to purchased quantities. A product appears in at
// most one line; line order follows first appearance in the creating
// request. Version guards concurrent status writes.
type Order struct {
	ID        string
	BuyerID   string
	Lines     []Line
	Status    Status
	Version   uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id, buyerID string, lines []Line) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, errors.New("order: line quantity must be greater than zero")
		}
		if l.UnitPrice.IsNegative() {
			return nil, errors.New("order: line unit price must be zero or greater")
		}
	}

	now := time.Now().UTC()
	return &Order{
		ID:        id,
		BuyerID:   buyerID,
		Lines:     lines,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Total is the settlement amount of the whole order: the sum of
// unit price times quantity over every line.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// SellerSubtotals groups the settlement amount by seller. The sum of all
// subtotals equals Total, which is what keeps buyer debits and seller
// credits in balance.
func (o *Order) SellerSubtotals() map[string]decimal.Decimal {
	subtotals := make(map[string]decimal.Decimal, len(o.Lines))
	for _, l := range o.Lines {
		subtotals[l.SellerID] = subtotals[l.SellerID].Add(l.Subtotal())
	}
	return subtotals
}

// HasSeller reports whether any line of the order belongs to the seller.
func (o *Order) HasSeller(sellerID string) bool {
	for _, l := range o.Lines {
		if l.SellerID == sellerID {
			return true
		}
	}
	return false
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
