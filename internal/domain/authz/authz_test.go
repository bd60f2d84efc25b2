package authz

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeprime/backend/internal/domain/cart"
	"github.com/storeprime/backend/internal/domain/order"
)

func TestOwnsCartItem(t *testing.T) {
	item, err := cart.NewItem("i1", "b1", "p1", 2)
	require.NoError(t, err)

	assert.True(t, OwnsCartItem("b1", item))
	assert.False(t, OwnsCartItem("b2", item))
	assert.False(t, OwnsCartItem("", item))
	assert.False(t, OwnsCartItem("b1", nil))
}

func TestOwnsOrder(t *testing.T) {
	o, err := order.New("o1", "b1", []order.Line{
		{ProductID: "p1", SellerID: "s1", UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		{ProductID: "p2", SellerID: "s2", UnitPrice: decimal.NewFromInt(5), Quantity: 2},
	})
	require.NoError(t, err)

	assert.True(t, OwnsOrderAsBuyer("b1", o))
	assert.False(t, OwnsOrderAsBuyer("b2", o))
	assert.False(t, OwnsOrderAsBuyer("b1", nil))

	assert.True(t, OwnsOrderAsSeller("s1", o))
	assert.True(t, OwnsOrderAsSeller("s2", o))
	assert.False(t, OwnsOrderAsSeller("s3", o))
	assert.False(t, OwnsOrderAsSeller("", o))
}
