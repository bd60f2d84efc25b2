package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p, err := New("p1", "s1", "widget", decimal.NewFromInt(10), 5)
	require.NoError(t, err)
	assert.Equal(t, "s1", p.SellerID)
	assert.Equal(t, 5, p.Available)

	_, err = New("p2", "s1", "widget", decimal.NewFromInt(-1), 5)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = New("p3", "s1", "widget", decimal.NewFromInt(1), -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestReserveAndRestore(t *testing.T) {
	p, err := New("p1", "s1", "widget", decimal.NewFromInt(10), 5)
	require.NoError(t, err)

	require.NoError(t, p.Reserve(3))
	assert.Equal(t, 2, p.Available)

	err = p.Reserve(3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, p.Available, "failed reservation leaves stock unchanged")

	require.NoError(t, p.Restore(3))
	assert.Equal(t, 5, p.Available)

	assert.Error(t, p.Reserve(0))
	assert.Error(t, p.Restore(-1))
}
