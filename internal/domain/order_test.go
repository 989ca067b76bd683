package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimitOrder(t *testing.T) {
	o, err := NewLimitOrder(SideBuy, "AAPL", 10000, 5)
	require.NoError(t, err)

	assert.NotEqual(t, o.ID().String(), "")
	assert.Equal(t, OrderStatusAccepted, o.Status())
	assert.Equal(t, int64(5), o.Quantity())
	assert.Equal(t, int64(5), o.Remaining())
	assert.Equal(t, int64(10000), o.Price())
	assert.False(t, o.IsMarket())
	assert.False(t, o.CreatedAt().IsZero())
}

func TestNewLimitOrder_Validation(t *testing.T) {
	cases := []struct {
		name   string
		side   Side
		symbol string
		price  int64
		qty    int64
	}{
		{"zero quantity", SideBuy, "AAPL", 10000, 0},
		{"negative quantity", SideBuy, "AAPL", 10000, -1},
		{"zero price", SideBuy, "AAPL", 0, 5},
		{"negative price", SideSell, "AAPL", -100, 5},
		{"empty symbol", SideBuy, "", 10000, 5},
		{"bad side", Side("hold"), "AAPL", 10000, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLimitOrder(tc.side, tc.symbol, tc.price, tc.qty)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNewMarketOrder_HasNoPrice(t *testing.T) {
	o, err := NewMarketOrder(SideSell, "AAPL", 3)
	require.NoError(t, err)

	assert.True(t, o.IsMarket())
	assert.Equal(t, int64(0), o.Price())
}

func TestActivate(t *testing.T) {
	o, _ := NewLimitOrder(SideBuy, "AAPL", 10000, 5)

	require.NoError(t, o.Activate())
	assert.Equal(t, OrderStatusNew, o.Status())

	// Activating twice is a caller contract violation.
	assert.ErrorIs(t, o.Activate(), ErrInvalidState)
}

func TestFill_Partial(t *testing.T) {
	o, _ := NewLimitOrder(SideBuy, "AAPL", 10000, 10)
	require.NoError(t, o.Activate())

	require.NoError(t, o.Fill(4))
	assert.Equal(t, OrderStatusPartiallyFilled, o.Status())
	assert.Equal(t, int64(6), o.Remaining())

	require.NoError(t, o.Fill(6))
	assert.Equal(t, OrderStatusFilled, o.Status())
	assert.Equal(t, int64(0), o.Remaining())
}

func TestFill_GuardsRemaining(t *testing.T) {
	o, _ := NewLimitOrder(SideBuy, "AAPL", 10000, 5)
	require.NoError(t, o.Activate())

	assert.ErrorIs(t, o.Fill(6), ErrValidation)
	assert.ErrorIs(t, o.Fill(0), ErrValidation)
	assert.Equal(t, int64(5), o.Remaining())
	assert.Equal(t, OrderStatusNew, o.Status())
}

func TestFill_RequiresActive(t *testing.T) {
	o, _ := NewLimitOrder(SideBuy, "AAPL", 10000, 5)

	// ACCEPTED is not fillable.
	assert.ErrorIs(t, o.Fill(1), ErrInvalidState)

	require.NoError(t, o.Activate())
	require.NoError(t, o.Fill(5))

	// FILLED is terminal.
	assert.ErrorIs(t, o.Fill(1), ErrInvalidState)
}

func TestCancel(t *testing.T) {
	o, _ := NewLimitOrder(SideSell, "AAPL", 10000, 5)
	require.NoError(t, o.Activate())
	require.NoError(t, o.Fill(2))

	require.NoError(t, o.Cancel())
	assert.Equal(t, OrderStatusCancelled, o.Status())
	assert.Equal(t, int64(3), o.Remaining())

	// No transition out of a terminal state.
	assert.ErrorIs(t, o.Cancel(), ErrInvalidState)
	assert.ErrorIs(t, o.Fill(1), ErrInvalidState)
}

func TestCancel_FromAccepted(t *testing.T) {
	o, _ := NewLimitOrder(SideSell, "AAPL", 10000, 5)
	assert.ErrorIs(t, o.Cancel(), ErrInvalidState)
}

func TestSnapshot_IsCopy(t *testing.T) {
	o, _ := NewLimitOrder(SideBuy, "AAPL", 10000, 5)
	require.NoError(t, o.Activate())

	view := o.Snapshot()
	require.NoError(t, o.Fill(5))

	assert.Equal(t, OrderStatusNew, view.Status)
	assert.Equal(t, int64(5), view.Remaining)
	assert.Equal(t, OrderStatusFilled, o.Status())
}

func TestOrderView_ApplyFill(t *testing.T) {
	o, _ := NewLimitOrder(SideSell, "AAPL", 10000, 10)
	view := o.Snapshot()

	view.ApplyFill(4)
	assert.Equal(t, int64(6), view.Remaining)
	assert.Equal(t, OrderStatusPartiallyFilled, view.Status)

	view.ApplyFill(6)
	assert.Equal(t, int64(0), view.Remaining)
	assert.Equal(t, OrderStatusFilled, view.Status)
}

func TestNewTrade_AssignsSides(t *testing.T) {
	buy, _ := NewLimitOrder(SideBuy, "AAPL", 10000, 5)
	sell, _ := NewLimitOrder(SideSell, "AAPL", 10000, 5)

	tr := NewTrade(buy, sell, 5)
	assert.Equal(t, buy.ID(), tr.BuyOrderID)
	assert.Equal(t, sell.ID(), tr.SellOrderID)
	assert.Equal(t, sell.Price(), tr.Price)
	assert.Equal(t, sell.ID(), tr.MakerOrderID(SideBuy))

	tr = NewTrade(sell, buy, 5)
	assert.Equal(t, buy.ID(), tr.BuyOrderID)
	assert.Equal(t, sell.ID(), tr.SellOrderID)
	assert.Equal(t, buy.ID(), tr.MakerOrderID(SideSell))
}
