package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junholee/matching-engine/internal/domain"
	"github.com/junholee/matching-engine/internal/orderbook"
)

func addResting(t *testing.T, book *orderbook.OrderBook, side domain.Side, price, qty int64) {
	t.Helper()
	o, err := domain.NewLimitOrder(side, book.Symbol(), price, qty)
	require.NoError(t, err)
	require.NoError(t, o.Activate())
	book.Add(o)
}

func TestBookCache_EmptyBeforeFirstUpdate(t *testing.T) {
	cache := NewBookCache()

	depth := cache.Depth("AAPL")
	assert.Equal(t, "AAPL", depth.Symbol)
	assert.Empty(t, depth.Bids)
	assert.Empty(t, depth.Asks)
	assert.Empty(t, cache.LatestBids("AAPL"))
	assert.Empty(t, cache.LatestAsks("AAPL"))
}

func TestBookCache_UpdateRoundTrip(t *testing.T) {
	cache := NewBookCache()
	book := orderbook.New("AAPL")

	addResting(t, book, domain.SideBuy, 10000, 5)
	addResting(t, book, domain.SideBuy, 10000, 3)
	addResting(t, book, domain.SideBuy, 9990, 7)
	addResting(t, book, domain.SideSell, 10010, 4)

	cache.Update("AAPL", book)

	bids := cache.LatestBids("AAPL")
	require.Len(t, bids, 2)
	assert.Equal(t, domain.PriceLevel{Price: 10000, Quantity: 8}, bids[0])
	assert.Equal(t, domain.PriceLevel{Price: 9990, Quantity: 7}, bids[1])

	asks := cache.LatestAsks("AAPL")
	require.Len(t, asks, 1)
	assert.Equal(t, domain.PriceLevel{Price: 10010, Quantity: 4}, asks[0])
}

func TestBookCache_UpdateReplacesWholeSnapshot(t *testing.T) {
	cache := NewBookCache()
	book := orderbook.New("AAPL")

	addResting(t, book, domain.SideBuy, 10000, 5)
	cache.Update("AAPL", book)

	// Drain the book; the next update must fully replace the old
	// snapshot, with no merging of stale levels.
	require.NotNil(t, book.Poll(domain.SideBuy))
	addResting(t, book, domain.SideSell, 10020, 9)
	cache.Update("AAPL", book)

	assert.Empty(t, cache.LatestBids("AAPL"))
	asks := cache.LatestAsks("AAPL")
	require.Len(t, asks, 1)
	assert.Equal(t, int64(10020), asks[0].Price)
}

func TestBookCache_SnapshotPairIsConsistent(t *testing.T) {
	cache := NewBookCache()
	book := orderbook.New("AAPL")

	addResting(t, book, domain.SideBuy, 10000, 1)
	addResting(t, book, domain.SideSell, 10010, 1)
	cache.Update("AAPL", book)

	// One loaded object carries both sides; a reader can never see bids
	// from one publish and asks from another.
	depth := cache.Depth("AAPL")
	assert.Len(t, depth.Bids, 1)
	assert.Len(t, depth.Asks, 1)
}

func TestBookCache_SymbolsAreIndependent(t *testing.T) {
	cache := NewBookCache()

	aapl := orderbook.New("AAPL")
	addResting(t, aapl, domain.SideBuy, 10000, 5)
	cache.Update("AAPL", aapl)

	goog := orderbook.New("GOOG")
	addResting(t, goog, domain.SideSell, 20000, 2)
	cache.Update("GOOG", goog)

	assert.Len(t, cache.LatestBids("AAPL"), 1)
	assert.Empty(t, cache.LatestAsks("AAPL"))
	assert.Len(t, cache.LatestAsks("GOOG"), 1)
	assert.Empty(t, cache.LatestBids("GOOG"))
}
