package engine

import (
	"sync"
	"sync/atomic"

	"github.com/junholee/matching-engine/internal/domain"
	"github.com/junholee/matching-engine/internal/orderbook"
)

// BookCache publishes aggregated book depth from each symbol's engine
// goroutine (the sole writer per symbol) to arbitrary readers without
// locking the read path.
//
// Each update builds a fresh immutable BookDepth off to the side and swaps
// it in with one atomic store; readers perform one atomic load and use the
// whole object, so bids and asks always come from the same snapshot.
type BookCache struct {
	snapshots sync.Map // symbol -> *atomic.Pointer[domain.BookDepth]
}

// NewBookCache creates an empty cache.
func NewBookCache() *BookCache {
	return &BookCache{}
}

func (c *BookCache) pointerFor(symbol string) *atomic.Pointer[domain.BookDepth] {
	if p, ok := c.snapshots.Load(symbol); ok {
		return p.(*atomic.Pointer[domain.BookDepth])
	}
	p := &atomic.Pointer[domain.BookDepth]{}
	p.Store(domain.EmptyBookDepth(symbol))
	actual, _ := c.snapshots.LoadOrStore(symbol, p)
	return actual.(*atomic.Pointer[domain.BookDepth])
}

// Update replaces the symbol's snapshot with a fresh aggregation of the
// book's current state. Must only be called from the symbol's engine
// goroutine.
func (c *BookCache) Update(symbol string, book *orderbook.OrderBook) {
	c.pointerFor(symbol).Store(book.Depth())
}

// Depth returns the latest snapshot for a symbol. An unregistered or
// not-yet-updated symbol yields the empty pair, never an error. The returned
// value must be treated as read-only.
func (c *BookCache) Depth(symbol string) *domain.BookDepth {
	if p, ok := c.snapshots.Load(symbol); ok {
		return p.(*atomic.Pointer[domain.BookDepth]).Load()
	}
	return domain.EmptyBookDepth(symbol)
}

// LatestBids returns the bid side of the latest snapshot, prices descending.
func (c *BookCache) LatestBids(symbol string) []domain.PriceLevel {
	return c.Depth(symbol).Bids
}

// LatestAsks returns the ask side of the latest snapshot, prices ascending.
func (c *BookCache) LatestAsks(symbol string) []domain.PriceLevel {
	return c.Depth(symbol).Asks
}
