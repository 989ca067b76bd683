package orderbook

import (
	"container/list"
	"sort"

	"github.com/google/uuid"

	"github.com/junholee/matching-engine/internal/domain"
)

// entry maps a resting order to its linked-list element for O(1) removal.
type entry struct {
	order *domain.Order
	elem  *list.Element
	level *bookLevel
}

// bookLevel is one price level on a side: a FIFO queue of resting orders.
type bookLevel struct {
	price  int64
	orders *list.List // of *domain.Order
}

// bookSide is one side (bids or asks) of the book.
type bookSide struct {
	side      domain.Side
	levels    map[int64]*bookLevel
	bestPrice int64
	hasOrders bool
}

func newBookSide(side domain.Side) *bookSide {
	return &bookSide{
		side:   side,
		levels: make(map[int64]*bookLevel),
	}
}

func (b *bookSide) add(order *domain.Order) (*bookLevel, *list.Element) {
	level, exists := b.levels[order.Price()]
	if !exists {
		level = &bookLevel{
			price:  order.Price(),
			orders: list.New(),
		}
		b.levels[order.Price()] = level
	}
	elem := level.orders.PushBack(order)
	b.refreshBestPrice()
	return level, elem
}

// remove unlinks the entry from its level and drops the level if it emptied.
func (b *bookSide) remove(e *entry) {
	e.level.orders.Remove(e.elem)
	if e.level.orders.Len() == 0 {
		delete(b.levels, e.level.price)
	}
	b.refreshBestPrice()
}

func (b *bookSide) bestLevel() *bookLevel {
	if !b.hasOrders {
		return nil
	}
	return b.levels[b.bestPrice]
}

func (b *bookSide) refreshBestPrice() {
	if len(b.levels) == 0 {
		b.hasOrders = false
		b.bestPrice = 0
		return
	}
	b.hasOrders = true
	if b.side == domain.SideBuy {
		best := int64(0)
		for price := range b.levels {
			if price > best {
				best = price
			}
		}
		b.bestPrice = best
	} else {
		best := int64(1<<62 - 1)
		for price := range b.levels {
			if price < best {
				best = price
			}
		}
		b.bestPrice = best
	}
}

// aggregate collects the side's levels as price/quantity pairs sorted by
// priority: bids descending, asks ascending.
func (b *bookSide) aggregate() []domain.PriceLevel {
	prices := make([]int64, 0, len(b.levels))
	for price := range b.levels {
		prices = append(prices, price)
	}
	if b.side == domain.SideBuy {
		sort.Slice(prices, func(i, j int) bool { return prices[i] > prices[j] })
	} else {
		sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })
	}

	out := make([]domain.PriceLevel, len(prices))
	for i, price := range prices {
		var qty int64
		for e := b.levels[price].orders.Front(); e != nil; e = e.Next() {
			qty += e.Value.(*domain.Order).Remaining()
		}
		out[i] = domain.PriceLevel{Price: price, Quantity: qty}
	}
	return out
}

// OrderBook holds the two-sided book for a single symbol: price-ordered FIFO
// queues per side plus an id index. Every order reachable from the index sits
// in exactly one queue on its own side at its own price. The book is owned
// exclusively by one symbol's engine goroutine and is not safe for
// concurrent use.
type OrderBook struct {
	symbol string
	bids   *bookSide
	asks   *bookSide
	index  map[uuid.UUID]*entry
}

// New creates an empty order book for a symbol.
func New(symbol string) *OrderBook {
	return &OrderBook{
		symbol: symbol,
		bids:   newBookSide(domain.SideBuy),
		asks:   newBookSide(domain.SideSell),
		index:  map[uuid.UUID]*entry{},
	}
}

// Symbol returns the symbol this book belongs to.
func (ob *OrderBook) Symbol() string { return ob.symbol }

// Add inserts a resting order at the tail of its price level, creating the
// level if absent, and indexes it by id.
func (ob *OrderBook) Add(order *domain.Order) {
	side := ob.sideOf(order.Side())
	level, elem := side.add(order)
	ob.index[order.ID()] = &entry{
		order: order,
		elem:  elem,
		level: level,
	}
}

// Peek returns the order at the best price for the side without removing it,
// or nil if the side is empty. Ties at the best price break by arrival order.
func (ob *OrderBook) Peek(side domain.Side) *domain.Order {
	level := ob.sideOf(side).bestLevel()
	if level == nil {
		return nil
	}
	front := level.orders.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*domain.Order)
}

// Poll removes and returns the order at the best price for the side, or nil
// if the side has no resting orders. An emptied level is dropped.
func (ob *OrderBook) Poll(side domain.Side) *domain.Order {
	s := ob.sideOf(side)
	level := s.bestLevel()
	if level == nil {
		return nil
	}
	front := level.orders.Front()
	if front == nil {
		return nil
	}
	order := front.Value.(*domain.Order)
	s.remove(ob.index[order.ID()])
	delete(ob.index, order.ID())
	return order
}

// Remove takes a specific order out of the book by id, for cancellation.
// Returns nil if the id is unknown (already matched away or never added).
func (ob *OrderBook) Remove(orderID uuid.UUID) *domain.Order {
	e, exists := ob.index[orderID]
	if !exists {
		return nil
	}
	ob.sideOf(e.order.Side()).remove(e)
	delete(ob.index, orderID)
	return e.order
}

// BestBid returns the highest resting buy price, if any.
func (ob *OrderBook) BestBid() (int64, bool) {
	return ob.bids.bestPrice, ob.bids.hasOrders
}

// BestAsk returns the lowest resting sell price, if any.
func (ob *OrderBook) BestAsk() (int64, bool) {
	return ob.asks.bestPrice, ob.asks.hasOrders
}

// Size returns the number of resting orders across both sides.
func (ob *OrderBook) Size() int { return len(ob.index) }

// Contains reports whether an order id is resting in the book.
func (ob *OrderBook) Contains(orderID uuid.UUID) bool {
	_, ok := ob.index[orderID]
	return ok
}

// Depth builds a fresh aggregated view of the book: per-price summed
// remaining quantity, bids descending, asks ascending.
func (ob *OrderBook) Depth() *domain.BookDepth {
	return &domain.BookDepth{
		Symbol: ob.symbol,
		Bids:   ob.bids.aggregate(),
		Asks:   ob.asks.aggregate(),
	}
}

// Consistent verifies the index and the level queues agree: every indexed
// order is linked on its own side at its own price, and no queue holds an
// unindexed order. Intended for tests and invariant checks; must be called
// from the owning engine goroutine or after it has stopped.
func (ob *OrderBook) Consistent() bool {
	queued := 0
	for _, side := range []*bookSide{ob.bids, ob.asks} {
		for price, level := range side.levels {
			for e := level.orders.Front(); e != nil; e = e.Next() {
				order := e.Value.(*domain.Order)
				queued++
				ent, ok := ob.index[order.ID()]
				if !ok || ent.order != order {
					return false
				}
				if order.Price() != price || order.Side() != side.side {
					return false
				}
			}
		}
	}
	return queued == len(ob.index)
}

func (ob *OrderBook) sideOf(side domain.Side) *bookSide {
	if side == domain.SideBuy {
		return ob.bids
	}
	return ob.asks
}
