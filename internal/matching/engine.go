package matching

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/junholee/matching-engine/internal/domain"
	"github.com/junholee/matching-engine/internal/orderbook"
)

// ErrOrderNotFound is returned by CancelOrder when the order is not resting
// in the book: it never entered, was already fully matched, or was already
// cancelled. A cancel losing the race against a concurrent fill is an
// expected outcome, not a defect.
var ErrOrderNotFound = errors.New("order not found or already processed")

// Engine matches incoming orders against one symbol's book under price-time
// priority. It holds no state of its own beyond the book reference and must
// only be driven by that symbol's engine goroutine.
type Engine struct {
	book *orderbook.OrderBook
}

// NewEngine creates a matching engine over the given book.
func NewEngine(book *orderbook.OrderBook) *Engine {
	return &Engine{book: book}
}

// PlaceLimitOrder activates the taker, executes it against the opposing side
// while prices cross, and rests any remainder on its own side. It returns
// the trades in execution order: best price first, FIFO within a price —
// the book's own ordering enforces this, no extra sorting happens here.
//
// An activation failure means the caller broke the contract: the order was
// not freshly created or entered the engine twice.
func (e *Engine) PlaceLimitOrder(taker *domain.Order) ([]domain.Trade, error) {
	if taker.IsMarket() {
		return nil, fmt.Errorf("%w: market orders are not matchable as limit orders", domain.ErrValidation)
	}
	if err := taker.Activate(); err != nil {
		return nil, fmt.Errorf("activate taker %s: %w", taker.ID(), err)
	}

	var trades []domain.Trade
	opposite := taker.Side().Opposite()
	for taker.Remaining() > 0 {
		maker := e.book.Peek(opposite)
		if maker == nil || !crosses(taker, maker) {
			break
		}

		qty := min(taker.Remaining(), maker.Remaining())
		trades = append(trades, domain.NewTrade(taker, maker, qty))

		// A fill failure here means the book held a non-active order,
		// which breaks its membership invariant. Surface it.
		if err := maker.Fill(qty); err != nil {
			return trades, fmt.Errorf("fill maker %s: %w", maker.ID(), err)
		}
		if err := taker.Fill(qty); err != nil {
			return trades, fmt.Errorf("fill taker %s: %w", taker.ID(), err)
		}
		if maker.Remaining() == 0 {
			e.book.Poll(opposite)
		}
	}

	if taker.Remaining() > 0 {
		e.book.Add(taker)
	}
	return trades, nil
}

// CancelOrder removes the order from the book and transitions it to
// CANCELLED. Returns ErrOrderNotFound if the order is not resting. A state
// error on the removed order means the book's membership invariant was
// violated and is surfaced.
func (e *Engine) CancelOrder(orderID uuid.UUID) (*domain.Order, error) {
	order := e.book.Remove(orderID)
	if order == nil {
		return nil, fmt.Errorf("cancel %s: %w", orderID, ErrOrderNotFound)
	}
	if err := order.Cancel(); err != nil {
		return nil, fmt.Errorf("cancel %s: %w", orderID, err)
	}
	return order, nil
}

// crosses reports whether the taker's limit price is marketable against the
// maker: a buy crosses when maker price <= taker price, a sell when
// maker price >= taker price.
func crosses(taker, maker *domain.Order) bool {
	if taker.Side() == domain.SideBuy {
		return maker.Price() <= taker.Price()
	}
	return maker.Price() >= taker.Price()
}
