package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/junholee/matching-engine/internal/domain"
	"github.com/junholee/matching-engine/internal/matching"
	"github.com/junholee/matching-engine/internal/metrics"
	"github.com/junholee/matching-engine/internal/orderbook"
	"github.com/junholee/matching-engine/internal/store"
)

// Handler executes one command at a time against a symbol's matching engine
// and drives the side effects: trade logging, persistence of order state,
// and snapshot publication. It always runs on the symbol's engine goroutine,
// so it needs no synchronization of its own.
type Handler struct {
	symbol string
	engine *matching.Engine
	book   *orderbook.OrderBook
	cache  *BookCache
	orders store.OrderStore
	log    *zap.Logger
}

// NewHandler wires a handler for one symbol.
func NewHandler(
	symbol string,
	eng *matching.Engine,
	book *orderbook.OrderBook,
	cache *BookCache,
	orders store.OrderStore,
	log *zap.Logger,
) *Handler {
	return &Handler{
		symbol: symbol,
		engine: eng,
		book:   book,
		cache:  cache,
		orders: orders,
		log:    log.Named(symbol),
	}
}

// Handle dispatches one command. On a cancel failure no side effect is
// performed: no persistence call, no snapshot publish.
func (h *Handler) Handle(cmd Command) error {
	switch c := cmd.(type) {
	case PlaceOrder:
		return h.handlePlace(c)
	case CancelOrder:
		return h.handleCancel(c)
	default:
		// The shutdown sentinel is consumed by the loop; anything
		// landing here means the closed command set grew without a
		// matching case.
		h.log.Warn("unexpected command reached handler", zap.Any("command", cmd))
		return fmt.Errorf("unexpected command %T", cmd)
	}
}

func (h *Handler) handlePlace(c PlaceOrder) error {
	taker := c.Order
	trades, err := h.engine.PlaceLimitOrder(taker)
	if err != nil {
		return fmt.Errorf("place order %s: %w", taker.ID(), err)
	}

	if len(trades) > 0 {
		h.log.Info("trades executed",
			zap.String("symbol", h.symbol),
			zap.String("taker", taker.ID().String()),
			zap.Int("count", len(trades)),
		)
		metrics.TradesTotal.WithLabelValues(h.symbol).Add(float64(len(trades)))
		h.persistMakers(taker.Side(), trades)
	}

	// Persist a fresh copy of the taker's post-match state. The live
	// entity never leaves the engine goroutine.
	if err := h.orders.Save(taker.Snapshot()); err != nil {
		h.log.Error("persist taker failed",
			zap.String("order_id", taker.ID().String()), zap.Error(err))
	}

	h.cache.Update(h.symbol, h.book)
	return nil
}

func (h *Handler) handleCancel(c CancelOrder) error {
	cancelled, err := h.engine.CancelOrder(c.OrderID)
	if err != nil {
		return fmt.Errorf("cancel order %s: %w", c.OrderID, err)
	}

	if err := h.orders.Save(cancelled.Snapshot()); err != nil {
		h.log.Error("persist cancelled order failed",
			zap.String("order_id", cancelled.ID().String()), zap.Error(err))
	}
	h.cache.Update(h.symbol, h.book)
	return nil
}

// persistMakers folds executed quantities into the stored maker records.
// Maker orders of this symbol are only ever mutated on this goroutine, so
// the read-modify-write is race free.
func (h *Handler) persistMakers(takerSide domain.Side, trades []domain.Trade) {
	for _, tr := range trades {
		makerID := tr.MakerOrderID(takerSide)
		view, err := h.orders.FindByID(makerID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				h.log.Error("load maker failed",
					zap.String("order_id", makerID.String()), zap.Error(err))
			}
			continue
		}
		view.ApplyFill(tr.Quantity)
		if err := h.orders.Save(view); err != nil {
			h.log.Error("persist maker failed",
				zap.String("order_id", makerID.String()), zap.Error(err))
		}
	}
}
