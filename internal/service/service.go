package service

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/junholee/matching-engine/internal/domain"
	"github.com/junholee/matching-engine/internal/engine"
	"github.com/junholee/matching-engine/internal/store"
)

// OrderService is the synchronous front of the asynchronous engines. It
// validates and persists the accepted order before handing it to the symbol's
// engine, so a client always gets an id it can poll even though matching
// happens later.
type OrderService struct {
	manager *engine.Manager
	cache   *engine.BookCache
	orders  store.OrderStore
	log     *zap.Logger
}

// NewOrderService wires the service.
func NewOrderService(manager *engine.Manager, cache *engine.BookCache, orders store.OrderStore, log *zap.Logger) *OrderService {
	return &OrderService{
		manager: manager,
		cache:   cache,
		orders:  orders,
		log:     log.Named("service"),
	}
}

// PlaceLimitOrder accepts a limit order for matching. The returned view shows
// the accepted state; fills and resting status appear asynchronously.
func (s *OrderService) PlaceLimitOrder(side domain.Side, symbol string, price, quantity int64) (domain.OrderView, error) {
	if !s.manager.HasSymbol(symbol) {
		return domain.OrderView{}, fmt.Errorf("%w: %s", engine.ErrUnknownSymbol, symbol)
	}

	order, err := domain.NewLimitOrder(side, symbol, price, quantity)
	if err != nil {
		return domain.OrderView{}, err
	}

	accepted := order.Snapshot()
	if err := s.orders.Save(accepted); err != nil {
		return domain.OrderView{}, fmt.Errorf("persist accepted order: %w", err)
	}

	if err := s.manager.Submit(symbol, engine.PlaceOrder{Order: order}); err != nil {
		return domain.OrderView{}, err
	}

	s.log.Info("order accepted",
		zap.String("order_id", accepted.ID.String()),
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.Int64("price", price),
		zap.Int64("quantity", quantity),
	)
	return accepted, nil
}

// CancelOrder requests cancellation of a resting order. The lookup resolves
// which symbol's engine owns the order; the outcome of the cancel itself is
// decided on that engine and observed through GetOrder.
func (s *OrderService) CancelOrder(id uuid.UUID) error {
	view, err := s.orders.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.manager.Submit(view.Symbol, engine.CancelOrder{OrderID: id}); err != nil {
		return err
	}
	s.log.Info("cancel requested", zap.String("order_id", id.String()))
	return nil
}

// GetOrder returns the last persisted state of an order.
func (s *OrderService) GetOrder(id uuid.UUID) (domain.OrderView, error) {
	return s.orders.FindByID(id)
}

// GetBookDepth returns the latest published depth snapshot for a symbol.
func (s *OrderService) GetBookDepth(symbol string) (*domain.BookDepth, error) {
	if !s.manager.HasSymbol(symbol) {
		return nil, fmt.Errorf("%w: %s", engine.ErrUnknownSymbol, symbol)
	}
	return s.cache.Depth(symbol), nil
}
