package engine

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/junholee/matching-engine/internal/metrics"
	"github.com/junholee/matching-engine/internal/store"
)

// ErrUnknownSymbol is returned when a command targets a symbol no engine was
// configured for.
var ErrUnknownSymbol = errors.New("unknown symbol")

// DefaultShutdownGrace bounds how long Stop waits for each engine goroutine.
const DefaultShutdownGrace = 2 * time.Second

// Manager builds one engine Context per configured symbol and routes
// commands to them. The registry is filled once in Start and read-only
// afterwards, so lookups need no locking.
type Manager struct {
	symbols       []string
	queueCapacity int
	grace         time.Duration
	cache         *BookCache
	orders        store.OrderStore
	log           *zap.Logger

	contexts map[string]*Context
}

// NewManager creates a manager for the configured symbol list.
func NewManager(
	symbols []string,
	queueCapacity int,
	grace time.Duration,
	cache *BookCache,
	orders store.OrderStore,
	log *zap.Logger,
) *Manager {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}
	return &Manager{
		symbols:       symbols,
		queueCapacity: queueCapacity,
		grace:         grace,
		cache:         cache,
		orders:        orders,
		log:           log.Named("engine"),
	}
}

// Start creates and starts one isolated engine context per symbol.
func (m *Manager) Start() {
	m.contexts = make(map[string]*Context, len(m.symbols))
	for _, symbol := range m.symbols {
		ctx := NewContext(symbol, m.queueCapacity, m.grace, m.cache, m.orders, m.log)
		m.contexts[symbol] = ctx
		ctx.Start()
		m.log.Info("engine started", zap.String("symbol", symbol))
	}
}

// Stop shuts down every engine. A failing symbol is logged and the rest are
// still stopped.
func (m *Manager) Stop() {
	for symbol, ctx := range m.contexts {
		if err := ctx.Stop(); err != nil {
			m.log.Error("engine stop failed",
				zap.String("symbol", symbol), zap.Error(err))
		}
	}
}

// Submit routes a command to the symbol's engine. Admission errors (unknown
// symbol, queue full, shutting down) are returned synchronously; matching
// outcomes are not.
func (m *Manager) Submit(symbol string, cmd Command) error {
	ctx, exists := m.contexts[symbol]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if err := ctx.Submit(cmd); err != nil {
		return err
	}
	metrics.OrdersTotal.WithLabelValues(actionOf(cmd), symbol).Inc()
	return nil
}

// HasSymbol reports whether an engine exists for the symbol.
func (m *Manager) HasSymbol(symbol string) bool {
	_, exists := m.contexts[symbol]
	return exists
}

func actionOf(cmd Command) string {
	switch cmd.(type) {
	case PlaceOrder:
		return "place"
	case CancelOrder:
		return "cancel"
	default:
		return "unknown"
	}
}
