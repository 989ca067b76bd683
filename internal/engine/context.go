package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/junholee/matching-engine/internal/matching"
	"github.com/junholee/matching-engine/internal/orderbook"
	"github.com/junholee/matching-engine/internal/store"
)

// Context is the composition root for one symbol: it owns the queue, book,
// matching engine, handler, loop and worker, all fully isolated from other
// symbols. The command queue is the only channel into this context; no
// internal reference escapes it.
type Context struct {
	symbol string
	loop   *Loop
}

// NewContext assembles the per-symbol components.
func NewContext(
	symbol string,
	queueCapacity int,
	grace time.Duration,
	cache *BookCache,
	orders store.OrderStore,
	log *zap.Logger,
) *Context {
	book := orderbook.New(symbol)
	eng := matching.NewEngine(book)
	handler := NewHandler(symbol, eng, book, cache, orders, log)
	worker := NewWorker(symbol, log)
	loop := NewLoop(symbol, queueCapacity, handler, worker, grace, log)

	return &Context{
		symbol: symbol,
		loop:   loop,
	}
}

// Symbol returns the symbol this context serves.
func (c *Context) Symbol() string { return c.symbol }

// Start launches the engine goroutine.
func (c *Context) Start() { c.loop.Start() }

// Stop shuts the engine goroutine down within the grace period.
func (c *Context) Stop() error { return c.loop.Stop() }

// Submit enqueues a command for this symbol.
func (c *Context) Submit(cmd Command) error { return c.loop.Submit(cmd) }
