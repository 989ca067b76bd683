package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrShutdownTimeout is returned when the worker did not exit within the
// grace period and was force-cancelled.
var ErrShutdownTimeout = errors.New("worker did not stop within grace period")

// Worker owns the one dedicated goroutine a symbol's engine runs on. The
// name shows up in logs to make per-symbol diagnosis possible under load.
type Worker struct {
	name    string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started atomic.Bool
	log     *zap.Logger
}

// NewWorker creates a worker named after its symbol.
func NewWorker(symbol string, log *zap.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		name:   "engine-" + symbol,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		log:    log.Named(symbol),
	}
}

// Start launches run on the dedicated goroutine. Launching twice is a
// wiring defect and is ignored with a log.
func (w *Worker) Start(run func(ctx context.Context)) {
	if !w.started.CompareAndSwap(false, true) {
		w.log.Warn("worker already started", zap.String("worker", w.name))
		return
	}
	go func() {
		defer close(w.done)
		w.log.Info("worker started", zap.String("worker", w.name))
		run(w.ctx)
		w.log.Info("worker stopped", zap.String("worker", w.name))
	}()
}

// Interrupt delivers a cancellation signal, unblocking a consumer parked on
// a blocking queue take.
func (w *Worker) Interrupt() {
	w.cancel()
}

// Shutdown waits for the goroutine to exit, up to grace. On timeout it
// cancels the worker's context (the strongest stop a goroutine allows) and
// reports ErrShutdownTimeout.
func (w *Worker) Shutdown(grace time.Duration) error {
	if !w.started.Load() {
		w.cancel()
		return nil
	}
	select {
	case <-w.done:
		return nil
	case <-time.After(grace):
		w.cancel()
		select {
		case <-w.done:
			return nil
		case <-time.After(grace):
			return fmt.Errorf("%w: %s", ErrShutdownTimeout, w.name)
		}
	}
}
