package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/junholee/matching-engine/internal/metrics"
)

// Admission errors surfaced synchronously to submitters.
var (
	ErrQueueFull    = errors.New("engine queue is full")
	ErrShuttingDown = errors.New("engine is shutting down")
)

// DefaultQueueCapacity bounds each symbol's command queue.
const DefaultQueueCapacity = 10_000

// Loop is the single-threaded command consumer for one symbol. Producers
// enqueue through Submit; exactly one worker goroutine drains the queue and
// dispatches to the handler. The mutex guards the running flag together with
// queue insertion so no command can be accepted after shutdown has been
// decided.
type Loop struct {
	symbol  string
	queue   chan Command
	handler *Handler
	worker  *Worker
	grace   time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	running bool
}

// NewLoop creates a loop with a bounded queue.
func NewLoop(symbol string, capacity int, handler *Handler, worker *Worker, grace time.Duration, log *zap.Logger) *Loop {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Loop{
		symbol:  symbol,
		queue:   make(chan Command, capacity),
		handler: handler,
		worker:  worker,
		grace:   grace,
		log:     log.Named(symbol),
		running: true,
	}
}

// Start launches the consumer on the dedicated worker.
func (l *Loop) Start() {
	l.worker.Start(l.run)
}

// Submit enqueues a command without blocking. It fails fast with
// ErrShuttingDown once stop has been decided and with ErrQueueFull at
// capacity; matching outcomes are never reported here.
func (l *Loop) Submit(cmd Command) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		metrics.SubmitRejections.WithLabelValues(l.symbol, "shutting_down").Inc()
		return ErrShuttingDown
	}
	select {
	case l.queue <- cmd:
		metrics.QueueDepth.WithLabelValues(l.symbol).Set(float64(len(l.queue)))
		return nil
	default:
		metrics.SubmitRejections.WithLabelValues(l.symbol, "queue_full").Inc()
		return ErrQueueFull
	}
}

// Stop flips the running flag under the submission guard, then performs a
// blocking insert of the shutdown sentinel so it is the logically last
// command the consumer observes even under saturation. It then waits for the
// worker up to the grace period. Safe to call repeatedly.
func (l *Loop) Stop() error {
	l.mu.Lock()
	if l.running {
		l.running = false
		// Blocking insert: new submissions are already rejected, and
		// the consumer keeps draining, so space always appears.
		l.queue <- shutdownCommand{}
	}
	l.mu.Unlock()

	return l.worker.Shutdown(l.grace)
}

// run is the consumer body executed on the worker goroutine. Dispatch
// failures are isolated: logged, the command dropped, the loop continues.
// A cancellation while parked on the queue is a normal termination request.
func (l *Loop) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-l.queue:
			metrics.QueueDepth.WithLabelValues(l.symbol).Set(float64(len(l.queue)))
			if _, ok := cmd.(shutdownCommand); ok {
				return
			}
			l.dispatch(cmd)
		}
	}
}

func (l *Loop) dispatch(cmd Command) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("panic while handling command",
				zap.String("symbol", l.symbol), zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := l.handler.Handle(cmd); err != nil {
		// One bad command must never stop the engine. The submitter
		// already returned from fire-and-forget Submit and is not
		// notified.
		l.log.Error("command failed",
			zap.String("symbol", l.symbol), zap.Error(err))
	}
	metrics.CommandDuration.WithLabelValues(l.symbol).Observe(time.Since(start).Seconds())
}
