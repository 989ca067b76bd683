package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/junholee/matching-engine/internal/domain"
	"github.com/junholee/matching-engine/internal/store"
)

func newTestLoop(t *testing.T, capacity int, orders store.OrderStore) (*Loop, *BookCache) {
	t.Helper()
	h, _, cache := newTestHandler(orders)
	worker := NewWorker("AAPL", zap.NewNop())
	loop := NewLoop("AAPL", capacity, h, worker, time.Second, zap.NewNop())
	return loop, cache
}

func TestLoop_ProcessesSubmittedCommands(t *testing.T) {
	orders := store.NewMemoryStore()
	loop, cache := newTestLoop(t, 16, orders)
	loop.Start()
	defer loop.Stop()

	buy, err := domain.NewLimitOrder(domain.SideBuy, "AAPL", 10000, 5)
	require.NoError(t, err)
	require.NoError(t, orders.Save(buy.Snapshot()))
	require.NoError(t, loop.Submit(PlaceOrder{Order: buy}))

	assert.Eventually(t, func() bool {
		return len(cache.LatestBids("AAPL")) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestLoop_QueueFull(t *testing.T) {
	orders := store.NewMemoryStore()
	// Never started, so nothing drains the queue.
	loop, _ := newTestLoop(t, 1, orders)

	require.NoError(t, loop.Submit(CancelOrder{OrderID: uuid.New()}))
	err := loop.Submit(CancelOrder{OrderID: uuid.New()})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestLoop_SubmitAfterStop(t *testing.T) {
	orders := store.NewMemoryStore()
	loop, _ := newTestLoop(t, 16, orders)
	loop.Start()
	require.NoError(t, loop.Stop())

	err := loop.Submit(CancelOrder{OrderID: uuid.New()})
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestLoop_StopIsIdempotent(t *testing.T) {
	orders := store.NewMemoryStore()
	loop, _ := newTestLoop(t, 16, orders)
	loop.Start()

	require.NoError(t, loop.Stop())
	require.NoError(t, loop.Stop())
}

func TestLoop_StopDrainsPendingCommands(t *testing.T) {
	orders := store.NewMemoryStore()
	loop, _ := newTestLoop(t, 64, orders)

	var placed []*domain.Order
	for i := 0; i < 10; i++ {
		o, err := domain.NewLimitOrder(domain.SideBuy, "AAPL", 10000, 1)
		require.NoError(t, err)
		require.NoError(t, orders.Save(o.Snapshot()))
		placed = append(placed, o)
	}

	// Enqueue before starting so the commands all sit ahead of the
	// shutdown sentinel.
	for _, o := range placed {
		require.NoError(t, loop.Submit(PlaceOrder{Order: o}))
	}
	loop.Start()
	require.NoError(t, loop.Stop())

	for _, o := range placed {
		view, err := orders.FindByID(o.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusNew, view.Status)
	}
}

func TestLoop_DispatchFailureDoesNotStopConsumer(t *testing.T) {
	orders := store.NewMemoryStore()
	loop, cache := newTestLoop(t, 16, orders)
	loop.Start()
	defer loop.Stop()

	// Cancel of an unknown order fails inside the handler.
	require.NoError(t, loop.Submit(CancelOrder{OrderID: uuid.New()}))

	buy, err := domain.NewLimitOrder(domain.SideBuy, "AAPL", 10000, 5)
	require.NoError(t, err)
	require.NoError(t, orders.Save(buy.Snapshot()))
	require.NoError(t, loop.Submit(PlaceOrder{Order: buy}))

	assert.Eventually(t, func() bool {
		return len(cache.LatestBids("AAPL")) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestLoop_ConcurrentSubmitAndStop(t *testing.T) {
	orders := store.NewMemoryStore()
	loop, _ := newTestLoop(t, DefaultQueueCapacity, orders)
	loop.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				o, err := domain.NewLimitOrder(domain.SideBuy, "AAPL", 10000, 1)
				if err != nil {
					t.Error(err)
					return
				}
				err = loop.Submit(PlaceOrder{Order: o})
				if err != nil && err != ErrShuttingDown && err != ErrQueueFull {
					t.Errorf("unexpected submit error: %v", err)
					return
				}
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, loop.Stop())
	wg.Wait()

	// After stop completes every producer observes rejection.
	err := loop.Submit(CancelOrder{OrderID: uuid.New()})
	assert.ErrorIs(t, err, ErrShuttingDown)
}
