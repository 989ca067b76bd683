package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/junholee/matching-engine/internal/domain"
)

// MemoryStore keeps order state in process memory. Suitable for development
// and tests; nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]domain.OrderView
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[uuid.UUID]domain.OrderView)}
}

// Save upserts the order state by id.
func (s *MemoryStore) Save(order domain.OrderView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
	return nil
}

// FindByID returns the last saved state of the order.
func (s *MemoryStore) FindByID(id uuid.UUID) (domain.OrderView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.orders[id]
	if !exists {
		return domain.OrderView{}, ErrNotFound
	}
	return order, nil
}
