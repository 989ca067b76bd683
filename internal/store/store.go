package store

import (
	"errors"

	"github.com/google/uuid"

	"github.com/junholee/matching-engine/internal/domain"
)

// ErrNotFound is returned by FindByID when no order with the id was saved.
var ErrNotFound = errors.New("order not found")

// OrderStore durably records order state. Save is an idempotent upsert keyed
// by the order id. Implementations must be safe for concurrent use: the
// boundary layer saves ACCEPTED orders while engine goroutines save
// post-match and terminal states.
type OrderStore interface {
	Save(order domain.OrderView) error
	FindByID(id uuid.UUID) (domain.OrderView, error)
}
