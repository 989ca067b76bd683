package engine

import (
	"github.com/google/uuid"

	"github.com/junholee/matching-engine/internal/domain"
)

// Command is the closed set of inputs an engine accepts. The unexported
// marker method seals the set to this package's variants, so dispatch can
// treat any other value as a defect.
type Command interface {
	isCommand()
}

// PlaceOrder submits a freshly created (ACCEPTED) order for matching.
type PlaceOrder struct {
	Order *domain.Order
}

// CancelOrder requests removal of a resting order by id.
type CancelOrder struct {
	OrderID uuid.UUID
}

// shutdownCommand is the sentinel the loop enqueues as the logically last
// command during stop. It is unexported: producers cannot submit it, and the
// loop consumes it without dispatching to the handler.
type shutdownCommand struct{}

func (PlaceOrder) isCommand()      {}
func (CancelOrder) isCommand()     {}
func (shutdownCommand) isCommand() {}
