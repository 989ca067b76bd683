package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Side represents the order side (buy or sell).
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Opposite returns the side an order matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// ParseSide converts a raw string into a Side.
func ParseSide(raw string) (Side, error) {
	switch Side(raw) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", fmt.Errorf("%w: side must be %q or %q", ErrValidation, SideBuy, SideSell)
	}
}

// OrderKind represents the kind of order.
type OrderKind string

const (
	OrderKindLimit  OrderKind = "limit"
	OrderKindMarket OrderKind = "market"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusAccepted        OrderStatus = "accepted"
	OrderStatusNew             OrderStatus = "new"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// Terminal reports whether no further transition out of this status is legal.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled
}

// Order is a single order with an immutable identity and terms and a
// monotonic lifecycle. Prices are integer ticks (e.g. cents) to avoid
// floating-point issues. After an order enters an engine it is mutated only
// by that symbol's engine goroutine; everyone else sees copies via Snapshot.
type Order struct {
	id        uuid.UUID
	side      Side
	symbol    string
	kind      OrderKind
	price     int64 // 0 for market orders, which carry no price
	quantity  int64
	remaining int64
	status    OrderStatus
	createdAt time.Time
}

func newOrder(side Side, symbol string, kind OrderKind, price, quantity int64) (*Order, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol must not be empty", ErrValidation)
	}
	if side != SideBuy && side != SideSell {
		return nil, fmt.Errorf("%w: side must be %q or %q", ErrValidation, SideBuy, SideSell)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	return &Order{
		id:        uuid.New(),
		side:      side,
		symbol:    symbol,
		kind:      kind,
		price:     price,
		quantity:  quantity,
		remaining: quantity,
		status:    OrderStatusAccepted,
		createdAt: time.Now(),
	}, nil
}

// NewLimitOrder creates a limit order in status ACCEPTED.
func NewLimitOrder(side Side, symbol string, price, quantity int64) (*Order, error) {
	if price < 1 {
		return nil, fmt.Errorf("%w: price must be at least 1", ErrValidation)
	}
	return newOrder(side, symbol, OrderKindLimit, price, quantity)
}

// NewMarketOrder creates a market order in status ACCEPTED. Market orders
// never carry a price.
func NewMarketOrder(side Side, symbol string, quantity int64) (*Order, error) {
	return newOrder(side, symbol, OrderKindMarket, 0, quantity)
}

func (o *Order) ID() uuid.UUID        { return o.id }
func (o *Order) Side() Side           { return o.side }
func (o *Order) Symbol() string       { return o.symbol }
func (o *Order) Kind() OrderKind      { return o.kind }
func (o *Order) Quantity() int64      { return o.quantity }
func (o *Order) Remaining() int64     { return o.remaining }
func (o *Order) Status() OrderStatus  { return o.status }
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// IsMarket reports whether the order is a market order.
func (o *Order) IsMarket() bool { return o.kind == OrderKindMarket }

// Price returns the limit price in ticks. It is 0 for market orders; callers
// on the matching path must check IsMarket first.
func (o *Order) Price() int64 { return o.price }

// Activate transitions ACCEPTED -> NEW when the order enters the engine.
func (o *Order) Activate() error {
	if o.status != OrderStatusAccepted {
		return fmt.Errorf("%w: cannot activate order in status %s", ErrInvalidState, o.status)
	}
	o.status = OrderStatusNew
	return nil
}

// Fill subtracts qty from the remaining quantity and transitions the status:
// remaining > 0 -> PARTIALLY_FILLED, remaining == 0 -> FILLED.
func (o *Order) Fill(qty int64) error {
	if err := o.requireActive(); err != nil {
		return err
	}
	if qty < 1 {
		return fmt.Errorf("%w: fill quantity must be at least 1", ErrValidation)
	}
	if qty > o.remaining {
		return fmt.Errorf("%w: fill quantity %d exceeds remaining %d", ErrValidation, qty, o.remaining)
	}
	o.remaining -= qty
	if o.remaining > 0 {
		o.status = OrderStatusPartiallyFilled
	} else {
		o.status = OrderStatusFilled
	}
	return nil
}

// Cancel transitions the order to CANCELLED. Remaining quantity is unchanged.
func (o *Order) Cancel() error {
	if err := o.requireActive(); err != nil {
		return err
	}
	o.status = OrderStatusCancelled
	return nil
}

func (o *Order) requireActive() error {
	if o.status != OrderStatusNew && o.status != OrderStatusPartiallyFilled {
		return fmt.Errorf("%w: order is not active: %s", ErrInvalidState, o.status)
	}
	return nil
}

// Snapshot returns an immutable copy of the order's current state. The live
// entity is owned by the engine goroutine; collaborators (persistence, API)
// only ever receive these copies.
func (o *Order) Snapshot() OrderView {
	return OrderView{
		ID:        o.id,
		Symbol:    o.symbol,
		Side:      o.side,
		Kind:      o.kind,
		Price:     o.price,
		Quantity:  o.quantity,
		Remaining: o.remaining,
		Status:    o.status,
		CreatedAt: o.createdAt,
	}
}

// OrderView is a point-in-time copy of an order, safe to share across
// goroutines and to hand to the persistence collaborator.
type OrderView struct {
	ID        uuid.UUID   `json:"order_id"`
	Symbol    string      `json:"symbol"`
	Side      Side        `json:"side"`
	Kind      OrderKind   `json:"kind"`
	Price     int64       `json:"price,omitempty"`
	Quantity  int64       `json:"quantity"`
	Remaining int64       `json:"remaining"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// ApplyFill folds an executed quantity into the view, mirroring the entity's
// fill transition. Used to bring a stored maker record up to date from a
// trade without touching the live engine-owned order.
func (v *OrderView) ApplyFill(qty int64) {
	if qty > v.Remaining {
		qty = v.Remaining
	}
	v.Remaining -= qty
	if v.Remaining > 0 {
		v.Status = OrderStatusPartiallyFilled
	} else {
		v.Status = OrderStatusFilled
	}
}
