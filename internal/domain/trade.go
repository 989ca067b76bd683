package domain

import "github.com/google/uuid"

// Trade records one execution between a taker and a resting maker. The
// execution price is always the maker's price. Trades are ephemeral values;
// the core does not persist them.
type Trade struct {
	BuyOrderID  uuid.UUID `json:"buy_order_id"`
	SellOrderID uuid.UUID `json:"sell_order_id"`
	Price       int64     `json:"price"`
	Quantity    int64     `json:"quantity"`
}

// NewTrade builds a trade from the matched pair, assigning buy/sell ids from
// the taker's side.
func NewTrade(taker, maker *Order, qty int64) Trade {
	t := Trade{
		Price:    maker.Price(),
		Quantity: qty,
	}
	if taker.Side() == SideBuy {
		t.BuyOrderID = taker.ID()
		t.SellOrderID = maker.ID()
	} else {
		t.BuyOrderID = maker.ID()
		t.SellOrderID = taker.ID()
	}
	return t
}

// MakerOrderID returns the resting side's order id given the taker's side.
func (t Trade) MakerOrderID(takerSide Side) uuid.UUID {
	if takerSide == SideBuy {
		return t.SellOrderID
	}
	return t.BuyOrderID
}
