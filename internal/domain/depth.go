package domain

// PriceLevel is one aggregated price level of book depth.
type PriceLevel struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
}

// BookDepth is an aggregated view of one symbol's book: bids in descending
// price order, asks ascending. Instances are immutable once built.
type BookDepth struct {
	Symbol string       `json:"symbol"`
	Bids   []PriceLevel `json:"bids"`
	Asks   []PriceLevel `json:"asks"`
}

// EmptyBookDepth returns a depth view with no resting orders on either side.
func EmptyBookDepth(symbol string) *BookDepth {
	return &BookDepth{
		Symbol: symbol,
		Bids:   []PriceLevel{},
		Asks:   []PriceLevel{},
	}
}
