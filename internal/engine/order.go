package engine

import (
	"sync/atomic"

	"github.com/shopspring/decimal"
)

var nextOrderID uint64

// priceScale is the maximum number of decimal places an order's Price keeps;
// NewOrder truncates any digits beyond it. Prices with fewer places are
// left as given. The book's price-level index keys on Price.String(), which
// omits trailing zeros, so "100" and "100.00" already produce the same key.
const priceScale = 8

// NewOrderID hands out the next process-wide order identifier. Exported so
// the transport layer can mint an ID at the moment it accepts a request,
// before the order has necessarily been constructed.
func NewOrderID() OrderID {
	return OrderID(atomic.AddUint64(&nextOrderID, 1))
}

// Order is a request to trade a symbol. ID and the original Quantity are
// immutable after construction; Remaining decreases monotonically as the
// order is matched, reaching zero on a full fill.
type Order struct {
	ID       OrderID
	Type     OrderType
	Side     Side
	Symbol   string
	Price    decimal.Decimal // worst acceptable price; ignored for Market
	Quantity decimal.Decimal // original size, never mutated after construction

	// Remaining is the live field matching mutates. New orders start with
	// Remaining == Quantity.
	Remaining decimal.Decimal
}

// NewOrder constructs an order and assigns it a fresh process-wide ID. price
// is truncated to at most priceScale decimal places.
func NewOrder(typ OrderType, side Side, symbol string, price, quantity decimal.Decimal) *Order {
	return &Order{
		ID:        NewOrderID(),
		Type:      typ,
		Side:      side,
		Symbol:    symbol,
		Price:     price.Truncate(priceScale),
		Quantity:  quantity,
		Remaining: quantity,
	}
}

// ReduceQuantity subtracts amount from the order's remaining quantity if
// amount does not exceed it; otherwise it is a no-op. Callers in this
// package only ever pass min(taker.Remaining, maker.Remaining), so the
// guard is unreachable in practice — kept as part of the type's contract
// rather than treated as dead code.
func (o *Order) ReduceQuantity(amount decimal.Decimal) {
	if amount.Cmp(o.Remaining) <= 0 {
		o.Remaining = o.Remaining.Sub(amount)
	}
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.Remaining.IsZero()
}
