// Package engine implements the per-symbol matching core: order books with
// price-time priority, a multi-symbol controller, and a broadcaster for the
// derived trade and depth event streams. Nothing in this package imports
// net/http — transports live in internal/httpapi and only ever call in.
package engine

import "github.com/shopspring/decimal"

// Side is the direction of an order.
type Side int

const (
	// Buy is a bid order.
	Buy Side = iota
	// Sell is an ask order.
	Sell
)

// String renders the side the way it appears on the wire ("buy"/"sell").
func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType is the execution style and time-in-force of an order.
type OrderType int

const (
	// Market orders consume available liquidity ignoring price and never rest.
	Market OrderType = iota
	// Limit orders match up to their limit price and rest any residual.
	Limit
	// IOC (Immediate-Or-Cancel) matches what it can at its limit and discards the rest.
	IOC
	// FOK (Fill-Or-Kill) fully fills immediately or produces no trades at all.
	FOK
)

// String renders the order type the way it appears on the wire.
func (t OrderType) String() string {
	switch t {
	case Market:
		return "market"
	case Limit:
		return "limit"
	case IOC:
		return "ioc"
	case FOK:
		return "fok"
	default:
		return "unknown"
	}
}

// RestsOnBook reports whether an order of this type can be left on the book
// with residual quantity after matching. Only Limit orders do.
func (t OrderType) RestsOnBook() bool {
	return t == Limit
}

// OrderID uniquely identifies an order, process-wide, in assignment order.
type OrderID uint64

// TradeID uniquely identifies a trade, process-wide, in assignment order.
type TradeID uint64

// BBO is the best bid and offer of a book. It is only meaningful when both
// sides of the book are non-empty; callers get it from OrderBook.BestBidAsk,
// which returns ok=false otherwise.
type BBO struct {
	BestBid decimal.Decimal
	BestAsk decimal.Decimal
}

// DepthLevel is one aggregated price level as returned by OrderBook.Depth.
type DepthLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}
