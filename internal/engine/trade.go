package engine

import (
	"sync/atomic"

	"github.com/shopspring/decimal"
)

var nextTradeID uint64

// Trade is an immutable record of one execution between a resting maker
// order and an incoming taker order. Price is always the maker's resting
// price, never the taker's.
type Trade struct {
	ID            TradeID
	Symbol        string
	MakerOrderID  OrderID
	TakerOrderID  OrderID
	Price         decimal.Decimal
	Quantity      decimal.Decimal
	AggressorSide Side
}

// newTrade assigns the next process-wide trade ID and builds the record.
func newTrade(symbol string, maker, taker OrderID, price, quantity decimal.Decimal, aggressor Side) *Trade {
	return &Trade{
		ID:            TradeID(atomic.AddUint64(&nextTradeID, 1)),
		Symbol:        symbol,
		MakerOrderID:  maker,
		TakerOrderID:  taker,
		Price:         price,
		Quantity:      quantity,
		AggressorSide: aggressor,
	}
}
