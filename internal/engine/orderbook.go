package engine

import "github.com/shopspring/decimal"

// ProcessResult bundles what a single ProcessOrder call produced: the
// trades executed, and the top-of-book depth immediately before and after
// the order was applied. MatchingEngine uses the pre/post pair to decide
// whether a depth event is worth broadcasting; bundling them here is what
// makes that comparison atomic with respect to other ingests on the same
// symbol (see OrderBook's actor loop).
type ProcessResult struct {
	Trades   []*Trade
	PreBids  []DepthLevel
	PreAsks  []DepthLevel
	PostBids []DepthLevel
	PostAsks []DepthLevel
}

type depthQuery struct {
	side Side
	n    int
}

// bookRequest is the single message type the order book's actor goroutine
// understands. Exactly one field identifies the request kind.
type bookRequest struct {
	order   *Order
	respCh  chan ProcessResult
	bboCh   chan *BBO
	depth   *depthQuery
	depthCh chan []DepthLevel
	stopCh  chan struct{}
}

// DepthWindow is how many top-of-book levels the engine captures for
// change detection and broadcasts in a depth event.
const DepthWindow = 10

// OrderBook is the price-time-priority book for a single symbol. All
// mutation happens on a single goroutine (run), so ProcessOrder calls
// against the same book are fully serialized and a request's pre/post
// depth images are consistent with each other even under concurrent
// ingest from other goroutines.
type OrderBook struct {
	Symbol string

	bids *bookSide
	asks *bookSide

	reqCh chan bookRequest
}

// NewOrderBook creates an empty book for symbol and starts its actor loop.
func NewOrderBook(symbol string) *OrderBook {
	ob := &OrderBook{
		Symbol: symbol,
		bids:   newBookSide(true),
		asks:   newBookSide(false),
		reqCh:  make(chan bookRequest),
	}
	go ob.run()
	return ob
}

func (ob *OrderBook) run() {
	for req := range ob.reqCh {
		switch {
		case req.stopCh != nil:
			close(req.stopCh)
			return
		case req.order != nil:
			preBids := ob.bids.depth(DepthWindow)
			preAsks := ob.asks.depth(DepthWindow)
			trades := ob.processOrder(req.order)
			req.respCh <- ProcessResult{
				Trades:   trades,
				PreBids:  preBids,
				PreAsks:  preAsks,
				PostBids: ob.bids.depth(DepthWindow),
				PostAsks: ob.asks.depth(DepthWindow),
			}
		case req.bboCh != nil:
			req.bboCh <- ob.bestBidAsk()
		case req.depthCh != nil:
			req.depthCh <- ob.sideFor(req.depth.side).depth(req.depth.n)
		}
	}
}

// ProcessOrder submits order to the book's actor goroutine and blocks for
// the result. It is the book's only mutating entry point.
func (ob *OrderBook) ProcessOrder(order *Order) ProcessResult {
	resp := make(chan ProcessResult, 1)
	ob.reqCh <- bookRequest{order: order, respCh: resp}
	return <-resp
}

// BestBidAsk returns the current best bid/ask, or ok=false if either side
// of the book is empty.
func (ob *OrderBook) BestBidAsk() (BBO, bool) {
	ch := make(chan *BBO, 1)
	ob.reqCh <- bookRequest{bboCh: ch}
	bbo := <-ch
	if bbo == nil {
		return BBO{}, false
	}
	return *bbo, true
}

// Depth returns up to n aggregated price levels for side, best price first.
func (ob *OrderBook) Depth(n int, side Side) []DepthLevel {
	ch := make(chan []DepthLevel, 1)
	ob.reqCh <- bookRequest{depthCh: ch, depth: &depthQuery{side: side, n: n}}
	return <-ch
}

// Stop terminates the book's actor goroutine. The book must not be used
// afterward.
func (ob *OrderBook) Stop() {
	done := make(chan struct{})
	ob.reqCh <- bookRequest{stopCh: done}
	<-done
}

func (ob *OrderBook) sideFor(side Side) *bookSide {
	if side == Buy {
		return ob.bids
	}
	return ob.asks
}

func (ob *OrderBook) bestBidAsk() *BBO {
	bestBidLvl := ob.bids.best()
	bestAskLvl := ob.asks.best()
	if bestBidLvl == nil || bestAskLvl == nil {
		return nil
	}
	return &BBO{BestBid: bestBidLvl.price, BestAsk: bestAskLvl.price}
}

// processOrder runs the price-time-priority matching algorithm. It must
// only ever be called from the actor goroutine (run).
func (ob *OrderBook) processOrder(order *Order) []*Trade {
	if order.Type == FOK && !ob.canFill(order) {
		return nil
	}

	var trades []*Trade
	opposite := ob.sideFor(order.Side.Opposite())
	resting := ob.sideFor(order.Side)

	for order.Remaining.Sign() > 0 && !opposite.empty() {
		best := opposite.best()
		if crossesLimit(order, best.price) {
			break
		}

		head := best.front()
		tradeQty := minDecimal(order.Remaining, head.Remaining)
		tradePrice := head.Price

		trades = append(trades, newTrade(order.Symbol, head.ID, order.ID, tradePrice, tradeQty, order.Side))

		head.ReduceQuantity(tradeQty)
		order.ReduceQuantity(tradeQty)
		best.accountFill(tradeQty)

		if head.IsFilled() {
			best.popFront(head)
			opposite.dropIfEmpty(best)
		}
	}

	if order.Remaining.Sign() > 0 && order.Type.RestsOnBook() {
		resting.rest(order)
	}

	return trades
}

// crossesLimit reports whether a Limit/IOC/FOK taker's price disqualifies
// the best opposite level from matching. Market orders never stop on
// price.
func crossesLimit(taker *Order, bestOppositePrice decimal.Decimal) bool {
	if taker.Type == Market {
		return false
	}
	if taker.Side == Buy {
		return taker.Price.Cmp(bestOppositePrice) < 0
	}
	return taker.Price.Cmp(bestOppositePrice) > 0
}

// canFill is the FOK pre-check: the cumulative quantity available on the
// eligible opposite side, subject to the limit price if any, must reach
// the order's full quantity or the order is rejected with zero trades and
// zero state change. The sum is order-independent, so this walks the
// level index directly rather than draining a priority order.
func (ob *OrderBook) canFill(order *Order) bool {
	opposite := ob.sideFor(order.Side.Opposite())
	needed := order.Remaining
	available := decimal.Zero

	for _, lvl := range opposite.byPrice {
		if crossesLimit(order, lvl.price) {
			continue
		}
		available = available.Add(lvl.total)
	}
	return available.Cmp(needed) >= 0
}

func minDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.Cmp(b) < 0 {
		return a
	}
	return b
}
