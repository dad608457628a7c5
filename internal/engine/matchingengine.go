package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// MatchingEngine owns one OrderBook per symbol, routes incoming orders to
// the right book, detects visible depth changes, and drives the
// Broadcaster. It holds no long-term reference to an order once Ingest
// returns: the order is either fully consumed or its residual state has
// been transferred into a book.
type MatchingEngine struct {
	booksMu sync.RWMutex
	books   map[string]*OrderBook

	broadcaster *Broadcaster
	metrics     *Metrics
	log         *zap.SugaredLogger
}

// Option configures a MatchingEngine at construction.
type Option func(*MatchingEngine)

// WithMetrics registers Prometheus instrumentation on the engine.
func WithMetrics(m *Metrics) Option {
	return func(e *MatchingEngine) { e.metrics = m }
}

// WithLogger attaches a structured logger. A nil logger (the default) is
// silently skipped, never logged through.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *MatchingEngine) { e.log = log }
}

// NewMatchingEngine constructs an engine with no books and no subscribers.
func NewMatchingEngine(opts ...Option) *MatchingEngine {
	e := &MatchingEngine{
		books:       make(map[string]*OrderBook),
		broadcaster: NewBroadcaster(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics != nil {
		e.broadcaster.SetMetricsHooks(e.metrics.onBroadcast, e.metrics.onWriteErr)
	}
	return e
}

// bookFor resolves the OrderBook for symbol, creating it on first
// reference. The hot path takes a read lock; the write lock is only taken
// when a symbol is seen for the first time, since the books map is append-
// mostly in steady state.
func (e *MatchingEngine) bookFor(symbol string) *OrderBook {
	e.booksMu.RLock()
	book, ok := e.books[symbol]
	e.booksMu.RUnlock()
	if ok {
		return book
	}

	e.booksMu.Lock()
	defer e.booksMu.Unlock()
	if book, ok := e.books[symbol]; ok {
		return book
	}
	book = NewOrderBook(symbol)
	e.books[symbol] = book
	e.metrics.setActiveSymbols(len(e.books))
	if e.log != nil {
		e.log.Infow("order book created", "symbol", symbol)
	}
	return book
}

// Ingest resolves or creates the book for order.Symbol, runs it through
// matching, and broadcasts the resulting trades and any visible depth
// change. It never returns an error: malformed orders are the transport's
// problem, and an insufficiently-liquid FOK is a successful call that
// simply produces zero trades.
func (e *MatchingEngine) Ingest(order *Order) []*Trade {
	book := e.bookFor(order.Symbol)

	start := time.Now()
	result := book.ProcessOrder(order)
	e.metrics.observeLatency(time.Since(start))
	e.metrics.observeIngest(order.Symbol, order.Type, order.Side)

	if e.log != nil {
		e.log.Debugw("order ingested",
			"symbol", order.Symbol, "order_id", order.ID, "type", order.Type.String(),
			"side", order.Side.String(), "trades", len(result.Trades))
	}

	if len(result.Trades) > 0 {
		e.metrics.observeTrades(order.Symbol, len(result.Trades))
		e.broadcastTrades(result.Trades)
		if e.log != nil {
			for _, t := range result.Trades {
				e.log.Infow("trade executed",
					"trade_id", t.ID, "symbol", t.Symbol, "price", t.Price.String(),
					"quantity", t.Quantity.String(), "maker_order_id", t.MakerOrderID,
					"taker_order_id", t.TakerOrderID)
			}
		}
	}

	if depthSignature(result.PreBids) != depthSignature(result.PostBids) ||
		depthSignature(result.PreAsks) != depthSignature(result.PostAsks) {
		e.broadcastDepth(order.Symbol, result.PostBids, result.PostAsks)
	}

	return result.Trades
}

func (e *MatchingEngine) broadcastTrades(trades []*Trade) {
	for _, t := range trades {
		frame, err := sseFrame(newTradeEvent(t))
		if err != nil {
			continue
		}
		e.broadcaster.Broadcast(TradesChannel, frame)
	}
}

// broadcastDepth builds the depth event from bids/asks alone, since those
// are the same post-ingest snapshot ProcessOrder already captured inside
// its single actor-loop iteration (see ProcessResult). Deriving the BBO
// from a fresh OrderBook.BestBidAsk call here would be a second, independent
// round-trip through the book's actor goroutine, racing against any
// concurrent Ingest on the same symbol and potentially pairing a best_bid/
// best_ask with bids/asks arrays from a different book state.
func (e *MatchingEngine) broadcastDepth(symbol string, bids, asks []DepthLevel) {
	var bboPtr *BBO
	if len(bids) > 0 && len(asks) > 0 {
		bboPtr = &BBO{BestBid: bids[0].Price, BestAsk: asks[0].Price}
	}
	frame, err := sseFrame(newDepthEvent(symbol, bboPtr, bids, asks))
	if err != nil {
		return
	}
	e.broadcaster.Broadcast(DepthChannel, frame)
}

// SubscribeTrades registers sink on the trades channel.
func (e *MatchingEngine) SubscribeTrades(sink Sink) SubscriptionHandle {
	return e.broadcaster.Add(TradesChannel, sink)
}

// SubscribeDepth registers sink on the depth channel.
func (e *MatchingEngine) SubscribeDepth(sink Sink) SubscriptionHandle {
	return e.broadcaster.Add(DepthChannel, sink)
}

// UnsubscribeTrades removes a previously registered trades sink.
func (e *MatchingEngine) UnsubscribeTrades(handle SubscriptionHandle) {
	e.broadcaster.Remove(TradesChannel, handle)
}

// UnsubscribeDepth removes a previously registered depth sink.
func (e *MatchingEngine) UnsubscribeDepth(handle SubscriptionHandle) {
	e.broadcaster.Remove(DepthChannel, handle)
}

// Snapshot returns the BBO and top-depth levels per side for symbol without
// submitting an order, for one-shot query transports. depth <= 0 falls back
// to DepthWindow. Returns ok=false and empty depth if the symbol has never
// been referenced.
func (e *MatchingEngine) Snapshot(symbol string, depth int) (bbo BBO, bidsOk bool, bids, asks []DepthLevel) {
	if depth <= 0 {
		depth = DepthWindow
	}
	e.booksMu.RLock()
	book, ok := e.books[symbol]
	e.booksMu.RUnlock()
	if !ok {
		return BBO{}, false, nil, nil
	}
	bbo, bidsOk = book.BestBidAsk()
	return bbo, bidsOk, book.Depth(depth, Buy), book.Depth(depth, Sell)
}

// Symbols returns the set of symbols with a live book, for diagnostics.
func (e *MatchingEngine) Symbols() []string {
	e.booksMu.RLock()
	defer e.booksMu.RUnlock()
	out := make([]string, 0, len(e.books))
	for symbol := range e.books {
		out = append(out, symbol)
	}
	return out
}
