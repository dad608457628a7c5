package engine

import (
	"container/heap"
	"container/list"
	"sort"

	"github.com/shopspring/decimal"
)

// level is one price level: a FIFO queue of resting orders sharing a price,
// plus a running sum of their remaining quantity so Depth doesn't have to
// walk the queue on every call.
type level struct {
	price  decimal.Decimal
	orders *list.List // FIFO of *Order
	total  decimal.Decimal
	index  int // position in the owning heap, maintained by heap.Interface
}

func newLevel(price decimal.Decimal) *level {
	return &level{price: price, orders: list.New(), total: decimal.Zero}
}

func (l *level) front() *Order {
	if l.orders.Len() == 0 {
		return nil
	}
	return l.orders.Front().Value.(*Order)
}

// popFront removes the head order from the queue and subtracts whatever
// Remaining it still carries from the running total. A fully filled head
// carries zero, since its traded quantity has already gone through
// accountFill.
func (l *level) popFront(head *Order) {
	l.orders.Remove(l.orders.Front())
	l.total = l.total.Sub(head.Remaining)
}

func (l *level) pushBack(order *Order) {
	l.orders.PushBack(order)
	l.total = l.total.Add(order.Remaining)
}

// accountFill subtracts a traded quantity from the level's running total
// without touching the queue; called for every fill against the head order,
// whether or not it then leaves the queue.
func (l *level) accountFill(qty decimal.Decimal) {
	l.total = l.total.Sub(qty)
}

// levelHeap orders *level by price priority for one side of the book. bids
// want the highest price first, asks the lowest; better sets the comparator
// once at construction instead of branching on every comparison.
type levelHeap struct {
	items  []*level
	better func(a, b decimal.Decimal) bool
}

func newLevelHeap(isBid bool) *levelHeap {
	if isBid {
		return &levelHeap{better: func(a, b decimal.Decimal) bool { return a.Cmp(b) > 0 }}
	}
	return &levelHeap{better: func(a, b decimal.Decimal) bool { return a.Cmp(b) < 0 }}
}

func (h levelHeap) Len() int { return len(h.items) }
func (h levelHeap) Less(i, j int) bool {
	return h.better(h.items[i].price, h.items[j].price)
}
func (h levelHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *levelHeap) Push(x any) {
	lvl := x.(*level)
	lvl.index = len(h.items)
	h.items = append(h.items, lvl)
}

func (h *levelHeap) Pop() any {
	old := h.items
	n := len(old)
	lvl := old[n-1]
	old[n-1] = nil
	lvl.index = -1
	h.items = old[:n-1]
	return lvl
}

func (h *levelHeap) peek() *level {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

// bookSide is one side (bids or asks) of a single symbol's order book: a
// price-ordered heap of levels plus an index for O(1) lookup of the level a
// resting limit order belongs to.
type bookSide struct {
	isBid   bool
	heap    *levelHeap
	byPrice map[string]*level
}

func newBookSide(isBid bool) *bookSide {
	return &bookSide{
		isBid:   isBid,
		heap:    newLevelHeap(isBid),
		byPrice: make(map[string]*level),
	}
}

func (s *bookSide) best() *level {
	return s.heap.peek()
}

func (s *bookSide) empty() bool {
	return s.heap.Len() == 0
}

// rest appends a resting order to its price level, creating the level if
// this is the first order at that price. Keying by order.Price.String()
// coincides with price equality because String() omits trailing zeros, so
// equal prices written at different scales format identically.
func (s *bookSide) rest(order *Order) {
	key := order.Price.String()
	lvl, ok := s.byPrice[key]
	if !ok {
		lvl = newLevel(order.Price)
		s.byPrice[key] = lvl
		heap.Push(s.heap, lvl)
	}
	lvl.pushBack(order)
}

// dropIfEmpty removes a level from the heap and index once its queue has
// drained. Called after consuming the head of the best level.
func (s *bookSide) dropIfEmpty(lvl *level) {
	if lvl.orders.Len() > 0 {
		return
	}
	delete(s.byPrice, lvl.price.String())
	heap.Remove(s.heap, lvl.index)
}

// depth returns up to n levels in priority order (best first), with
// aggregated remaining quantity per level.
func (s *bookSide) depth(n int) []DepthLevel {
	if n <= 0 || len(s.heap.items) == 0 {
		return nil
	}
	// heap.items is only root-ordered, not fully sorted. Snapshot into a
	// scratch slice and sort it independently rather than draining a
	// scratch heap — heap operations mutate each level's .index field via
	// Swap, which would corrupt the live heap since these are the same
	// *level pointers it still owns.
	scratch := make([]*level, len(s.heap.items))
	copy(scratch, s.heap.items)
	better := s.heap.better
	sort.Slice(scratch, func(i, j int) bool { return better(scratch[i].price, scratch[j].price) })

	limit := n
	if limit > len(scratch) {
		limit = len(scratch)
	}
	out := make([]DepthLevel, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, DepthLevel{Price: scratch[i].price, Quantity: scratch[i].total})
	}
	return out
}
