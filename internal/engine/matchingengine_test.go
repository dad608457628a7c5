package engine

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestIngestBroadcastsTradeFrames(t *testing.T) {
	e := NewMatchingEngine()
	var sink bytes.Buffer
	e.SubscribeTrades(&sink)

	e.Ingest(NewOrder(Limit, Sell, "BTCUSD", d("100"), d("5")))
	e.Ingest(NewOrder(Limit, Buy, "BTCUSD", d("100"), d("2")))

	out := sink.String()
	if !strings.HasPrefix(out, "data: ") || !strings.HasSuffix(out, "\n\n") {
		t.Fatalf("expected SSE-framed trade event, got %q", out)
	}
	if !strings.Contains(out, `"type":"trade"`) {
		t.Fatalf("expected a trade event, got %q", out)
	}
}

func TestIngestBroadcastsDepthOnlyWhenVisibleChange(t *testing.T) {
	e := NewMatchingEngine()
	var sink bytes.Buffer
	e.SubscribeDepth(&sink)

	e.Ingest(NewOrder(Limit, Buy, "ETHUSD", d("10"), d("1")))
	if !strings.Contains(sink.String(), `"l2update"`) {
		t.Fatalf("expected a depth event after the book's first order, got %q", sink.String())
	}

	sink.Reset()
	e.Ingest(NewOrder(Limit, Sell, "ETHUSD", d("50"), d("1")))
	if sink.Len() == 0 {
		t.Fatalf("expected a depth event when a new level appears on the other side")
	}

	sink.Reset()
	e.Ingest(NewOrder(FOK, Buy, "ETHUSD", d("50"), d("5")))
	if sink.Len() != 0 {
		t.Fatalf("expected no depth event for a rejected FOK that leaves the book unchanged, got %q", sink.String())
	}
}

func TestIngestReturnsExecutedTrades(t *testing.T) {
	e := NewMatchingEngine()
	e.Ingest(NewOrder(Limit, Sell, "SOLUSD", d("20"), d("3")))
	trades := e.Ingest(NewOrder(Limit, Buy, "SOLUSD", d("20"), d("3")))
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
}

func TestSnapshotReflectsIngestedOrders(t *testing.T) {
	e := NewMatchingEngine()
	if _, ok, _, _ := e.Snapshot("UNKNOWN", 0); ok {
		t.Fatalf("expected ok=false for a never-referenced symbol")
	}

	e.Ingest(NewOrder(Limit, Buy, "ADAUSD", d("1"), d("10")))
	e.Ingest(NewOrder(Limit, Sell, "ADAUSD", d("2"), d("10")))

	bbo, ok, bids, asks := e.Snapshot("ADAUSD", 0)
	if !ok {
		t.Fatalf("expected a valid BBO after two resting orders")
	}
	if !bbo.BestBid.Equal(d("1")) || !bbo.BestAsk.Equal(d("2")) {
		t.Fatalf("unexpected BBO: %+v", bbo)
	}
	if len(bids) != 1 || len(asks) != 1 {
		t.Fatalf("expected one level per side, got bids=%+v asks=%+v", bids, asks)
	}
}

func TestSymbolsTracksCreatedBooks(t *testing.T) {
	e := NewMatchingEngine()
	e.Ingest(NewOrder(Limit, Buy, "BTCUSD", d("1"), d("1")))
	e.Ingest(NewOrder(Limit, Buy, "ETHUSD", d("1"), d("1")))

	symbols := e.Symbols()
	if len(symbols) != 2 {
		t.Fatalf("expected 2 tracked symbols, got %d: %v", len(symbols), symbols)
	}
}

func TestMetricsHookedThroughBroadcaster(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e := NewMatchingEngine(WithMetrics(m))

	e.Ingest(NewOrder(Limit, Sell, "BTCUSD", d("100"), d("1")))
	e.Ingest(NewOrder(Limit, Buy, "BTCUSD", d("100"), d("1")))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatalf("expected registered metrics to be gathered")
	}
	var sawBroadcast bool
	for _, f := range families {
		if f.GetName() == "matchcore_broadcast_events_total" {
			sawBroadcast = true
		}
	}
	if !sawBroadcast {
		t.Fatalf("expected broadcasts to be counted through the broadcaster's metrics hooks")
	}
}

// syncSink is a concurrency-safe io.Writer that records every frame it's
// handed, preserving the delivery order the broadcaster wrote them in.
type syncSink struct {
	mu     sync.Mutex
	frames [][]byte
}

func (s *syncSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := make([]byte, len(p))
	copy(frame, p)
	s.frames = append(s.frames, frame)
	return len(p), nil
}

func (s *syncSink) snapshot() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.frames))
	copy(out, s.frames)
	return out
}

// TestDepthEventBBOMatchesBidsAsksUnderConcurrentIngest guards against the
// depth event's best_bid/best_ask being computed from a book state that has
// moved on from the bids/asks arrays in the same event: every field in a
// single DepthEvent must come from the one ProcessResult that produced it,
// never from a second, independent query against the book.
func TestDepthEventBBOMatchesBidsAsksUnderConcurrentIngest(t *testing.T) {
	e := NewMatchingEngine()
	sink := &syncSink{}
	e.SubscribeDepth(sink)

	const symbol = "BTCUSD"
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			e.Ingest(NewOrder(Limit, Buy, symbol, d("100"), d("1")))
		}(i)
		go func(i int) {
			defer wg.Done()
			e.Ingest(NewOrder(Limit, Sell, symbol, d("101"), d("1")))
		}(i)
	}
	wg.Wait()

	for _, frame := range sink.snapshot() {
		body := strings.TrimSuffix(strings.TrimPrefix(string(frame), "data: "), "\n\n")
		dec := json.NewDecoder(strings.NewReader(body))
		dec.UseNumber()
		var ev struct {
			BestBid *json.Number `json:"best_bid"`
			BestAsk *json.Number `json:"best_ask"`
			Bids    [][2]string  `json:"bids"`
			Asks    [][2]string  `json:"asks"`
		}
		if err := dec.Decode(&ev); err != nil {
			t.Fatalf("failed to decode depth frame: %v", err)
		}

		if len(ev.Bids) > 0 && len(ev.Asks) > 0 {
			if ev.BestBid == nil || ev.BestBid.String() != ev.Bids[0][0] {
				t.Fatalf("best_bid %v does not match bids[0] %v in the same event", ev.BestBid, ev.Bids[0])
			}
			if ev.BestAsk == nil || ev.BestAsk.String() != ev.Asks[0][0] {
				t.Fatalf("best_ask %v does not match asks[0] %v in the same event", ev.BestAsk, ev.Asks[0])
			}
		} else if ev.BestBid != nil || ev.BestAsk != nil {
			t.Fatalf("best_bid/best_ask must be null while either side is empty, got %v/%v", ev.BestBid, ev.BestAsk)
		}
	}
}

func TestUnsubscribeTradesStopsDelivery(t *testing.T) {
	e := NewMatchingEngine()
	var sink bytes.Buffer
	handle := e.SubscribeTrades(&sink)
	e.UnsubscribeTrades(handle)

	e.Ingest(NewOrder(Limit, Sell, "BTCUSD", d("100"), d("1")))
	e.Ingest(NewOrder(Limit, Buy, "BTCUSD", d("100"), d("1")))

	if sink.Len() != 0 {
		t.Fatalf("expected no trade frames after unsubscribing, got %q", sink.String())
	}
}
