package engine

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTradeEventMarshalsPriceAsNumber(t *testing.T) {
	trade := newTrade("BTCUSD", 1, 2, d("100.50"), d("4"), Buy)
	ev := newTradeEvent(trade)

	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(body), `"price":"100.5"`) {
		t.Fatalf("price should serialize as a bare number, got %s", body)
	}
	if !strings.Contains(string(body), `"price":100.5`) {
		t.Fatalf("expected numeric price field, got %s", body)
	}
}

func TestDepthEventBidsAreDecimalStringPairs(t *testing.T) {
	ev := newDepthEvent("BTCUSD", &BBO{BestBid: d("10"), BestAsk: d("11")},
		[]DepthLevel{{Price: d("10"), Quantity: d("3")}},
		[]DepthLevel{{Price: d("11"), Quantity: d("2")}})

	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(body), `"bids":[["10","3"]]`) {
		t.Fatalf("expected decimal-string bid pair, got %s", body)
	}
	if !strings.Contains(string(body), `"best_bid":10`) {
		t.Fatalf("expected numeric best_bid, got %s", body)
	}
}

func TestDepthEventNullBestWhenBookOneSided(t *testing.T) {
	ev := newDepthEvent("BTCUSD", nil, []DepthLevel{{Price: d("10"), Quantity: d("1")}}, nil)
	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(body), `"best_bid":null`) || !strings.Contains(string(body), `"best_ask":null`) {
		t.Fatalf("expected null best bid/ask, got %s", body)
	}
}

func TestSSEFrameFraming(t *testing.T) {
	frame, err := sseFrame(map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(frame), "data: ") || !strings.HasSuffix(string(frame), "\n\n") {
		t.Fatalf("unexpected frame: %q", frame)
	}
}

func TestDepthSignatureDiffersOnQuantityChange(t *testing.T) {
	a := depthSignature([]DepthLevel{{Price: d("10"), Quantity: d("1")}})
	b := depthSignature([]DepthLevel{{Price: d("10"), Quantity: d("2")}})
	if a == b {
		t.Fatalf("expected different signatures for different quantities")
	}
}
