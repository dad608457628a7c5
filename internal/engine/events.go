package engine

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// jsonNumber is a decimal.Decimal that marshals as a bare JSON number
// literal instead of decimal.Decimal's default quoted string.
type jsonNumber struct{ decimal.Decimal }

func (n jsonNumber) MarshalJSON() ([]byte, error) { return []byte(n.String()), nil }

// TradeEvent is the wire schema for a single executed trade. Price and
// Quantity are decimal-backed rather than float64 so the JSON number they
// marshal to never suffers binary floating-point drift, while still
// serializing as a bare numeric literal rather than a quoted string.
type TradeEvent struct {
	Type          string     `json:"type"`
	TradeID       TradeID    `json:"trade_id"`
	Symbol        string     `json:"symbol"`
	Price         jsonNumber `json:"price"`
	Quantity      jsonNumber `json:"quantity"`
	AggressorSide string     `json:"aggressor_side"`
	MakerOrderID  OrderID    `json:"maker_order_id"`
	TakerOrderID  OrderID    `json:"taker_order_id"`
}

func newTradeEvent(t *Trade) TradeEvent {
	return TradeEvent{
		Type:          "trade",
		TradeID:       t.ID,
		Symbol:        t.Symbol,
		Price:         jsonNumber{t.Price},
		Quantity:      jsonNumber{t.Quantity},
		AggressorSide: t.AggressorSide.String(),
		MakerOrderID:  t.MakerOrderID,
		TakerOrderID:  t.TakerOrderID,
	}
}

// depthPair is one [price, quantity] entry as it is serialized over the
// wire as decimal strings, to keep consumers away from float-precision
// drift.
type depthPair [2]string

func pairsFromLevels(levels []DepthLevel) []depthPair {
	out := make([]depthPair, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, depthPair{lvl.Price.String(), lvl.Quantity.String()})
	}
	return out
}

// DepthEvent is the wire schema for a top-of-book snapshot. BestBid/BestAsk
// are numeric-or-null at the top level; the bids/asks arrays are
// decimal-string pairs, matching the source convention for serialized
// depth levels.
type DepthEvent struct {
	Type    string      `json:"type"`
	Symbol  string      `json:"symbol"`
	BestBid *jsonNumber `json:"best_bid"`
	BestAsk *jsonNumber `json:"best_ask"`
	Bids    []depthPair `json:"bids"`
	Asks    []depthPair `json:"asks"`
}

func newDepthEvent(symbol string, bbo *BBO, bids, asks []DepthLevel) DepthEvent {
	ev := DepthEvent{
		Type:   "l2update",
		Symbol: symbol,
		Bids:   pairsFromLevels(bids),
		Asks:   pairsFromLevels(asks),
	}
	if bbo != nil {
		bid := jsonNumber{bbo.BestBid}
		ask := jsonNumber{bbo.BestAsk}
		ev.BestBid = &bid
		ev.BestAsk = &ask
	}
	return ev
}

// depthSignature is the canonical string form of a side's top-of-book used
// for change detection. It is deliberately independent of
// json.Marshal's own key ordering quirks: two depth snapshots with the same
// visible prices and quantities, in the same priority order, always
// produce the same signature, and any visible difference — a new level, a
// removed level, or a change in aggregate quantity at an existing level —
// always produces a different one.
func depthSignature(levels []DepthLevel) string {
	var b strings.Builder
	for i, lvl := range levels {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(lvl.Price.String())
		b.WriteByte(':')
		b.WriteString(lvl.Quantity.String())
	}
	return b.String()
}

// sseFrame wraps a JSON-encodable event in the Server-Sent-Events framing
// the transport layer writes verbatim: "data: " + json + "\n\n".
func sseFrame(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+8)
	out = append(out, "data: "...)
	out = append(out, body...)
	out = append(out, '\n', '\n')
	return out, nil
}
