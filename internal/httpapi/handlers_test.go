package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"matchcore/internal/engine"
)

func newTestServer() *Server {
	return NewServer(engine.NewMatchingEngine())
}

func postOrder(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/order", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHandleOrderAcceptsWellFormedLimitOrder(t *testing.T) {
	s := newTestServer()
	rec := postOrder(t, s, `{"symbol":"BTCUSD","order_type":"limit","side":"buy","quantity":1,"price":100}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp orderAcceptedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.Status != "Order Received" || resp.OrderID == 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleOrderAcceptsMarketOrderWithoutPrice(t *testing.T) {
	s := newTestServer()
	rec := postOrder(t, s, `{"symbol":"BTCUSD","order_type":"market","side":"sell","quantity":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleOrderRejectsMissingPriceForLimit(t *testing.T) {
	s := newTestServer()
	rec := postOrder(t, s, `{"symbol":"BTCUSD","order_type":"limit","side":"buy","quantity":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp orderErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.Status != "Error" {
		t.Fatalf("expected Error status, got %+v", resp)
	}
}

func TestHandleOrderRejectsUnknownSide(t *testing.T) {
	s := newTestServer()
	rec := postOrder(t, s, `{"symbol":"BTCUSD","order_type":"limit","side":"sideways","quantity":1,"price":100}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleOrderRejectsZeroQuantity(t *testing.T) {
	s := newTestServer()
	rec := postOrder(t, s, `{"symbol":"BTCUSD","order_type":"limit","side":"buy","quantity":0,"price":100}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleOrderRejectsMalformedJSON(t *testing.T) {
	s := newTestServer()
	rec := postOrder(t, s, `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleBookReturnsSnapshot(t *testing.T) {
	s := newTestServer()
	postOrder(t, s, `{"symbol":"BTCUSD","order_type":"limit","side":"buy","quantity":1,"price":100}`)
	postOrder(t, s, `{"symbol":"BTCUSD","order_type":"limit","side":"sell","quantity":1,"price":101}`)

	req := httptest.NewRequest(http.MethodGet, "/book?symbol=BTCUSD", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp bookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.BestBid == nil || !resp.BestBid.Equal(resp.Bids[0].Price) {
		t.Fatalf("unexpected snapshot: %+v", resp)
	}
}

func TestHandleBookRequiresSymbol(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/book", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleHealthz(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCORSHeaderNotAppliedToHealthz(t *testing.T) {
	s := NewServer(engine.NewMatchingEngine(), WithCORSOrigin("https://example.com"))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("healthz is not routed through withCORS, expected no header, got %q", got)
	}
}
