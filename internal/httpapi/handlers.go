package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"matchcore/internal/engine"
)

type orderRequest struct {
	Symbol    string          `json:"symbol"`
	OrderType string          `json:"order_type"`
	Side      string          `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

type orderAcceptedResponse struct {
	Status  string        `json:"status"`
	OrderID engine.OrderID `json:"order_id"`
}

type orderErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// handleOrder implements POST /order. Validation happens entirely before
// the engine is ever called; a parse or validation failure never reaches
// internal/engine.
func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeOrderError(w, wrapValidationError(err, "decode request body"))
		return
	}

	order, err := s.buildOrder(req)
	if err != nil {
		s.writeOrderError(w, err)
		return
	}

	s.engine.Ingest(order)
	writeJSON(w, http.StatusOK, orderAcceptedResponse{Status: "Order Received", OrderID: order.ID})
}

func (s *Server) buildOrder(req orderRequest) (*engine.Order, error) {
	if strings.TrimSpace(req.Symbol) == "" {
		return nil, newValidationError("symbol must not be empty")
	}

	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}
	orderType, err := parseOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}
	if req.Quantity.Sign() <= 0 {
		return nil, newValidationError("quantity must be greater than zero")
	}

	var price decimal.Decimal
	if orderType != engine.Market {
		if req.Price == nil {
			return nil, newValidationError("price is required for limit, ioc, and fok orders")
		}
		if req.Price.Sign() < 0 {
			return nil, newValidationError("price must not be negative")
		}
		price = *req.Price
	}

	return engine.NewOrder(orderType, side, req.Symbol, price, req.Quantity), nil
}

func parseSide(value string) (engine.Side, error) {
	switch strings.ToLower(value) {
	case "buy":
		return engine.Buy, nil
	case "sell":
		return engine.Sell, nil
	default:
		return 0, newValidationError("side must be \"buy\" or \"sell\"")
	}
}

func parseOrderType(value string) (engine.OrderType, error) {
	switch strings.ToLower(value) {
	case "market":
		return engine.Market, nil
	case "limit":
		return engine.Limit, nil
	case "ioc":
		return engine.IOC, nil
	case "fok":
		return engine.FOK, nil
	default:
		return 0, newValidationError("order_type must be one of market, limit, ioc, fok")
	}
}

func (s *Server) writeOrderError(w http.ResponseWriter, err error) {
	if !isValidationError(err) {
		s.logf(err, "unexpected order-handling error")
	}
	writeJSON(w, http.StatusBadRequest, orderErrorResponse{Status: "Error", Message: err.Error()})
}

// handleTradesStream implements GET /ws/trades: an SSE stream of one frame
// per executed trade, named for parity with the source endpoint though it
// is plain HTTP, not a websocket upgrade.
func (s *Server) handleTradesStream(w http.ResponseWriter, r *http.Request) {
	s.streamHub(w, r, s.tradeHub)
}

// handleMarketDataStream implements GET /ws/marketdata: an SSE stream of
// depth snapshots, one frame per visible top-of-book change.
func (s *Server) handleMarketDataStream(w http.ResponseWriter, r *http.Request) {
	s.streamHub(w, r, s.depthHub)
}

func (s *Server) streamHub(w http.ResponseWriter, r *http.Request, h *hub) {
	sink, ok := newSSESink(w)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	writeSSEHeaders(w)

	sub := h.Subscribe(32)
	defer h.Unsubscribe(sub)

	for {
		select {
		case frame, ok := <-sub.ch:
			if !ok {
				return
			}
			if _, err := sink.Write(frame); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

type bookResponse struct {
	Symbol  string              `json:"symbol"`
	BestBid *decimal.Decimal    `json:"best_bid"`
	BestAsk *decimal.Decimal    `json:"best_ask"`
	Bids    []engine.DepthLevel `json:"bids"`
	Asks    []engine.DepthLevel `json:"asks"`
}

// handleBook implements GET /book?symbol=...: a one-shot snapshot for
// clients that don't want a live stream.
func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeJSON(w, http.StatusBadRequest, orderErrorResponse{Status: "Error", Message: "symbol is required"})
		return
	}

	bbo, ok, bids, asks := s.engine.Snapshot(symbol, s.depthLevels)
	resp := bookResponse{Symbol: symbol, Bids: bids, Asks: asks}
	if ok {
		resp.BestBid = &bbo.BestBid
		resp.BestAsk = &bbo.BestAsk
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealthz is a liveness probe: if the process can answer HTTP at
// all, it is healthy. No dependency checks, since the engine has no
// external dependencies to be unhealthy about.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
