package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// wsSink serializes writes to a *websocket.Conn; gorilla/websocket
// connections are not safe for concurrent writes, and handleConsole writes
// from both the depth fan-out goroutine and the order-ack read loop.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

type consoleMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (s *wsSink) writeEnvelope(msgType string, data any) error {
	body, err := json.Marshal(consoleMessage{Type: msgType, Data: data})
	if err != nil {
		return err
	}
	_, err = s.Write(body)
	return err
}

// handleConsole implements GET /ws/console: a duplex admin connection that
// multiplexes order submission acks and live depth pushes over a single
// websocket. Depth frames are relayed from the server's depthHub on their
// own goroutine so a client that stops reading never blocks order
// processing; the read loop below only ever handles incoming orders.
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sink := &wsSink{conn: conn}
	sub := s.depthHub.Subscribe(32)
	defer s.depthHub.Unsubscribe(sub)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case frame, ok := <-sub.ch:
				if !ok {
					return
				}
				if err := sink.writeEnvelope("depth", json.RawMessage(stripSSEPrefix(frame))); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		var req orderRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		order, err := s.buildOrder(req)
		if err != nil {
			_ = sink.writeEnvelope("error", orderErrorResponse{Status: "Error", Message: err.Error()})
			continue
		}

		s.engine.Ingest(order)
		_ = sink.writeEnvelope("ack", orderAcceptedResponse{Status: "Order Received", OrderID: order.ID})
	}
}

// stripSSEPrefix strips the "data: " ... "\n\n" SSE framing a hub frame
// carries, since the console transport re-wraps the same payload in its
// own envelope rather than the SSE wire format.
func stripSSEPrefix(frame []byte) []byte {
	const prefix = "data: "
	const suffix = "\n\n"
	if len(frame) >= len(prefix)+len(suffix) {
		frame = frame[len(prefix) : len(frame)-len(suffix)]
	}
	return frame
}
