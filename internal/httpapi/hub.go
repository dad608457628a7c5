package httpapi

import "sync"

// subscription is one connection's buffered view onto a hub's frames.
type subscription struct {
	ch chan []byte
}

// hub fans SSE/websocket frames out to a dynamic set of buffered
// per-connection channels. Unlike engine.Broadcaster — which writes
// directly to each sink under its own lock — a hub never blocks on a slow
// consumer: a full channel just drops the frame for that one connection.
// Server uses one hub per event kind so a single stalled HTTP client can
// never hold up the engine's broadcaster mutex or other connections.
type hub struct {
	mu   sync.RWMutex
	subs map[*subscription]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[*subscription]struct{})}
}

func (h *hub) Subscribe(buffer int) *subscription {
	sub := &subscription{ch: make(chan []byte, buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *hub) Unsubscribe(sub *subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	close(sub.ch)
}

func (h *hub) Broadcast(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- frame:
		default:
		}
	}
}

// fanInSink is an engine.Sink that forwards every frame it receives into a
// hub. The payload is copied defensively before fan-out since each
// subscriber channel retains its own reference to it.
type fanInSink struct {
	hub *hub
}

func (s fanInSink) Write(p []byte) (int, error) {
	frame := make([]byte, len(p))
	copy(frame, p)
	s.hub.Broadcast(frame)
	return len(p), nil
}
