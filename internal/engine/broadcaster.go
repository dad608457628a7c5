package engine

import (
	"io"
	"sync"

	"github.com/google/uuid"
)

// Channel identifies one of the engine's two derived event streams.
type Channel string

const (
	// TradesChannel carries one frame per executed trade.
	TradesChannel Channel = "trades"
	// DepthChannel carries one frame per ingest that visibly changes the
	// top-of-book depth; ingests that leave it unchanged send nothing.
	DepthChannel Channel = "depth"
)

// SubscriptionHandle identifies a registered sink so it can later be
// removed. Handed back as an opaque UUID rather than a pointer so a
// transport goroutine can safely ask for its own removal without reaching
// back into engine-internal state.
type SubscriptionHandle uuid.UUID

// Sink is an opaque, write-only byte consumer supplied by the transport.
// Its lifetime — including detecting a disconnected client and calling
// Broadcaster.Remove — is the transport's responsibility; the core never
// closes or inspects a sink beyond writing to it.
type Sink = io.Writer

// Broadcaster fans serialized event frames out to a dynamic set of sinks
// per channel, guarded by a single mutex covering both channel lists so it
// can be acquired strictly after any book lock without risking a different
// lock order somewhere else in the package.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[Channel]map[SubscriptionHandle]Sink

	onBroadcast func(channel Channel)
	onWriteErr  func(channel Channel)
}

// NewBroadcaster creates a Broadcaster with empty subscriber lists for
// both channels.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: map[Channel]map[SubscriptionHandle]Sink{
			TradesChannel: make(map[SubscriptionHandle]Sink),
			DepthChannel:  make(map[SubscriptionHandle]Sink),
		},
	}
}

// SetMetricsHooks wires optional callbacks invoked on every broadcast and
// every per-sink write failure. MatchingEngine uses this to drive
// Prometheus counters without the Broadcaster importing a metrics package
// directly.
func (b *Broadcaster) SetMetricsHooks(onBroadcast, onWriteErr func(channel Channel)) {
	b.onBroadcast = onBroadcast
	b.onWriteErr = onWriteErr
}

// Add registers sink on channel and returns a handle for later removal.
func (b *Broadcaster) Add(channel Channel, sink Sink) SubscriptionHandle {
	handle := SubscriptionHandle(uuid.New())
	b.mu.Lock()
	b.subs[channel][handle] = sink
	b.mu.Unlock()
	return handle
}

// Remove unregisters a sink. Removing an unknown or already-removed handle
// is a no-op, not an error.
func (b *Broadcaster) Remove(channel Channel, handle SubscriptionHandle) {
	b.mu.Lock()
	delete(b.subs[channel], handle)
	b.mu.Unlock()
}

// Broadcast writes payload to every sink currently registered on channel.
// The mutex is held for the duration of the fan-out so the subscriber list
// cannot be mutated mid-iteration; a write failure on one sink does not
// abort delivery to the others, and the failing sink is left in place —
// pruning stale sinks is the transport's job.
func (b *Broadcaster) Broadcast(channel Channel, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.onBroadcast != nil {
		b.onBroadcast(channel)
	}
	for _, sink := range b.subs[channel] {
		if _, err := sink.Write(payload); err != nil && b.onWriteErr != nil {
			b.onWriteErr(channel)
		}
	}
}

// Count returns the number of sinks currently registered on channel.
func (b *Broadcaster) Count(channel Channel) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}
