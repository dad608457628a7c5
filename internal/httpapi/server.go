// Package httpapi is the ambient HTTP transport around internal/engine. It
// owns request validation, wire framing, and connection bookkeeping; the
// core package it wraps never imports net/http and never returns an error.
package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"matchcore/internal/engine"
)

// Server wires a MatchingEngine to a set of HTTP routes. Two long-lived
// fan-in sinks subscribe once to the engine's broadcaster and forward
// every frame into a per-kind hub; individual connections subscribe to
// those hubs instead of the engine directly, so one slow client can never
// stall the broadcaster's lock or another connection's delivery.
type Server struct {
	engine      *engine.MatchingEngine
	log         *zap.SugaredLogger
	corsOrigin  string
	depthLevels int
	upgrader    websocket.Upgrader
	metricsFn   http.Handler

	tradeHub *hub
	depthHub *hub
}

// Option configures a Server at construction.
type Option func(*Server)

// WithCORSOrigin sets the Access-Control-Allow-Origin value applied to
// every route except /healthz and /metrics. Defaults to "*".
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

// WithDepthLevels sets how many price levels GET /book returns per side.
// Defaults to engine.DepthWindow.
func WithDepthLevels(n int) Option {
	return func(s *Server) { s.depthLevels = n }
}

// WithLogger attaches a structured logger for request-level diagnostics.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Server) { s.log = log }
}

// WithMetricsHandler installs the Prometheus scrape handler served at
// GET /metrics, typically promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsFn = h }
}

// NewServer builds a Server around eng. With no options, CORS is wide open
// and GET /metrics responds 404 (an engine-less deployment may not want
// Prometheus wired at all).
func NewServer(eng *engine.MatchingEngine, opts ...Option) *Server {
	s := &Server{
		engine:      eng,
		corsOrigin:  "*",
		depthLevels: engine.DepthWindow,
		upgrader:    websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		tradeHub:    newHub(),
		depthHub:    newHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	eng.SubscribeTrades(fanInSink{hub: s.tradeHub})
	eng.SubscribeDepth(fanInSink{hub: s.depthHub})
	return s
}

// Routes builds the top-level mux: one mux, CORS applied uniformly to every
// route except the liveness probe and the metrics endpoint, no per-route
// authentication.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/order", s.withCORS(http.HandlerFunc(s.handleOrder)))
	mux.Handle("/ws/trades", s.withCORS(http.HandlerFunc(s.handleTradesStream)))
	mux.Handle("/ws/marketdata", s.withCORS(http.HandlerFunc(s.handleMarketDataStream)))
	mux.Handle("/book", s.withCORS(http.HandlerFunc(s.handleBook)))
	mux.Handle("/healthz", http.HandlerFunc(s.handleHealthz))
	mux.Handle("/ws/console", s.withCORS(http.HandlerFunc(s.handleConsole)))
	if s.metricsFn != nil {
		mux.Handle("/metrics", s.metricsFn)
	}
	return mux
}

func (s *Server) logf(err error, msg string, keysAndValues ...any) {
	if s.log == nil {
		return
	}
	s.log.Errorw(msg, append(keysAndValues, "error", err.Error())...)
}
