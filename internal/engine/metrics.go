package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a small Prometheus registration grounded on luxfi-dex's
// pkg/metrics/lux_metrics.go: a handful of named counters/histograms
// created once and passed around by value-sized pointer, rather than a
// package-level global registry. Engine and Broadcaster call into it
// through plain closures so neither has to import prometheus directly in
// its hot path logic.
type Metrics struct {
	ordersIngested  *prometheus.CounterVec
	tradesExecuted  *prometheus.CounterVec
	broadcastEvents *prometheus.CounterVec
	writeErrors     *prometheus.CounterVec
	matchLatency    prometheus.Histogram
	activeSymbols   prometheus.Gauge
}

// NewMetrics registers the engine's metrics with reg and returns the
// handle. Passing a fresh prometheus.NewRegistry() keeps tests isolated
// from prometheus.DefaultRegisterer's global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ordersIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "orders_ingested_total",
			Help:      "Total number of orders accepted by Ingest, by symbol, type and side.",
		}, []string{"symbol", "type", "side"}),
		tradesExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "trades_total",
			Help:      "Total number of trades executed, by symbol.",
		}, []string{"symbol"}),
		broadcastEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "broadcast_events_total",
			Help:      "Total number of broadcast fan-outs, by channel.",
		}, []string{"channel"}),
		writeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchcore",
			Name:      "broadcast_write_errors_total",
			Help:      "Total number of per-sink write failures during broadcast, by channel.",
		}, []string{"channel"}),
		matchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "matchcore",
			Name:      "match_latency_seconds",
			Help:      "Latency of OrderBook.ProcessOrder round trips.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		activeSymbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "matchcore",
			Name:      "active_symbols",
			Help:      "Number of symbols with a live order book.",
		}),
	}
	reg.MustRegister(m.ordersIngested, m.tradesExecuted, m.broadcastEvents, m.writeErrors, m.matchLatency, m.activeSymbols)
	return m
}

func (m *Metrics) observeIngest(symbol string, typ OrderType, side Side) {
	if m == nil {
		return
	}
	m.ordersIngested.WithLabelValues(symbol, typ.String(), side.String()).Inc()
}

func (m *Metrics) observeTrades(symbol string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.tradesExecuted.WithLabelValues(symbol).Add(float64(n))
}

func (m *Metrics) observeLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.matchLatency.Observe(d.Seconds())
}

func (m *Metrics) setActiveSymbols(n int) {
	if m == nil {
		return
	}
	m.activeSymbols.Set(float64(n))
}

func (m *Metrics) onBroadcast(channel Channel) {
	if m == nil {
		return
	}
	m.broadcastEvents.WithLabelValues(string(channel)).Inc()
}

func (m *Metrics) onWriteErr(channel Channel) {
	if m == nil {
		return
	}
	m.writeErrors.WithLabelValues(string(channel)).Inc()
}
