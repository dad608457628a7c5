// Command matchengine brings up the HTTP transport around the matching
// core: load config, build a logger, wire Prometheus, and serve.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"matchcore/internal/config"
	"matchcore/internal/engine"
	"matchcore/internal/httpapi"
	"matchcore/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log, err := logging.New(level, cfg.DevLogs)
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)

	eng := engine.NewMatchingEngine(engine.WithMetrics(metrics), engine.WithLogger(log))
	for _, symbol := range cfg.Symbols {
		log.Infow("symbol configured", "symbol", symbol)
	}

	srv := httpapi.NewServer(eng,
		httpapi.WithCORSOrigin(cfg.CORSOrigin),
		httpapi.WithDepthLevels(cfg.DepthLevels),
		httpapi.WithLogger(log),
		httpapi.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	log.Infow("listening", "addr", cfg.ListenAddr, "symbols", cfg.Symbols)
	return http.ListenAndServe(cfg.ListenAddr, srv.Routes())
}
