package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/party-bet/internal/event-source-simulator/generator"
	"github.com/radieske/party-bet/internal/shared/config"
	"github.com/radieske/party-bet/internal/shared/logger"
	"github.com/radieske/party-bet/internal/shared/metrics"
)

// Métricas Prometheus do simulador
var eventsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "event_source_events_generated_total",
	Help: "Eventos gerados por categoria",
}, []string{"category"})

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(eventsGenerated)

	gen := generator.New(nil)
	gen.OnGenerated = func(category string) { eventsGenerated.WithLabelValues(category).Inc() }

	// ==== MUX DE MÉTRICAS (/healthz, /metrics)
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, nil)
	log.Info("event source simulator (metrics) running",
		zap.String("addr", msrv.Addr),
		zap.String("paths", "/healthz,/metrics"),
	)

	// ==== ROUTER PÚBLICO: /events/generate
	r := chi.NewRouter()
	r.Get("/events/generate", gen.Handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("event source simulator (public) running",
			zap.String("addr", srv.Addr),
			zap.String("paths", "/events/generate"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("public server error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	_ = srv.Shutdown(sctx)
	_ = msrv.Shutdown(sctx)
	log.Info("event source simulator stopped")
}
