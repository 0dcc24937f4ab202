package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/party-bet/internal/history/consumer"
	"github.com/radieske/party-bet/internal/history/repository"
	"github.com/radieske/party-bet/internal/shared/config"
	"github.com/radieske/party-bet/internal/shared/db"
	"github.com/radieske/party-bet/internal/shared/kafka"
	"github.com/radieske/party-bet/internal/shared/logger"
	"github.com/radieske/party-bet/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Inicializa Postgres e garante as tabelas de histórico
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	repo := repository.NewPostgresRepo(pg)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("ensure schema", zap.Error(err))
	}

	// Consumer Kafka (consumer group round-history)
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRoundResolved, "round-history")
	defer reader.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "round_history_messages_consumed_total", Help: "mensagens consumidas"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "round_history_db_writes_total", Help: "rodadas gravadas no banco"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "round_history_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persist, errorsBy)

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Repo:       repo,
		OnConsumed: func() { consumed.Inc() },
		OnPersist:  func() { persist.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		return nil
	})
	defer msrv.Close()
	log.Info("metrics/health listening", zap.String("addr", msrv.Addr))

	log.Info("round-history-worker started", zap.String("topic", cfg.TopicRoundResolved))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("round-history-worker stopped")
}
