package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/party-bet/internal/game/catalog"
	"github.com/radieske/party-bet/internal/game/domain"
	"github.com/radieske/party-bet/internal/game/engine"
	httpapi "github.com/radieske/party-bet/internal/game/http"
	"github.com/radieske/party-bet/internal/game/outcome"
	"github.com/radieske/party-bet/internal/game/publisher"
	"github.com/radieske/party-bet/internal/game/round"
	"github.com/radieske/party-bet/internal/game/scores"
	"github.com/radieske/party-bet/internal/game/ws"
	sharedcache "github.com/radieske/party-bet/internal/shared/cache"
	"github.com/radieske/party-bet/internal/shared/config"
	"github.com/radieske/party-bet/internal/shared/kafka"
	"github.com/radieske/party-bet/internal/shared/logger"
	"github.com/radieske/party-bet/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startingBalance, err := decimal.NewFromString(cfg.StartingBalance)
	if err != nil || !startingBalance.IsPositive() {
		log.Fatal("invalid STARTING_BALANCE", zap.String("value", cfg.StartingBalance), zap.Error(err))
	}

	// Métricas Prometheus do jogo
	roundsStarted := prometheus.NewCounter(prometheus.CounterOpts{Name: "party_bet_rounds_started_total", Help: "rodadas iniciadas"})
	roundsResolved := prometheus.NewCounter(prometheus.CounterOpts{Name: "party_bet_rounds_resolved_total", Help: "rodadas resolvidas"})
	roundsPreempted := prometheus.NewCounter(prometheus.CounterOpts{Name: "party_bet_rounds_preempted_total", Help: "rodadas abandonadas pelo gatilho seguinte"})
	betsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "party_bet_bets_total", Help: "apostas finalizadas por tipo"}, []string{"kind"})
	persistErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "party_bet_score_persist_errors_total", Help: "falhas de persistência do placar"}, []string{"op"})
	publishBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "party_bet_round_publish_total", Help: "publicações round_resolved por resultado"}, []string{"result"})
	httpBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "party_bet_http_requests_total", Help: "requisições por rota e status"}, []string{"route", "status"})
	wsConnections := prometheus.NewGauge(prometheus.GaugeOpts{Name: "party_bet_ws_connections", Help: "clientes WebSocket conectados"})
	wsSent := prometheus.NewCounter(prometheus.CounterOpts{Name: "party_bet_ws_messages_sent_total", Help: "mensagens WS enviadas"})
	broadcastErrors := prometheus.NewCounter(prometheus.CounterOpts{Name: "party_bet_broadcast_errors_total", Help: "falhas no broadcast de snapshots"})
	prometheus.MustRegister(roundsStarted, roundsResolved, roundsPreempted, betsBy, persistErrors,
		publishBy, httpBy, wsConnections, wsSent, broadcastErrors)

	// Redis é opcional: sem ele o placar fica em memória e o broadcast é local
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = sharedcache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.Warn("redis unavailable, continuing in memory", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("redis connected")
		}
	}

	var blob scores.BlobStore
	if redisClient != nil {
		blob = scores.NewRedisBlob(redisClient, cfg.ScoresKey)
	}
	store := scores.NewStore(ctx, blob, log,
		scores.WithPersistErrorHook(func(op string) { persistErrors.WithLabelValues(op).Inc() }))

	// Catálogo: estático + eventos gerados quando a fonte estiver configurada
	cat := catalog.New(catalog.Static()...)
	if cfg.EventSourceURL != "" {
		gctx, gcancel := context.WithTimeout(ctx, 10*time.Second)
		added := catalog.Extend(gctx, cat, catalog.NewHTTPSource(cfg.EventSourceURL), cfg.EventSourceCount, log)
		gcancel()
		log.Info("catalog loaded", zap.Int("events", cat.Len()), zap.Int("generated", added))
	}

	// Kafka é opcional: sem brokers as rodadas não são publicadas
	var pub *publisher.RoundPublisher
	if len(kafka.Brokers(cfg.KafkaBrokers)) > 0 {
		writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundResolved)
		defer writer.Close()
		pub = publisher.NewRoundPublisher(writer, log, 64)
		pub.OnPublished = func() { publishBy.WithLabelValues("ok").Inc() }
		pub.OnDropped = func() { publishBy.WithLabelValues("dropped").Inc() }
		pub.OnError = func(stage string) { publishBy.WithLabelValues(stage).Inc() }
		go func() { _ = pub.Run(ctx) }()
		log.Info("kafka writer ready", zap.String("topic", cfg.TopicRoundResolved))
	}

	hooks := round.Hooks{
		OnRoundStarted:   func(int, domain.Event) { roundsStarted.Inc() },
		OnRoundPreempted: func(int, int) { roundsPreempted.Inc() },
		OnBetFinalized: func(pb domain.PlayerBet) {
			kind := "placed"
			if pb.IsSkip() {
				kind = "skipped"
			}
			betsBy.WithLabelValues(kind).Inc()
		},
		OnRoundResolved: func(sum round.Summary) {
			roundsResolved.Inc()
			if pub != nil {
				pub.Enqueue(sum)
			}
		},
	}

	gameCfg := round.Config{
		StartingBalance: startingBalance,
		RoundOffsets:    cfg.RoundOffsets,
		ResultDelay:     cfg.ResultDelay,
	}
	sched := round.New(gameCfg, cat, outcome.NewResolver(nil), store, log, hooks)
	eng := engine.New(sched, clockwork.NewRealClock(), cfg.TickResolution, log)

	// WebSocket: snapshots vão direto para o hub ou passam pelo Redis Pub/Sub
	hub := ws.NewHub(func(r *http.Request) bool { return true }, log)
	hub.OnConnect = wsConnections.Inc
	hub.OnDisconnect = wsConnections.Dec
	hub.OnSent = wsSent.Inc

	var sink ws.Sink = hub
	if redisClient != nil {
		sink = ws.NewRedisSink(redisClient, cfg.RedisViewChannel)
		ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisViewChannel, hub, log)
	}
	notifier := ws.NewNotifier(sink, log)
	notifier.OnError = broadcastErrors.Inc
	eng.OnChange = notifier.Notify
	go func() { _ = notifier.Run(ctx) }()

	// Servidor de métricas e health
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	})
	log.Info("metrics/health listening", zap.String("addr", msrv.Addr))

	api := &httpapi.API{
		Log:    log,
		Game:   eng,
		Events: cat,
		WS:     hub.HandleWS,
		OnRequest: func(route string, status int) {
			httpBy.WithLabelValues(route, strconv.Itoa(status)).Inc()
		},
	}
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("http listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", zap.Error(err))
			cancel()
		}
	}()

	if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("engine stopped with error", zap.Error(err))
	}

	// shutdown gracioso
	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	_ = srv.Shutdown(sctx)
	_ = msrv.Shutdown(sctx)
	log.Info("party-bet stopped")
}
