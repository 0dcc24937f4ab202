package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/party-bet/pkg/contracts/events"
)

// MessageReader é o subconjunto de *kafka.Reader usado pelo Processor
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// RoundStore persiste uma rodada resolvida
type RoundStore interface {
	SaveRound(ctx context.Context, e events.RoundResolved) error
}

// Processor consome round_resolved do Kafka e grava o histórico no Postgres
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log    *zap.Logger
	Reader MessageReader
	Repo   RoundStore

	OnConsumed func()       // métricas (counter++)
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase

	retryDelay time.Duration
}

// Run inicia o loop principal de consumo até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	delay := p.retryDelay
	if delay == 0 {
		delay = 500 * time.Millisecond
	}
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.RoundResolved
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.MessageID == "" {
			p.Log.Warn("invalid message", zap.Error(err), zap.Int64("offset", m.Offset))
			p.fail("decode")
			continue
		}

		if err := p.Repo.SaveRound(ctx, ev); err != nil {
			p.Log.Warn("db save round failed",
				zap.String("message_id", ev.MessageID),
				zap.Error(err),
			)
			p.fail("db_save")
			continue
		}

		p.Log.Debug("round persisted",
			zap.String("session_id", ev.SessionID),
			zap.Int("round", ev.Round),
		)
		if p.OnPersist != nil {
			p.OnPersist()
		}
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
