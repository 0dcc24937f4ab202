package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/party-bet/internal/game/round"
	"github.com/radieske/party-bet/pkg/contracts/events"
)

// MessageWriter é o subconjunto de *kafka.Writer usado aqui
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// RoundPublisher publica rodadas resolvidas no Kafka fora do loop do jogo.
// Enqueue nunca bloqueia: com a fila cheia a mensagem é descartada e logada.
type RoundPublisher struct {
	w       MessageWriter
	log     *zap.Logger
	queue   chan events.RoundResolved
	timeout time.Duration

	OnPublished func()       // métricas
	OnDropped   func()       // métricas
	OnError     func(string) // métricas por fase
}

func NewRoundPublisher(w MessageWriter, log *zap.Logger, buffer int) *RoundPublisher {
	if buffer <= 0 {
		buffer = 64
	}
	return &RoundPublisher{
		w:       w,
		log:     log,
		queue:   make(chan events.RoundResolved, buffer),
		timeout: 2 * time.Second,
	}
}

// Enqueue serve como hook OnRoundResolved do scheduler
func (p *RoundPublisher) Enqueue(sum round.Summary) {
	ev := ToEvent(sum)
	select {
	case p.queue <- ev:
	default:
		p.log.Warn("round_resolved queue full, dropping",
			zap.String("session_id", ev.SessionID),
			zap.Int("round", ev.Round),
		)
		if p.OnDropped != nil {
			p.OnDropped()
		}
	}
}

// Run envia a fila até o contexto ser cancelado
func (p *RoundPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-p.queue:
			p.publish(ctx, ev)
		}
	}
}

func (p *RoundPublisher) publish(ctx context.Context, ev events.RoundResolved) {
	b, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("round_resolved marshal failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("marshal")
		}
		return
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.SessionID),
		Value: b,
		Time:  ev.ResolvedAt,
	})
	if err != nil {
		p.log.Warn("round_resolved publish failed",
			zap.String("session_id", ev.SessionID),
			zap.Int("round", ev.Round),
			zap.Error(err),
		)
		if p.OnError != nil {
			p.OnError("write")
		}
		return
	}

	p.log.Debug("round_resolved published", zap.String("message_id", ev.MessageID), zap.Int("round", ev.Round))
	if p.OnPublished != nil {
		p.OnPublished()
	}
}

// ToEvent converte o resumo da rodada no contrato publicado
func ToEvent(sum round.Summary) events.RoundResolved {
	players := make([]events.PlayerRound, 0, len(sum.Results))
	for _, r := range sum.Results {
		players = append(players, events.PlayerRound{
			PlayerID:   r.PlayerID,
			Name:       r.Name,
			OptionKey:  r.OptionKey,
			Amount:     r.Amount.String(),
			Status:     string(r.Status),
			NewBalance: r.NewBalance.String(),
		})
	}
	return events.RoundResolved{
		MessageID:    uuid.NewString(),
		SessionID:    sum.SessionID,
		Round:        sum.Round,
		EventID:      sum.Event.ID,
		Question:     sum.Event.Question,
		OutcomeKey:   sum.Outcome.OutcomeKey,
		OutcomeLabel: sum.Outcome.OutcomeLabel,
		Players:      players,
		ResolvedAt:   sum.ResolvedAt.UTC(),
	}
}
