package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/party-bet/internal/game/round"
)

// Sink é o destino dos envelopes: Hub local ou RedisSink
type Sink interface {
	Send(ctx context.Context, msg []byte) error
}

// Notifier desacopla o loop do jogo da entrega: Notify só guarda o snapshot
// mais recente e Run entrega; snapshots intermediários podem ser pulados
type Notifier struct {
	sink   Sink
	log    *zap.Logger
	mu     sync.Mutex
	latest []byte
	signal chan struct{}

	OnError func() // métricas
}

func NewNotifier(sink Sink, log *zap.Logger) *Notifier {
	return &Notifier{sink: sink, log: log, signal: make(chan struct{}, 1)}
}

// Notify serve como OnChange do Engine; não bloqueia
func (n *Notifier) Notify(snap round.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		n.log.Warn("snapshot marshal failed", zap.Error(err))
		return
	}
	msg, _ := json.Marshal(ServerMsg{Type: "snapshot", Payload: payload})

	n.mu.Lock()
	n.latest = msg
	n.mu.Unlock()

	select {
	case n.signal <- struct{}{}:
	default:
	}
}

func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-n.signal:
			n.mu.Lock()
			msg := n.latest
			n.mu.Unlock()

			sctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
			if err := n.sink.Send(sctx, msg); err != nil {
				n.log.Warn("snapshot broadcast failed", zap.Error(err))
				if n.OnError != nil {
					n.OnError()
				}
			}
			cancel()
		}
	}
}
