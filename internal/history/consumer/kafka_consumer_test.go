package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/party-bet/pkg/contracts/events"
)

// scriptedReader devolve as mensagens em ordem e depois bloqueia até o cancelamento
type scriptedReader struct {
	items []readItem
}

type readItem struct {
	msg kafka.Message
	err error
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.items) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	it := r.items[0]
	r.items = r.items[1:]
	return it.msg, it.err
}

type memRepo struct {
	saved []events.RoundResolved
	err   error
}

func (m *memRepo) SaveRound(ctx context.Context, e events.RoundResolved) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, e)
	return nil
}

func encode(t *testing.T, ev events.RoundResolved) kafka.Message {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	return kafka.Message{Value: b}
}

func run(t *testing.T, p *Processor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := p.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run = %v", err)
	}
}

func TestProcessorPersistsRounds(t *testing.T) {
	ev := events.RoundResolved{MessageID: "m-1", SessionID: "s-1", Round: 1, EventID: "pk-1"}
	repo := &memRepo{}
	stages := map[string]int{}
	var consumed, persisted int
	p := &Processor{
		Log: zap.NewNop(),
		Reader: &scriptedReader{items: []readItem{
			{msg: encode(t, ev)},
			{msg: kafka.Message{Value: []byte("{bad")}},
			{msg: encode(t, events.RoundResolved{})},
			{err: errors.New("broker gone")},
		}},
		Repo:       repo,
		OnConsumed: func() { consumed++ },
		OnPersist:  func() { persisted++ },
		OnError:    func(s string) { stages[s]++ },
		retryDelay: time.Millisecond,
	}
	run(t, p)

	if len(repo.saved) != 1 || repo.saved[0].MessageID != "m-1" {
		t.Errorf("saved = %+v", repo.saved)
	}
	if consumed != 3 || persisted != 1 {
		t.Errorf("consumed = %d persisted = %d", consumed, persisted)
	}
	if stages["decode"] != 2 || stages["read"] != 1 {
		t.Errorf("stages = %v", stages)
	}
}

func TestProcessorContinuesAfterDBError(t *testing.T) {
	repo := &memRepo{err: errors.New("pg down")}
	stages := map[string]int{}
	p := &Processor{
		Log: zap.NewNop(),
		Reader: &scriptedReader{items: []readItem{
			{msg: encode(t, events.RoundResolved{MessageID: "m-1"})},
			{msg: encode(t, events.RoundResolved{MessageID: "m-2"})},
		}},
		Repo:    repo,
		OnError: func(s string) { stages[s]++ },
	}
	run(t, p)

	if stages["db_save"] != 2 {
		t.Errorf("stages = %v", stages)
	}
}
