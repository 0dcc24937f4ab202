package engine

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/radieske/party-bet/internal/game/round"
)

var ErrStopped = errors.New("engine stopped")

// Engine é o dono único do Scheduler: comandos e ticks do relógio passam
// por um único loop, então não há acesso concorrente ao estado do jogo
type Engine struct {
	sched *round.Scheduler
	clock clockwork.Clock
	tick  time.Duration
	log   *zap.Logger

	cmds chan command
	done chan struct{}

	lastVersion uint64

	OnChange func(round.Snapshot) // chamado no loop a cada mudança de versão; não pode bloquear
}

type command struct {
	apply func(now time.Time) error
	reply chan reply
}

type reply struct {
	snap round.Snapshot
	err  error
}

func New(sched *round.Scheduler, clock clockwork.Clock, tick time.Duration, log *zap.Logger) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	return &Engine{
		sched: sched,
		clock: clock,
		tick:  tick,
		log:   log,
		cmds:  make(chan command),
		done:  make(chan struct{}),
	}
}

// Run processa comandos e prazos até o contexto ser cancelado
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)

	ticker := e.clock.NewTicker(e.tick)
	defer ticker.Stop()

	e.log.Info("engine started", zap.Duration("tick", e.tick))
	for {
		select {
		case <-ctx.Done():
			e.log.Info("engine stopped")
			return ctx.Err()

		case <-ticker.Chan():
			e.sched.Advance(e.clock.Now())
			e.publish()

		case c := <-e.cmds:
			now := e.clock.Now()
			e.sched.Advance(now)
			err := c.apply(now)
			e.publish()
			c.reply <- reply{snap: e.sched.Snapshot(), err: err}
		}
	}
}

func (e *Engine) publish() {
	v := e.sched.Version()
	if v == e.lastVersion {
		return
	}
	e.lastVersion = v
	if e.OnChange != nil {
		e.OnChange(e.sched.Snapshot())
	}
}

func (e *Engine) do(ctx context.Context, apply func(now time.Time) error) (round.Snapshot, error) {
	c := command{apply: apply, reply: make(chan reply, 1)}
	select {
	case e.cmds <- c:
	case <-e.done:
		return round.Snapshot{}, ErrStopped
	case <-ctx.Done():
		return round.Snapshot{}, ctx.Err()
	}
	select {
	case r := <-c.reply:
		return r.snap, r.err
	case <-ctx.Done():
		return round.Snapshot{}, ctx.Err()
	}
}

// Snapshot lê a tela atual depois de processar os prazos vencidos
func (e *Engine) Snapshot(ctx context.Context) (round.Snapshot, error) {
	return e.do(ctx, func(time.Time) error { return nil })
}

func (e *Engine) StartGame(ctx context.Context, names []string) (round.Snapshot, error) {
	return e.do(ctx, func(now time.Time) error { return e.sched.StartGame(now, names) })
}

func (e *Engine) Select(ctx context.Context, optionKey string) (round.Snapshot, error) {
	return e.do(ctx, func(now time.Time) error { return e.sched.Select(now, optionKey) })
}

func (e *Engine) SetAmount(ctx context.Context, amount string) (round.Snapshot, error) {
	return e.do(ctx, func(now time.Time) error { return e.sched.SetAmount(now, amount) })
}

func (e *Engine) Confirm(ctx context.Context, optionKey, amount string) (round.Snapshot, error) {
	return e.do(ctx, func(now time.Time) error { return e.sched.Confirm(now, optionKey, amount) })
}

func (e *Engine) Modify(ctx context.Context) (round.Snapshot, error) {
	return e.do(ctx, e.sched.Modify)
}

func (e *Engine) Skip(ctx context.Context) (round.Snapshot, error) {
	return e.do(ctx, e.sched.Skip)
}

func (e *Engine) AdvanceFromResult(ctx context.Context) (round.Snapshot, error) {
	return e.do(ctx, e.sched.AdvanceFromResult)
}

func (e *Engine) Restart(ctx context.Context) (round.Snapshot, error) {
	return e.do(ctx, e.sched.Restart)
}
