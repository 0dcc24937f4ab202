package round

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/party-bet/internal/game/betting"
	"github.com/radieske/party-bet/internal/game/domain"
	"github.com/radieske/party-bet/internal/game/outcome"
)

type View string

const (
	ViewSetup   View = "SETUP"
	ViewHome    View = "HOME"
	ViewBetting View = "BETTING"
	ViewResult  View = "RESULT"
)

var (
	ErrNoPlayers     = errors.New("at least one player name is required")
	ErrWrongView     = errors.New("action not available in current view")
	ErrSessionActive = errors.New("session still in progress")
)

type Config struct {
	StartingBalance decimal.Decimal
	RoundOffsets    []time.Duration // a partir do início do jogo, um por rodada
	ResultDelay     time.Duration
}

// DefaultConfig: 1000 moedas, rodadas em +10s e +50s, resultado por 5s
func DefaultConfig() Config {
	return Config{
		StartingBalance: decimal.NewFromInt(1000),
		RoundOffsets:    []time.Duration{10 * time.Second, 50 * time.Second},
		ResultDelay:     5 * time.Second,
	}
}

// Catalog fornece o evento de cada rodada (1-based)
type Catalog interface {
	At(round int) (domain.Event, bool)
}

// ScoreBoard é o placar persistente
type ScoreBoard interface {
	Merge(ctx context.Context, players []domain.Player) []domain.ScoreEntry
	Top() []domain.ScoreEntry
	Warning() string
	// Resume volta a tentar persistir no início de uma nova sessão
	Resume(ctx context.Context)
}

// Summary descreve uma rodada resolvida
type Summary struct {
	SessionID  string
	Round      int
	Event      domain.Event
	Outcome    domain.Outcome
	Bets       []domain.PlayerBet
	Results    []outcome.PlayerResult
	ResolvedAt time.Time
}

// Hooks são chamados de dentro do loop dono; não podem bloquear
type Hooks struct {
	OnRoundStarted   func(round int, ev domain.Event)
	OnBetFinalized   func(pb domain.PlayerBet)
	OnRoundResolved  func(Summary)
	OnRoundPreempted func(round int, collected int)
}

// Scheduler é a máquina de estados do jogo: SETUP -> HOME -> BETTING -> RESULT -> HOME ...
// Todo o tempo entra por parâmetro (now); prazos vencidos são processados em ordem.
// Não é seguro para uso concorrente: o Engine serializa o acesso.
type Scheduler struct {
	cfg      Config
	catalog  Catalog
	resolver *outcome.Resolver
	scores   ScoreBoard
	log      *zap.Logger
	hooks    Hooks

	now     time.Time
	version uint64
	timers  timerQueue
	gen     uint64

	view      View
	sessionID string
	started   bool
	players   []domain.Player

	round     int
	event     *domain.Event
	turn      int
	bets      []domain.PlayerBet
	collector *betting.Collector
	outcome   *domain.Outcome
	results   []outcome.PlayerResult
}

func New(cfg Config, catalog Catalog, resolver *outcome.Resolver, scores ScoreBoard, log *zap.Logger, hooks Hooks) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		catalog:  catalog,
		resolver: resolver,
		scores:   scores,
		log:      log,
		hooks:    hooks,
		view:     ViewSetup,
	}
}

func (s *Scheduler) View() View        { return s.view }
func (s *Scheduler) Now() time.Time    { return s.now }
func (s *Scheduler) Version() uint64   { return s.version }
func (s *Scheduler) Round() int        { return s.round }
func (s *Scheduler) SessionID() string { return s.sessionID }

// Players retorna uma cópia dos jogadores atuais
func (s *Scheduler) Players() []domain.Player {
	return append([]domain.Player(nil), s.players...)
}

// NextDeadline é o próximo prazo agendado, se houver
func (s *Scheduler) NextDeadline() (time.Time, bool) { return s.timers.next() }

// Finished vale quando todos os gatilhos de rodada já dispararam e o último resultado saiu da tela
func (s *Scheduler) Finished() bool {
	return s.started && s.view == ViewHome && s.timers.pending(timerRoundStart) == 0
}

// Advance processa, em ordem, todos os prazos vencidos até now
func (s *Scheduler) Advance(now time.Time) {
	if now.Before(s.now) {
		now = s.now
	}
	for {
		t, ok := s.timers.popDue(now)
		if !ok {
			break
		}
		s.now = t.at
		s.fire(t)
	}
	s.now = now
}

func (s *Scheduler) fire(t timer) {
	switch t.kind {
	case timerRoundStart:
		s.startRound(t.round)
	case timerCountdown:
		if t.gen != s.gen || s.collector == nil {
			return
		}
		s.touch()
		if s.collector.Tick() {
			s.finishTurn()
			return
		}
		s.timers.push(timer{at: t.at.Add(time.Second), kind: timerCountdown, gen: s.gen})
	case timerResultAdvance:
		if t.gen != s.gen || s.view != ViewResult {
			return
		}
		s.leaveResult()
	}
}

// StartGame sai de SETUP com os jogadores e agenda os gatilhos fixos das rodadas.
// Os gatilhos são prazos de relógio: disparam mesmo sem ação do jogador e nunca são cancelados.
func (s *Scheduler) StartGame(now time.Time, names []string) error {
	s.Advance(now)
	if s.view != ViewSetup {
		return ErrSessionActive
	}

	var players []domain.Player
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		players = append(players, domain.Player{ID: len(players), Name: n, Balance: s.cfg.StartingBalance})
	}
	if len(players) == 0 {
		return ErrNoPlayers
	}

	s.scores.Resume(context.Background())
	s.players = players
	s.sessionID = uuid.NewString()
	s.started = true
	s.round = 0
	s.view = ViewHome
	for i, off := range s.cfg.RoundOffsets {
		s.timers.push(timer{at: s.now.Add(off), kind: timerRoundStart, round: i + 1})
	}
	s.touch()

	s.log.Info("game started",
		zap.String("session_id", s.sessionID),
		zap.Int("players", len(players)),
		zap.Int("rounds", len(s.cfg.RoundOffsets)),
	)
	return nil
}

func (s *Scheduler) startRound(r int) {
	ev, ok := s.catalog.At(r)
	if !ok {
		s.log.Warn("no catalog event for round, trigger ignored", zap.Int("round", r))
		return
	}

	switch s.view {
	case ViewBetting:
		// rodada anterior ainda coletando: é abandonada sem resolução
		s.log.Warn("round preempted by next trigger",
			zap.Int("round", s.round),
			zap.Int("bets_collected", len(s.bets)),
		)
		if s.hooks.OnRoundPreempted != nil {
			s.hooks.OnRoundPreempted(s.round, len(s.bets))
		}
	case ViewResult:
		s.commitScores()
	}

	s.cancelPhaseTimers()
	s.round = r
	s.event = &ev
	s.turn = 0
	s.bets = nil
	s.outcome = nil
	s.results = nil
	s.view = ViewBetting
	s.beginTurn()

	s.log.Info("round started", zap.Int("round", r), zap.String("event_id", ev.ID))
	if s.hooks.OnRoundStarted != nil {
		s.hooks.OnRoundStarted(r, ev)
	}
}

func (s *Scheduler) beginTurn() {
	s.collector = betting.New(*s.event, s.players[s.turn])
	s.timers.push(timer{at: s.now.Add(time.Second), kind: timerCountdown, gen: s.gen})
	s.touch()
}

func (s *Scheduler) finishTurn() {
	pb, _ := s.collector.Result()
	s.bets = append(s.bets, pb)
	s.cancelPhaseTimers()
	if s.hooks.OnBetFinalized != nil {
		s.hooks.OnBetFinalized(pb)
	}

	s.turn++
	if s.turn < len(s.players) {
		s.beginTurn()
		return
	}
	s.resolve()
}

func (s *Scheduler) resolve() {
	players, out := s.resolver.Resolve(s.bets, *s.event, s.players)
	s.players = players
	s.outcome = &out
	s.results = outcome.Breakdown(s.bets, *s.event, players, out)
	s.collector = nil
	s.view = ViewResult
	s.timers.push(timer{at: s.now.Add(s.cfg.ResultDelay), kind: timerResultAdvance, gen: s.gen})
	s.touch()

	s.log.Info("round resolved",
		zap.Int("round", s.round),
		zap.String("event_id", s.event.ID),
		zap.String("outcome", out.OutcomeKey),
	)
	if s.hooks.OnRoundResolved != nil {
		s.hooks.OnRoundResolved(Summary{
			SessionID:  s.sessionID,
			Round:      s.round,
			Event:      *s.event,
			Outcome:    out,
			Bets:       append([]domain.PlayerBet(nil), s.bets...),
			Results:    append([]outcome.PlayerResult(nil), s.results...),
			ResolvedAt: s.now,
		})
	}
}

// leaveResult grava o placar e volta para HOME
func (s *Scheduler) leaveResult() {
	s.commitScores()
	s.cancelPhaseTimers()
	s.view = ViewHome
	s.touch()
	if s.Finished() {
		s.log.Info("session finished", zap.String("session_id", s.sessionID))
	}
}

func (s *Scheduler) commitScores() {
	s.scores.Merge(context.Background(), s.players)
}

// cancelPhaseTimers invalida countdown e auto-avanço pendentes; gatilhos de rodada ficam
func (s *Scheduler) cancelPhaseTimers() {
	s.gen++
	s.timers.drop(timerCountdown, s.gen)
	s.timers.drop(timerResultAdvance, s.gen)
}

func (s *Scheduler) touch() { s.version++ }

func (s *Scheduler) activeCollector(now time.Time) (*betting.Collector, error) {
	s.Advance(now)
	if s.view != ViewBetting || s.collector == nil {
		return nil, ErrWrongView
	}
	return s.collector, nil
}

func (s *Scheduler) Select(now time.Time, optionKey string) error {
	c, err := s.activeCollector(now)
	if err != nil {
		return err
	}
	if err := c.Select(optionKey); err != nil {
		return err
	}
	s.touch()
	return nil
}

// SetAmount guarda o valor pendente; texto não numérico é rejeitado e exibido como erro
func (s *Scheduler) SetAmount(now time.Time, amount string) error {
	c, err := s.activeCollector(now)
	if err != nil {
		return err
	}
	err = c.SetAmountText(amount)
	if !errors.Is(err, betting.ErrInvalidState) {
		s.touch()
	}
	return err
}

// Confirm confirma a aposta do jogador da vez. Erros de validação ficam no
// coletor para a tela e a rodada segue.
func (s *Scheduler) Confirm(now time.Time, optionKey, amount string) error {
	c, err := s.activeCollector(now)
	if err != nil {
		return err
	}
	d, perr := betting.ParseAmount(amount)
	if perr != nil {
		// mesma ordem de validação: opção primeiro, depois valor
		d = decimal.Zero
	}
	err = c.Confirm(optionKey, d)
	if !errors.Is(err, betting.ErrInvalidState) {
		s.touch()
	}
	return err
}

func (s *Scheduler) Modify(now time.Time) error {
	c, err := s.activeCollector(now)
	if err != nil {
		return err
	}
	if err := c.Modify(); err != nil {
		return err
	}
	s.touch()
	return nil
}

// Skip finaliza a vez do jogador atual com a aposta sentinela
func (s *Scheduler) Skip(now time.Time) error {
	c, err := s.activeCollector(now)
	if err != nil {
		return err
	}
	if _, err := c.Skip(); err != nil {
		return err
	}
	s.touch()
	s.finishTurn()
	return nil
}

// AdvanceFromResult sai do RESULT antes do atraso fixo
func (s *Scheduler) AdvanceFromResult(now time.Time) error {
	s.Advance(now)
	if s.view != ViewResult {
		return ErrWrongView
	}
	s.leaveResult()
	return nil
}

// Restart volta para SETUP; só vale com a sessão encerrada
func (s *Scheduler) Restart(now time.Time) error {
	s.Advance(now)
	if s.view == ViewSetup {
		return nil
	}
	if !s.Finished() {
		return ErrSessionActive
	}
	s.log.Info("session restarted", zap.String("previous_session_id", s.sessionID))
	s.cancelPhaseTimers()
	s.view = ViewSetup
	s.started = false
	s.sessionID = ""
	s.players = nil
	s.round = 0
	s.event = nil
	s.turn = 0
	s.bets = nil
	s.collector = nil
	s.outcome = nil
	s.results = nil
	s.touch()
	return nil
}
