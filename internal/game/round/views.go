package round

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/party-bet/internal/game/betting"
	"github.com/radieske/party-bet/internal/game/domain"
	"github.com/radieske/party-bet/internal/game/outcome"
)

// Snapshot é tudo que a camada de apresentação precisa para desenhar a tela atual
type Snapshot struct {
	Version     uint64       `json:"version"`
	View        View         `json:"view"`
	SessionID   string       `json:"sessionId,omitempty"`
	Round       int          `json:"round"`
	TotalRounds int          `json:"totalRounds"`
	Finished    bool         `json:"finished"`
	Home        *HomeView    `json:"home,omitempty"`
	Betting     *BettingView `json:"betting,omitempty"`
	Result      *ResultView  `json:"result,omitempty"`
}

type HomeView struct {
	Player      domain.Player       `json:"player"`
	Players     []domain.Player     `json:"players"`
	Leaderboard []domain.ScoreEntry `json:"leaderboard"`
	NextRoundIn *int                `json:"nextRoundIn,omitempty"` // segundos
	Warning     string              `json:"warning,omitempty"`
}

type BettingView struct {
	Player        domain.Player   `json:"player"`
	Turn          int             `json:"turn"`
	Event         domain.Event    `json:"event"`
	Countdown     int             `json:"countdown"`
	State         betting.State   `json:"state"`
	PendingOption string          `json:"pendingOption,omitempty"`
	PendingAmount decimal.Decimal `json:"pendingAmount"`
	Confirmed     *domain.Bet     `json:"confirmed,omitempty"`
	Error         string          `json:"error,omitempty"`
}

type ResultView struct {
	Event   domain.Event           `json:"event"`
	Outcome domain.Outcome         `json:"outcome"`
	Results []outcome.PlayerResult `json:"results"`
}

func (s *Scheduler) Snapshot() Snapshot {
	snap := Snapshot{
		Version:     s.version,
		View:        s.view,
		SessionID:   s.sessionID,
		Round:       s.round,
		TotalRounds: len(s.cfg.RoundOffsets),
		Finished:    s.Finished(),
	}

	switch s.view {
	case ViewHome:
		home := &HomeView{
			Players:     s.Players(),
			Leaderboard: s.scores.Top(),
			Warning:     s.scores.Warning(),
		}
		if len(s.players) > 0 {
			home.Player = s.players[0]
		}
		if t, ok := s.timers.nextOf(timerRoundStart); ok {
			secs := ceilSeconds(t.at.Sub(s.now))
			home.NextRoundIn = &secs
		}
		snap.Home = home

	case ViewBetting:
		if s.collector == nil || s.event == nil {
			break
		}
		key, amount := s.collector.Pending()
		bv := &BettingView{
			Player:        s.players[s.turn],
			Turn:          s.turn,
			Event:         *s.event,
			Countdown:     s.collector.Remaining(),
			State:         s.collector.State(),
			PendingOption: key,
			PendingAmount: amount,
		}
		if bet, ok := s.collector.Confirmed(); ok {
			bv.Confirmed = &bet
		}
		if err := s.collector.LastError(); err != nil {
			bv.Error = err.Error()
		}
		snap.Betting = bv

	case ViewResult:
		if s.event == nil || s.outcome == nil {
			break
		}
		snap.Result = &ResultView{
			Event:   *s.event,
			Outcome: *s.outcome,
			Results: append([]outcome.PlayerResult(nil), s.results...),
		}
	}
	return snap
}

// ceilSeconds arredonda para cima; 0 quando já venceu
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
