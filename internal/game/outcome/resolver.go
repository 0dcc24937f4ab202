package outcome

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/radieske/party-bet/internal/game/domain"
)

// RandSource é a capacidade de sorteio injetável (math/rand/v2 *rand.Rand serve)
type RandSource interface {
	IntN(n int) int
}

type Status string

const (
	StatusWin     Status = "WIN"
	StatusLoss    Status = "LOSS"
	StatusSkipped Status = "Skipped"
)

// PlayerResult é uma linha do quadro de resultados da rodada
type PlayerResult struct {
	PlayerID    int             `json:"playerId"`
	Name        string          `json:"name"`
	Status      Status          `json:"status"`
	OptionKey   string          `json:"optionKey,omitempty"`
	OptionLabel string          `json:"optionLabel,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Payout      decimal.Decimal `json:"payout"` // bruto: amount*odds na vitória, 0 caso contrário
	NewBalance  decimal.Decimal `json:"newBalance"`
}

// Resolver sorteia a saída de um evento e aplica os pagamentos
// Sorteio uniforme entre as chaves: odds só afetam o pagamento
type Resolver struct {
	rnd RandSource
}

func NewResolver(rnd RandSource) *Resolver {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Resolver{rnd: rnd}
}

// Resolve devolve os novos saldos e a saída sorteada. Não altera players.
// Vitória: saldo += amount*(odds-1). Derrota: saldo -= amount.
// Skip ou jogador sem aposta: saldo inalterado.
func (r *Resolver) Resolve(bets []domain.PlayerBet, ev domain.Event, players []domain.Player) ([]domain.Player, domain.Outcome) {
	out := r.draw(ev)
	return Apply(bets, ev, players, out), out
}

func (r *Resolver) draw(ev domain.Event) domain.Outcome {
	if len(ev.Options) == 0 {
		return domain.Outcome{}
	}
	opt := ev.Options[r.rnd.IntN(len(ev.Options))]
	return domain.Outcome{OutcomeKey: opt.Key, OutcomeLabel: opt.Label}
}

// Apply calcula os saldos para uma saída já conhecida
func Apply(bets []domain.PlayerBet, ev domain.Event, players []domain.Player, out domain.Outcome) []domain.Player {
	updated := make([]domain.Player, len(players))
	for i, p := range players {
		updated[i] = p
		bet, ok := findBet(bets, p.ID)
		if !ok || bet.IsSkip() {
			continue
		}
		if bet.OptionKey == out.OutcomeKey {
			opt, _ := ev.Option(out.OutcomeKey)
			updated[i].Balance = p.Balance.Add(bet.Amount.Mul(opt.Odds.Sub(decimal.NewFromInt(1))))
		} else {
			updated[i].Balance = p.Balance.Sub(bet.Amount)
		}
	}
	return updated
}

// Breakdown monta o quadro por jogador; players já deve conter os saldos novos
func Breakdown(bets []domain.PlayerBet, ev domain.Event, players []domain.Player, out domain.Outcome) []PlayerResult {
	lines := make([]PlayerResult, 0, len(players))
	for _, p := range players {
		line := PlayerResult{
			PlayerID:   p.ID,
			Name:       p.Name,
			Status:     StatusSkipped,
			Amount:     decimal.Zero,
			Payout:     decimal.Zero,
			NewBalance: p.Balance,
		}
		bet, ok := findBet(bets, p.ID)
		if ok && !bet.IsSkip() {
			line.OptionKey = bet.OptionKey
			line.Amount = bet.Amount
			if opt, found := ev.Option(bet.OptionKey); found {
				line.OptionLabel = opt.Label
			}
			if bet.OptionKey == out.OutcomeKey {
				opt, _ := ev.Option(out.OutcomeKey)
				line.Status = StatusWin
				line.Payout = bet.Amount.Mul(opt.Odds)
			} else {
				line.Status = StatusLoss
			}
		}
		lines = append(lines, line)
	}
	return lines
}

func findBet(bets []domain.PlayerBet, playerID int) (domain.PlayerBet, bool) {
	for _, b := range bets {
		if b.PlayerID == playerID {
			return b, true
		}
	}
	return domain.PlayerBet{}, false
}
