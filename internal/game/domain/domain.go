package domain

import "github.com/shopspring/decimal"

// NoPick é a chave sentinela de uma aposta pulada
const NoPick = "no-pick"

// Option é uma saída possível de um evento, com odd decimal (> 1.0 esperado)
type Option struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Odds  decimal.Decimal `json:"odds"`
}

// Event é uma pergunta de aposta. Imutável depois de criado.
// Options preserva a ordem de inserção para renderização estável.
type Event struct {
	ID              string   `json:"id"`
	Question        string   `json:"question"`
	Options         []Option `json:"options"`
	DeadlineSeconds int      `json:"deadlineSeconds"`
	Category        string   `json:"category"`
}

// Option retorna a opção pela chave
func (e Event) Option(key string) (Option, bool) {
	for _, o := range e.Options {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}

// Keys retorna as chaves na ordem de inserção
func (e Event) Keys() []string {
	keys := make([]string, len(e.Options))
	for i, o := range e.Options {
		keys[i] = o.Key
	}
	return keys
}

type Player struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type Bet struct {
	EventID   string          `json:"eventId"`
	OptionKey string          `json:"optionKey"`
	Amount    decimal.Decimal `json:"amount"`
}

// IsSkip vale para a chave sentinela ou valor zero
func (b Bet) IsSkip() bool {
	return b.OptionKey == NoPick || b.Amount.IsZero()
}

// SkipBet monta a aposta terminal de quem pulou a vez
func SkipBet(eventID string) Bet {
	return Bet{EventID: eventID, OptionKey: NoPick, Amount: decimal.Zero}
}

type PlayerBet struct {
	Bet
	PlayerID int `json:"playerId"`
}

// Outcome é o resultado sorteado de uma rodada
type Outcome struct {
	OutcomeKey   string `json:"outcomeKey"`
	OutcomeLabel string `json:"outcomeLabel"`
}

type ScoreEntry struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}
