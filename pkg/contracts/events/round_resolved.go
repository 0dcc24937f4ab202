package events

import "time"

// Evento publicado no tópico "round_resolved" a cada rodada resolvida.
// Valores decimais trafegam como string para não perder precisão.
type RoundResolved struct {
	MessageID    string        `json:"message_id"`
	SessionID    string        `json:"session_id"`
	Round        int           `json:"round"`
	EventID      string        `json:"event_id"`
	Question     string        `json:"question"`
	OutcomeKey   string        `json:"outcome_key"`
	OutcomeLabel string        `json:"outcome_label"`
	Players      []PlayerRound `json:"players"`
	ResolvedAt   time.Time     `json:"resolved_at"`
}

type PlayerRound struct {
	PlayerID   int    `json:"player_id"`
	Name       string `json:"name"`
	OptionKey  string `json:"option_key"`
	Amount     string `json:"amount"`
	Status     string `json:"status"` // "WIN" | "LOSS" | "Skipped"
	NewBalance string `json:"new_balance"`
}
