package catalog

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/radieske/party-bet/internal/game/domain"
)

// Catalog guarda a lista de eventos disponíveis, indexável pelo número da rodada
// Leitura concorrente segura; eventos gerados só são anexados no startup
type Catalog struct {
	mu     sync.RWMutex
	events []domain.Event
}

func New(events ...domain.Event) *Catalog {
	return &Catalog{events: append([]domain.Event(nil), events...)}
}

// List retorna uma cópia da lista atual
func (c *Catalog) List() []domain.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Event(nil), c.events...)
}

// At retorna o evento da rodada (1-based)
func (c *Catalog) At(round int) (domain.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if round < 1 || round > len(c.events) {
		return domain.Event{}, false
	}
	return c.events[round-1], true
}

func (c *Catalog) Append(events ...domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, events...)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// Static é o catálogo semente usado pelas duas rodadas padrão
func Static() []domain.Event {
	return []domain.Event{
		{
			ID:       "pk-1",
			Question: "Will the penalty kick succeed?",
			Category: "pk",
			Options: []domain.Option{
				{Key: "yes", Label: "Yes", Odds: decimal.RequireFromString("1.8")},
				{Key: "no", Label: "No", Odds: decimal.RequireFromString("2.2")},
			},
			DeadlineSeconds: 20,
		},
		{
			ID:       "fk-1",
			Question: "Will the free kick succeed?",
			Category: "generic",
			Options: []domain.Option{
				{Key: "yes", Label: "Yes", Odds: decimal.RequireFromString("2.8")},
				{Key: "no", Label: "No", Odds: decimal.RequireFromString("1.5")},
			},
			DeadlineSeconds: 20,
		},
	}
}
