package generator

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/radieske/party-bet/internal/game/catalog"
)

// Rand é a fonte de aleatoriedade do gerador (*rand.Rand serve)
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type template struct {
	category string
	question string
	labelA   string
	labelB   string
}

// Cenários simulados; a categoria acompanha o vídeo que o cliente exibe
var templates = []template{
	{"pk", "Will the striker score this penalty?", "Goal!", "Miss!"},
	{"pk", "Will the keeper dive to the left?", "Left", "Right"},
	{"3pointer", "Will the buzzer-beater three go in?", "Swish!", "Brick!"},
	{"3pointer", "Will the shooter hit from the logo?", "Splash", "Airball"},
	{"tennis", "Will the next serve be an ace?", "Ace!", "Return"},
	{"tennis", "Will the rally last more than 10 shots?", "Long", "Short"},
	{"generic", "Will the corner kick find a header?", "Header", "Cleared"},
	{"generic", "Will the sprinter break the record?", "Record!", "No"},
}

// Limites dos eventos gerados
const (
	MinOdds     = 1.1
	MaxOdds     = 5.0
	MinDeadline = 10
	MaxDeadline = 30
)

// Generator monta eventos binários aleatórios
type Generator struct {
	mu  sync.Mutex
	rnd Rand

	OnGenerated func(category string) // métricas
}

func New(rnd Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rnd: rnd}
}

// Next sorteia um cenário com odds em [1.1, 5.0] (2 casas) e prazo em [10, 30]s
func (g *Generator) Next() catalog.GeneratedEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := templates[g.rnd.IntN(len(templates))]
	return catalog.GeneratedEvent{
		Question:     t.question,
		OptionALabel: t.labelA,
		OptionBLabel: t.labelB,
		OddsA:        g.odds(),
		OddsB:        g.odds(),
		Deadline:     MinDeadline + g.rnd.IntN(MaxDeadline-MinDeadline+1),
		Category:     t.category,
	}
}

func (g *Generator) odds() decimal.Decimal {
	v := MinOdds + g.rnd.Float64()*(MaxOdds-MinOdds)
	return decimal.NewFromFloat(v).Round(2)
}

// Handler responde GET /events/generate com um evento novo
func (g *Generator) Handler(w http.ResponseWriter, r *http.Request) {
	ev := g.Next()
	if g.OnGenerated != nil {
		g.OnGenerated(ev.Category)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ev)
}
