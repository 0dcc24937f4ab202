package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/party-bet/internal/game/domain"
)

var ErrSourceUnavailable = errors.New("event source unavailable")

// GeneratedEvent é o registro devolvido pela fonte externa de eventos
type GeneratedEvent struct {
	Question     string          `json:"question"`
	OptionALabel string          `json:"optionA_label"`
	OptionBLabel string          `json:"optionB_label"`
	OddsA        decimal.Decimal `json:"oddsA"`
	OddsB        decimal.Decimal `json:"oddsB"`
	Deadline     int             `json:"deadline"`
	Category     string          `json:"category"`
}

// ToEvent converte o registro externo para o formato interno com id novo
func (g GeneratedEvent) ToEvent(id string) domain.Event {
	category := g.Category
	if category == "" {
		category = "generic"
	}
	return domain.Event{
		ID:       id,
		Question: g.Question,
		Category: category,
		Options: []domain.Option{
			{Key: "a", Label: g.OptionALabel, Odds: g.OddsA},
			{Key: "b", Label: g.OptionBLabel, Odds: g.OddsB},
		},
		DeadlineSeconds: g.Deadline,
	}
}

// Source fabrica eventos novos sob demanda
type Source interface {
	Generate(ctx context.Context) (domain.Event, error)
}

// HTTPSource consulta o serviço gerador via GET {BaseURL}/events/generate
type HTTPSource struct {
	BaseURL string
	HTTP    *http.Client
}

func NewHTTPSource(base string) *HTTPSource {
	return &HTTPSource{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *HTTPSource) Generate(ctx context.Context) (domain.Event, error) {
	if s == nil || s.BaseURL == "" {
		return domain.Event{}, ErrSourceUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/events/generate", nil)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	res, err := s.HTTP.Do(req)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return domain.Event{}, fmt.Errorf("%w: http %d", ErrSourceUnavailable, res.StatusCode)
	}
	var out GeneratedEvent
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return domain.Event{}, fmt.Errorf("%w: decode: %v", ErrSourceUnavailable, err)
	}
	return out.ToEvent("gen-" + uuid.NewString()), nil
}

// Extend busca até n eventos gerados e anexa ao catálogo
// Fonte indisponível nunca é fatal: para na primeira falha e segue com o que já existe
func Extend(ctx context.Context, c *Catalog, src Source, n int, log *zap.Logger) int {
	if src == nil || n <= 0 {
		return 0
	}
	added := 0
	for i := 0; i < n; i++ {
		ev, err := src.Generate(ctx)
		if err != nil {
			log.Warn("event source unavailable, keeping static catalog", zap.Int("added", added), zap.Error(err))
			break
		}
		c.Append(ev)
		added++
	}
	return added
}
