package betting

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/radieske/party-bet/internal/game/domain"
)

type State string

const (
	StateCollecting State = "COLLECTING"
	StateConfirmed  State = "CONFIRMED"
	StateSubmitted  State = "SUBMITTED" // terminal
)

// Collector é o ciclo de aposta de um jogador em uma rodada
// COLLECTING -> CONFIRMED -> (COLLECTING | SUBMITTED); Skip e fim do tempo levam a SUBMITTED
// Não é seguro para uso concorrente: o dono (Scheduler) serializa as chamadas
type Collector struct {
	event     domain.Event
	playerID  int
	balance   decimal.Decimal
	state     State
	remaining int

	pendingKey    string
	pendingAmount decimal.Decimal
	confirmed     *domain.Bet
	lastErr       error
	result        domain.PlayerBet
}

// New abre o ciclo em COLLECTING com o contador no prazo do evento
func New(ev domain.Event, player domain.Player) *Collector {
	return &Collector{
		event:     ev,
		playerID:  player.ID,
		balance:   player.Balance,
		state:     StateCollecting,
		remaining: ev.DeadlineSeconds,
	}
}

func (c *Collector) State() State { return c.state }
func (c *Collector) Remaining() int { return c.remaining }
func (c *Collector) PlayerID() int { return c.playerID }
func (c *Collector) LastError() error { return c.lastErr }

// Pending retorna a seleção e o valor ainda não confirmados
func (c *Collector) Pending() (string, decimal.Decimal) {
	return c.pendingKey, c.pendingAmount
}

// Confirmed retorna a aposta confirmada, se houver
func (c *Collector) Confirmed() (domain.Bet, bool) {
	if c.confirmed == nil {
		return domain.Bet{}, false
	}
	return *c.confirmed, true
}

// Result retorna a aposta final depois de SUBMITTED
func (c *Collector) Result() (domain.PlayerBet, bool) {
	return c.result, c.state == StateSubmitted
}

func (c *Collector) Select(optionKey string) error {
	if c.state != StateCollecting {
		return ErrInvalidState
	}
	c.pendingKey = optionKey
	return nil
}

func (c *Collector) SetAmount(amount decimal.Decimal) error {
	if c.state != StateCollecting {
		return ErrInvalidState
	}
	c.pendingAmount = amount
	return nil
}

// SetAmountText é o SetAmount a partir do texto digitado. Texto inválido
// mantém o valor anterior e fica em LastError para a tela.
func (c *Collector) SetAmountText(text string) error {
	if c.state != StateCollecting {
		return ErrInvalidState
	}
	d, err := ParseAmount(text)
	if err != nil {
		c.lastErr = err
		return err
	}
	c.lastErr = nil
	c.pendingAmount = d
	return nil
}

// Confirm valida e confirma a aposta. Em erro de validação o coletor
// continua em COLLECTING e guarda o motivo para a tela.
func (c *Collector) Confirm(optionKey string, amount decimal.Decimal) error {
	if c.state != StateCollecting {
		return ErrInvalidState
	}
	c.pendingKey = optionKey
	c.pendingAmount = amount

	if err := c.validate(optionKey, amount); err != nil {
		c.lastErr = err
		return err
	}

	c.lastErr = nil
	c.confirmed = &domain.Bet{EventID: c.event.ID, OptionKey: optionKey, Amount: amount}
	c.state = StateConfirmed
	return nil
}

func (c *Collector) validate(optionKey string, amount decimal.Decimal) error {
	if optionKey == "" || optionKey == domain.NoPick {
		return ErrNoOption
	}
	if _, ok := c.event.Option(optionKey); !ok {
		return ErrNoOption
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(c.balance) {
		return ErrInsufficientBalance
	}
	return nil
}

// Modify volta para COLLECTING partindo dos valores confirmados.
// O contador não reinicia; sem nova confirmação o fim do tempo vira skip.
func (c *Collector) Modify() error {
	if c.state != StateConfirmed || c.confirmed == nil {
		return ErrInvalidState
	}
	c.pendingKey = c.confirmed.OptionKey
	c.pendingAmount = c.confirmed.Amount
	c.confirmed = nil
	c.state = StateCollecting
	return nil
}

// Skip finaliza imediatamente com a aposta sentinela
func (c *Collector) Skip() (domain.PlayerBet, error) {
	if c.state == StateSubmitted {
		return domain.PlayerBet{}, ErrInvalidState
	}
	c.submit(domain.SkipBet(c.event.ID))
	return c.result, nil
}

// Tick consome um segundo do contador. Retorna true quando o tempo
// acabou e o coletor foi finalizado nesta chamada.
func (c *Collector) Tick() bool {
	if c.state == StateSubmitted {
		return false
	}
	if c.remaining > 1 {
		c.remaining--
		return false
	}
	c.remaining = 0
	if c.state == StateConfirmed && c.confirmed != nil {
		c.submit(*c.confirmed)
	} else {
		c.submit(domain.SkipBet(c.event.ID))
	}
	return true
}

func (c *Collector) submit(b domain.Bet) {
	c.result = domain.PlayerBet{Bet: b, PlayerID: c.playerID}
	c.state = StateSubmitted
}

// ParseAmount converte o texto digitado; não numérico vira ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
