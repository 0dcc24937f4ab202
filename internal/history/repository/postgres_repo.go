package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/party-bet/pkg/contracts/events"
)

// PostgresRepo grava o histórico de rodadas resolvidas
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS round_history (
  message_id    TEXT PRIMARY KEY,
  session_id    TEXT NOT NULL,
  round         INT  NOT NULL,
  event_id      TEXT NOT NULL,
  question      TEXT NOT NULL,
  outcome_key   TEXT NOT NULL,
  outcome_label TEXT NOT NULL,
  resolved_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS round_bets (
  message_id  TEXT NOT NULL REFERENCES round_history(message_id),
  player_id   INT  NOT NULL,
  name        TEXT NOT NULL,
  option_key  TEXT NOT NULL,
  amount      NUMERIC NOT NULL,
  status      TEXT NOT NULL,
  new_balance NUMERIC NOT NULL,
  PRIMARY KEY (message_id, player_id)
);
-- sem escala fixa: valor e saldo são gravados com todas as casas
ALTER TABLE round_bets ALTER COLUMN amount TYPE NUMERIC, ALTER COLUMN new_balance TYPE NUMERIC;`

// EnsureSchema cria as tabelas se ainda não existirem
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

// SaveRound grava a rodada e as apostas numa transação.
// Reentregas do Kafka (mesmo message_id) são ignoradas.
func (r *PostgresRepo) SaveRound(ctx context.Context, e events.RoundResolved) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const qRound = `
		INSERT INTO round_history
		  (message_id, session_id, round, event_id, question, outcome_key, outcome_label, resolved_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (message_id) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, qRound,
		e.MessageID, e.SessionID, e.Round, e.EventID, e.Question,
		e.OutcomeKey, e.OutcomeLabel, e.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tx.Commit()
	}

	const qBet = `
		INSERT INTO round_bets
		  (message_id, player_id, name, option_key, amount, status, new_balance)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7)
	`
	for _, p := range e.Players {
		if _, err = tx.ExecContext(ctx, qBet,
			e.MessageID, p.PlayerID, p.Name, p.OptionKey, p.Amount, p.Status, p.NewBalance,
		); err != nil {
			return fmt.Errorf("insert bet: %w", err)
		}
	}
	return tx.Commit()
}
