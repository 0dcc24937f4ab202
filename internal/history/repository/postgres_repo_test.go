package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/party-bet/internal/shared/db"
	"github.com/radieske/party-bet/pkg/contracts/events"
)

// Requer um Postgres real: POSTGRES_TEST_DSN=postgres://... go test ./internal/history/...
func TestSaveRoundIdempotent(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	pg, err := db.ConnectPostgres(dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer pg.Close()

	ctx := context.Background()
	repo := NewPostgresRepo(pg)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	ev := events.RoundResolved{
		MessageID:    uuid.NewString(),
		SessionID:    uuid.NewString(),
		Round:        1,
		EventID:      "pk-1",
		Question:     "Will the penalty kick succeed?",
		OutcomeKey:   "yes",
		OutcomeLabel: "Yes",
		Players: []events.PlayerRound{
			{PlayerID: 0, Name: "Ana", OptionKey: "yes", Amount: "200", Status: "WIN", NewBalance: "1160"},
		},
		ResolvedAt: time.Now().UTC(),
	}
	for i := 0; i < 2; i++ {
		if err := repo.SaveRound(ctx, ev); err != nil {
			t.Fatalf("save #%d: %v", i+1, err)
		}
	}

	var n int
	if err := pg.QueryRowContext(ctx, `SELECT count(*) FROM round_bets WHERE message_id = $1`, ev.MessageID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("round_bets rows = %d, want 1", n)
	}
}

func TestSaveRoundKeepsFractionalAmounts(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	pg, err := db.ConnectPostgres(dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer pg.Close()

	ctx := context.Background()
	repo := NewPostgresRepo(pg)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	// 0.005 a 1.85 paga 0.00425: mais casas do que centavos
	ev := events.RoundResolved{
		MessageID:    uuid.NewString(),
		SessionID:    uuid.NewString(),
		Round:        1,
		EventID:      "pk-1",
		Question:     "Will the penalty kick succeed?",
		OutcomeKey:   "yes",
		OutcomeLabel: "Yes",
		Players: []events.PlayerRound{
			{PlayerID: 0, Name: "Ana", OptionKey: "yes", Amount: "0.005", Status: "WIN", NewBalance: "1000.00425"},
		},
		ResolvedAt: time.Now().UTC(),
	}
	if err := repo.SaveRound(ctx, ev); err != nil {
		t.Fatal(err)
	}

	var amount, balance string
	err = pg.QueryRowContext(ctx,
		`SELECT amount::text, new_balance::text FROM round_bets WHERE message_id = $1`, ev.MessageID).
		Scan(&amount, &balance)
	if err != nil {
		t.Fatal(err)
	}
	if amount != "0.005" || balance != "1000.00425" {
		t.Errorf("stored amount = %s new_balance = %s", amount, balance)
	}
}
