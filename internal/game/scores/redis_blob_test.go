package scores

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/party-bet/internal/game/domain"
)

func TestRedisBlobRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	blob := NewRedisBlob(rdb, "sportsBetHighScores")
	if _, err := blob.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty key: %v", err)
	}

	s := NewStore(context.Background(), blob, zap.NewNop())
	s.Merge(context.Background(), []domain.Player{player("Ana", "1160")})

	got, err := mr.Get("sportsBetHighScores")
	if err != nil {
		t.Fatal(err)
	}
	if got != `[{"name":"Ana","score":1160}]` {
		t.Errorf("stored = %s", got)
	}

	reloaded := NewStore(context.Background(), blob, zap.NewNop())
	if top := reloaded.Top(); len(top) != 1 || top[0].Name != "Ana" {
		t.Errorf("reloaded = %v", top)
	}
}

func TestRedisBlobUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	s := NewStore(context.Background(), NewRedisBlob(rdb, "k"), zap.NewNop())
	if s.Warning() == "" {
		t.Error("expected degraded store")
	}
	if top := s.Merge(context.Background(), []domain.Player{player("Ana", "10")}); len(top) != 1 {
		t.Errorf("top = %v", top)
	}
}
