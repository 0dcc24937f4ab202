package scores

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisBlob guarda o placar em uma única chave, sem TTL
type RedisBlob struct {
	R   *redis.Client
	Key string
}

func NewRedisBlob(r *redis.Client, key string) *RedisBlob {
	return &RedisBlob{R: r, Key: key}
}

func (b *RedisBlob) Load(ctx context.Context) ([]byte, error) {
	raw, err := b.R.Get(ctx, b.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (b *RedisBlob) Save(ctx context.Context, blob []byte) error {
	return b.R.Set(ctx, b.Key, blob, 0).Err()
}
