package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSink publica os envelopes no canal Redis Pub/Sub;
// cada réplica da API repassa para os seus clientes via StartRedisSubscriber
type RedisSink struct {
	R       *redis.Client
	Channel string
}

func NewRedisSink(r *redis.Client, channel string) *RedisSink {
	return &RedisSink{R: r, Channel: channel}
}

func (s *RedisSink) Send(ctx context.Context, msg []byte) error {
	return s.R.Publish(ctx, s.Channel, msg).Err()
}

// StartRedisSubscriber inicia uma goroutine que escuta o canal Redis Pub/Sub
// e repassa os envelopes recebidos para todos os clientes do Hub
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg == nil {
					continue
				}
				var env ServerMsg
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Warn("ws subscriber unmarshal error", zap.Error(err))
					continue
				}
				hub.Broadcast([]byte(msg.Payload))
			}
		}
	}()
}
