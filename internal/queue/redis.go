package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/atanko123/Scripts/internal/config"

	"github.com/go-redis/redis/v8"
)

const pingTimeout = 5 * time.Second

var _ Pusher = (*RedisClient)(nil)

// RedisClient is the connection artifact events are pushed through.
type RedisClient struct {
	client *redis.Client
	addr   string
}

// NewRedisClient connects and pings once so a dead server is reported at
// startup rather than on the first artifact.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*RedisClient, error) {
	addr := cfg.RedisAddr()
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: pingTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", addr, err)
	}

	return &RedisClient{client: rdb, addr: addr}, nil
}

func (r *RedisClient) LPush(ctx context.Context, key string, values ...interface{}) error {
	if err := r.client.LPush(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("failed to push to %s on %s: %w", key, r.addr, err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
