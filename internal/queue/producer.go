package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atanko123/Scripts/internal/model"
)

// Pusher is the slice of the Redis client the producer needs.
type Pusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) error
}

// Producer announces newly written artifacts on a Redis list.
type Producer struct {
	pusher Pusher
	queue  string
}

// NewProducer pushes onto queue through any Pusher, normally a *RedisClient.
func NewProducer(pusher Pusher, queue string) *Producer {
	return &Producer{
		pusher: pusher,
		queue:  queue,
	}
}

func (p *Producer) PublishArtifact(ctx context.Context, event model.ArtifactEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact event: %w", err)
	}

	return p.pusher.LPush(ctx, p.queue, data)
}
