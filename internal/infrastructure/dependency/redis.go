package dependency

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPinger sends PING over a short-lived client.
type RedisPinger struct{}

// Ping connects to address (host:port) and issues PING.
func (RedisPinger) Ping(ctx context.Context, address string) error {
	client := redis.NewClient(&redis.Options{
		Addr:       address,
		MaxRetries: -1,
	})
	defer client.Close()

	return client.Ping(ctx).Err()
}
