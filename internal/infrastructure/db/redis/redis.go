package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	clientName     = "pos-portal"
	defaultAddr    = "localhost:6379"
	defaultTimeout = 5 * time.Second
)

// Config captures the settings for the portal's Redis connection. Redis backs
// only the heartbeat throttle, so a single logical database is enough.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

func (c Config) addr() string {
	if c.Addr == "" {
		return defaultAddr
	}
	return c.Addr
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// clientOptions builds the go-redis options for the portal. The client name
// makes the throttle's connections identifiable in CLIENT LIST when debugging
// heartbeat coalescing.
func clientOptions(cfg Config) *redis.Options {
	return &redis.Options{
		Addr:       cfg.addr(),
		DB:         cfg.DB,
		ClientName: clientName,
	}
}

// Connect initialises the portal's Redis client and validates connectivity
// with a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(clientOptions(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
