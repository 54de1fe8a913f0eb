package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const throttleTTL = time.Second

// HeartbeatThrottle coalesces device heartbeat writes via Redis.
// Key format: hb:<device_id>
//
// A terminal pinging several times a second produces one persisted heartbeat
// per TTL; intermediate pings are answered from the stored snapshot. The TTL
// is far below any sane liveness window, so derived liveness is unaffected.
type HeartbeatThrottle struct {
	client *redis.Client
}

// NewHeartbeatThrottle creates a HeartbeatThrottle wrapping the given client.
func NewHeartbeatThrottle(client *redis.Client) *HeartbeatThrottle {
	return &HeartbeatThrottle{client: client}
}

// Allow reports whether a persisted heartbeat for the device is due. The
// first caller inside a TTL window wins; everyone else is coalesced.
func (t *HeartbeatThrottle) Allow(ctx context.Context, deviceID string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(deviceID), "1", throttleTTL).Result()
	if err != nil {
		return false, fmt.Errorf("heartbeat throttle: %w", err)
	}
	return ok, nil
}

func (t *HeartbeatThrottle) key(deviceID string) string {
	return fmt.Sprintf("hb:%s", deviceID)
}
