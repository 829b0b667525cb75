package handler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SimulationCache stores rendered simulation-detail payloads. Only
// rolled_back simulations belong here: completed can still advance to
// applied and applied to rolled_back, so caching either would serve a stale
// status for up to the TTL.
type SimulationCache interface {
	Get(ctx context.Context, id string) ([]byte, bool)
	Set(ctx context.Context, id string, payload []byte)
}

type redisSimulationCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSimulationCache(rdb *redis.Client, ttl time.Duration) SimulationCache {
	return &redisSimulationCache{rdb: rdb, ttl: ttl}
}

func (c *redisSimulationCache) Get(ctx context.Context, id string) ([]byte, bool) {
	payload, err := c.rdb.Get(ctx, "simulation:"+id).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Set is best effort: a failed write only costs the next read a DB trip.
func (c *redisSimulationCache) Set(ctx context.Context, id string, payload []byte) {
	_ = c.rdb.Set(ctx, "simulation:"+id, payload, c.ttl).Err()
}
