package dialer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voicecampaign-platform/internal/provider"
	"voicecampaign-platform/pkg/utils"
)

// batchTTL bounds how long batch state lives without updates. A crashed
// process cannot pin a campaign as "running" past this window.
const batchTTL = 24 * time.Hour

// RedisBatchCache stores the active batch id and provider snapshot per
// campaign in Redis with a TTL.
type RedisBatchCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisBatchCache(rdb *redis.Client) *RedisBatchCache {
	return &RedisBatchCache{rdb: rdb, ttl: batchTTL}
}

func activeKey(campaignID string) string   { return "dialer:active:" + campaignID }
func snapshotKey(campaignID string) string { return "dialer:snapshot:" + campaignID }

func (c *RedisBatchCache) SetActive(ctx context.Context, campaignID, batchID string) error {
	if err := c.rdb.Set(ctx, activeKey(campaignID), batchID, c.ttl).Err(); err != nil {
		return fmt.Errorf("set active batch: %w", err)
	}
	return nil
}

func (c *RedisBatchCache) Active(ctx context.Context, campaignID string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, activeKey(campaignID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get active batch: %w", err)
	}
	return val, true, nil
}

func (c *RedisBatchCache) SetSnapshot(ctx context.Context, campaignID string, bc provider.BatchCall) error {
	buf, err := json.Marshal(bc)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, snapshotKey(campaignID), buf, c.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

func (c *RedisBatchCache) Snapshot(ctx context.Context, campaignID string) (provider.BatchCall, bool, error) {
	raw, err := c.rdb.Get(ctx, snapshotKey(campaignID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return provider.BatchCall{}, false, nil
	}
	if err != nil {
		return provider.BatchCall{}, false, fmt.Errorf("get snapshot: %w", err)
	}
	var bc provider.BatchCall
	if err := json.Unmarshal(raw, &bc); err != nil {
		return provider.BatchCall{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return bc, true, nil
}

func (c *RedisBatchCache) Clear(ctx context.Context, campaignID string) error {
	if err := c.rdb.Del(ctx, activeKey(campaignID), snapshotKey(campaignID)).Err(); err != nil {
		return fmt.Errorf("clear batch cache: %w", err)
	}
	return nil
}

// RedisCapLimiter enforces per-client batch concurrency with an atomic
// counter in Redis.
type RedisCapLimiter struct {
	rdb   *redis.Client
	limit int
}

func NewRedisCapLimiter(rdb *redis.Client, limit int) *RedisCapLimiter {
	return &RedisCapLimiter{rdb: rdb, limit: limit}
}

func (l *RedisCapLimiter) Acquire(ctx context.Context, clientID string) (bool, error) {
	return utils.AcquireConcurrencyCap(ctx, l.rdb, "dialer:cap:"+clientID, l.limit, batchTTL)
}

func (l *RedisCapLimiter) Release(ctx context.Context, clientID string) error {
	return utils.ReleaseConcurrencyCap(ctx, l.rdb, "dialer:cap:"+clientID)
}
