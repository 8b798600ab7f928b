package dialer

import (
	"context"
	"sync"

	"voicecampaign-platform/internal/provider"
)

// MemoryBatchCache is an in-memory BatchCache for tests and single-node dev
// runs without Redis.
type MemoryBatchCache struct {
	mu        sync.Mutex
	active    map[string]string
	snapshots map[string]provider.BatchCall
}

func NewMemoryBatchCache() *MemoryBatchCache {
	return &MemoryBatchCache{
		active:    map[string]string{},
		snapshots: map[string]provider.BatchCall{},
	}
}

func (c *MemoryBatchCache) SetActive(ctx context.Context, campaignID, batchID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[campaignID] = batchID
	return nil
}

func (c *MemoryBatchCache) Active(ctx context.Context, campaignID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.active[campaignID]
	return id, ok, nil
}

func (c *MemoryBatchCache) SetSnapshot(ctx context.Context, campaignID string, bc provider.BatchCall) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[campaignID] = bc
	return nil
}

func (c *MemoryBatchCache) Snapshot(ctx context.Context, campaignID string) (provider.BatchCall, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bc, ok := c.snapshots[campaignID]
	return bc, ok, nil
}

func (c *MemoryBatchCache) Clear(ctx context.Context, campaignID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, campaignID)
	delete(c.snapshots, campaignID)
	return nil
}

// MemoryCapLimiter is an in-memory CapLimiter counterpart.
type MemoryCapLimiter struct {
	mu     sync.Mutex
	limit  int
	counts map[string]int
}

func NewMemoryCapLimiter(limit int) *MemoryCapLimiter {
	return &MemoryCapLimiter{limit: limit, counts: map[string]int{}}
}

func (l *MemoryCapLimiter) Acquire(ctx context.Context, clientID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts[clientID] >= l.limit {
		return false, nil
	}
	l.counts[clientID]++
	return true, nil
}

func (l *MemoryCapLimiter) Release(ctx context.Context, clientID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts[clientID] > 0 {
		l.counts[clientID]--
	}
	return nil
}
