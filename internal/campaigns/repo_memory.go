package campaigns

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory campaign repository for tests.
type MemoryRepo struct {
	mu        sync.Mutex
	campaigns map[string]Campaign
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{campaigns: map[string]Campaign{}}
}

func (r *MemoryRepo) Create(ctx context.Context, c Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[c.ID] = c
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, clientID, id string) (Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.ClientID != clientID {
		return Campaign{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) List(ctx context.Context, clientID string) ([]Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Campaign, 0)
	for _, c := range r.campaigns {
		if c.ClientID == clientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, c Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.campaigns[c.ID]
	if !ok || existing.ClientID != c.ClientID {
		return ErrNotFound
	}
	// Lifecycle fields are only mutated via Publish.
	c.Status = existing.Status
	c.PublishedVersion = existing.PublishedVersion
	r.campaigns[c.ID] = c
	return nil
}

func (r *MemoryRepo) Publish(ctx context.Context, clientID, id string, now time.Time) (Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.ClientID != clientID {
		return Campaign{}, ErrNotFound
	}
	c.Status = StatusPublished
	c.PublishedVersion++
	c.UpdatedAt = now
	r.campaigns[id] = c
	return c, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, clientID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.ClientID != clientID {
		return ErrNotFound
	}
	delete(r.campaigns, id)
	return nil
}
