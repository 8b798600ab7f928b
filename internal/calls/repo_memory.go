package calls

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory call store for tests.
type MemoryRepo struct {
	mu    sync.Mutex
	calls map[string]Call
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{calls: map[string]Call{}}
}

func (r *MemoryRepo) Insert(ctx context.Context, c Call) error {
	if !c.Status.Valid() {
		return ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[c.ID] = c
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[id]
	if !ok {
		return Call{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) List(ctx context.Context, f ListFilter) ([]Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, 0)
	for _, c := range r.calls {
		if f.CampaignID != "" && c.CampaignID != f.CampaignID {
			continue
		}
		if f.BatchCallID != "" && c.BatchCallID != f.BatchCallID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if !f.Since.IsZero() && c.CreatedAt.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && !c.CreatedAt.Before(f.Until) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
