package clients

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory client repository for tests.
type MemoryRepo struct {
	mu      sync.Mutex
	clients map[string]Client
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{clients: map[string]Client{}}
}

func (r *MemoryRepo) Create(ctx context.Context, c Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return Client{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, c Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c.ID]; !ok {
		return ErrNotFound
	}
	r.clients[c.ID] = c
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[id]; !ok {
		return ErrNotFound
	}
	delete(r.clients, id)
	return nil
}
