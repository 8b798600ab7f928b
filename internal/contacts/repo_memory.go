package contacts

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory contact repository for tests.
type MemoryRepo struct {
	mu       sync.Mutex
	contacts map[string]Contact
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{contacts: map[string]Contact{}}
}

func (r *MemoryRepo) Create(ctx context.Context, c Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.contacts {
		if existing.CampaignID == c.CampaignID && existing.Phone == c.Phone {
			return ErrDuplicatePhone
		}
	}
	r.contacts[c.ID] = c
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, campaignID, id string) (Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.CampaignID != campaignID {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) List(ctx context.Context, campaignID string, status CallStatus) ([]Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Contact, 0)
	for _, c := range r.contacts {
		if c.CampaignID != campaignID {
			continue
		}
		if status != "" && c.CallStatus != status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) CountByStatus(ctx context.Context, campaignID string, status CallStatus) (int, error) {
	list, err := r.List(ctx, campaignID, status)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (r *MemoryRepo) Update(ctx context.Context, c Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.contacts[c.ID]
	if !ok || existing.CampaignID != c.CampaignID {
		return ErrNotFound
	}
	c.CallStatus = existing.CallStatus
	c.Attempts = existing.Attempts
	r.contacts[c.ID] = c
	return nil
}

func (r *MemoryRepo) MarkDialing(ctx context.Context, campaignID string, ids []string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		c, ok := r.contacts[id]
		if !ok || c.CampaignID != campaignID {
			continue
		}
		c.CallStatus = CallStatusInProgress
		c.Attempts++
		c.UpdatedAt = now
		r.contacts[id] = c
	}
	return nil
}

func (r *MemoryRepo) SetCallStatus(ctx context.Context, campaignID, id string, status CallStatus, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.CampaignID != campaignID {
		return ErrNotFound
	}
	c.CallStatus = status
	c.UpdatedAt = now
	r.contacts[id] = c
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, campaignID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.CampaignID != campaignID {
		return ErrNotFound
	}
	delete(r.contacts, id)
	return nil
}
