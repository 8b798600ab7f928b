package accounts

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory account repository for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu    sync.Mutex
	users map[string]User // keyed by id
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: map[string]User{}}
}

func (r *MemoryRepo) Create(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) List(ctx context.Context, role string) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *MemoryRepo) UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error {
	return r.update(id, func(u *User) {
		u.PasswordHash = passwordHash
		u.UpdatedAt = now
	})
}

func (r *MemoryRepo) TouchLastLogin(ctx context.Context, id string, now time.Time) error {
	return r.update(id, func(u *User) {
		t := now
		u.LastLoginAt = &t
		u.UpdatedAt = now
	})
}

func (r *MemoryRepo) SetActive(ctx context.Context, id string, active bool, now time.Time) error {
	return r.update(id, func(u *User) {
		u.Active = active
		u.UpdatedAt = now
	})
}

func (r *MemoryRepo) update(id string, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(&u)
	r.users[id] = u
	return nil
}
