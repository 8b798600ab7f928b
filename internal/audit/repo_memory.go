package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory audit store for tests.
type MemoryRepo struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Append(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryRepo) SecurityEvents(ctx context.Context, f SecurityFilter) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0)
	for _, e := range r.entries {
		if !isSecurityEvent(e) {
			continue
		}
		if f.ActorID != "" && e.ActorID != f.ActorID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.Severity != "" && e.Severity != f.Severity {
			continue
		}
		if !f.Since.IsZero() && e.CreatedAt.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && !e.CreatedAt.Before(f.Until) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// isSecurityEvent mirrors the Postgres predicate: rejection status OR
// critical severity OR a security action name.
func isSecurityEvent(e Entry) bool {
	if e.Status == StatusUnauthorized || e.Status == StatusForbidden {
		return true
	}
	if e.Severity == SeverityCritical {
		return true
	}
	for _, a := range SecurityActions {
		if e.Action == a {
			return true
		}
	}
	return false
}

func (r *MemoryRepo) ActivitySummary(ctx context.Context, actorID string, since, until time.Time) ([]ActivityGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	type key struct{ action, resource string }
	groups := map[key]*ActivityGroup{}
	for _, e := range r.entries {
		if e.ActorID != actorID {
			continue
		}
		if !since.IsZero() && e.CreatedAt.Before(since) {
			continue
		}
		if !until.IsZero() && !e.CreatedAt.Before(until) {
			continue
		}
		k := key{e.Action, e.Resource}
		g, ok := groups[k]
		if !ok {
			g = &ActivityGroup{Action: e.Action, Resource: e.Resource}
			groups[k] = g
		}
		g.TotalAttempts++
		if e.Status == StatusSuccess {
			g.SuccessfulAttempts++
		} else {
			g.FailedAttempts++
		}
		if e.CreatedAt.After(g.LastActivityAt) {
			g.LastActivityAt = e.CreatedAt
		}
	}

	out := make([]ActivityGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	return out, nil
}

func (r *MemoryRepo) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	var removed int64
	for _, e := range r.entries {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return removed, nil
}
