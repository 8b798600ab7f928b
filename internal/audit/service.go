// Package audit provides append-only audit logging with security-event and
// activity-summary queries.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidArgument = errors.New("audit: invalid argument")
)

type Repository interface {
	Append(ctx context.Context, e Entry) error
	SecurityEvents(ctx context.Context, f SecurityFilter) ([]Entry, error)
	ActivitySummary(ctx context.Context, actorID string, since, until time.Time) ([]ActivityGroup, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	repo  Repository
	log   *slog.Logger
	clock func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log, clock: time.Now}
}

// Record validates and appends an entry, returning any storage error.
func (s *Service) Record(ctx context.Context, e Entry) error {
	if e.ActorID == "" || e.Action == "" || e.Resource == "" {
		return ErrInvalidArgument
	}
	if !IsValidStatus(e.Status) {
		return ErrInvalidArgument
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ActorType == "" {
		e.ActorType = "user"
	}
	if e.Severity == "" {
		e.Severity = SeverityInfo
	}
	if e.Category == "" {
		e.Category = CategoryData
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Log is fire-and-forget: audit failures never fail the request that
// triggered them. Errors are logged and swallowed.
func (s *Service) Log(ctx context.Context, e Entry) {
	if err := s.Record(ctx, e); err != nil {
		s.log.ErrorContext(ctx, "audit append failed",
			"action", e.Action, "resource", e.Resource, "error", err)
	}
}

func (s *Service) SecurityEvents(ctx context.Context, f SecurityFilter) ([]Entry, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	return s.repo.SecurityEvents(ctx, f)
}

func (s *Service) ActivitySummary(ctx context.Context, actorID string, since, until time.Time) ([]ActivityGroup, error) {
	if actorID == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ActivitySummary(ctx, actorID, since, until)
}

// PurgeBefore deletes entries older than the cutoff and returns how many
// rows were removed.
func (s *Service) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, ErrInvalidArgument
	}
	return s.repo.PurgeBefore(ctx, cutoff)
}
