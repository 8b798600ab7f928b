package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, log), repo
}

func TestRecordFillsDefaults(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, Entry{
		ActorID:  "user-1",
		Action:   "create",
		Resource: "campaign",
		Status:   StatusSuccess,
	}))

	require.Len(t, repo.entries, 1)
	got := repo.entries[0]
	require.NotEmpty(t, got.ID)
	require.Equal(t, "user", got.ActorType)
	require.Equal(t, SeverityInfo, got.Severity)
	require.Equal(t, CategoryData, got.Category)
	require.False(t, got.CreatedAt.IsZero())
}

func TestRecordValidates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.ErrorIs(t, svc.Record(ctx, Entry{Action: "create", Resource: "campaign", Status: StatusSuccess}), ErrInvalidArgument)
	require.ErrorIs(t, svc.Record(ctx, Entry{ActorID: "u", Resource: "campaign", Status: StatusSuccess}), ErrInvalidArgument)
	require.ErrorIs(t, svc.Record(ctx, Entry{ActorID: "u", Action: "create", Resource: "campaign", Status: "maybe"}), ErrInvalidArgument)

	// Rejection statuses are first-class.
	require.NoError(t, svc.Record(ctx, Entry{ActorID: "u", Action: "access_denied", Resource: "/admin/users", Status: StatusUnauthorized}))
	require.NoError(t, svc.Record(ctx, Entry{ActorID: "u", Action: "access_denied", Resource: "/admin/users", Status: StatusForbidden}))
}

func TestLogSwallowsRepositoryErrors(t *testing.T) {
	svc, _ := newTestService()

	// Invalid entries must not panic or surface an error through Log.
	svc.Log(context.Background(), Entry{})
}

func TestActivitySummaryGroupsPerActionResource(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Three login attempts by the same user: two succeed, one fails.
	logins := []Status{StatusSuccess, StatusFailed, StatusSuccess}
	for i, st := range logins {
		require.NoError(t, svc.Record(ctx, Entry{
			ActorID:   "user-1",
			Action:    "login",
			Resource:  "session",
			Status:    st,
			Category:  CategorySecurity,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, svc.Record(ctx, Entry{
		ActorID: "user-1", Action: "create", Resource: "campaign",
		Status: StatusSuccess, CreatedAt: base.Add(5 * time.Minute),
	}))
	require.NoError(t, svc.Record(ctx, Entry{
		ActorID: "user-2", Action: "login", Resource: "session",
		Status: StatusSuccess, Category: CategorySecurity, CreatedAt: base,
	}))

	groups, err := svc.ActivitySummary(ctx, "user-1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Newest activity first.
	require.Equal(t, "create", groups[0].Action)

	var login ActivityGroup
	for _, g := range groups {
		if g.Action == "login" {
			login = g
		}
	}
	require.Equal(t, "session", login.Resource)
	require.Equal(t, 3, login.TotalAttempts)
	require.Equal(t, 2, login.SuccessfulAttempts)
	require.Equal(t, 1, login.FailedAttempts)
	require.Equal(t, base.Add(2*time.Minute), login.LastActivityAt)
}

func TestSecurityEventsFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Record(ctx, Entry{
		ActorID: "user-1", Action: "login", Resource: "session",
		Status: StatusFailed, Severity: SeverityWarning, Category: CategorySecurity, CreatedAt: base,
	}))
	require.NoError(t, svc.Record(ctx, Entry{
		ActorID: "user-1", Action: "login", Resource: "session",
		Status: StatusSuccess, Category: CategorySecurity, CreatedAt: base.Add(time.Minute),
	}))
	require.NoError(t, svc.Record(ctx, Entry{
		ActorID: "user-1", Action: "create", Resource: "campaign",
		Status: StatusSuccess, CreatedAt: base.Add(2 * time.Minute),
	}))
	require.NoError(t, svc.Record(ctx, Entry{
		ActorID: "anonymous", Action: "access_denied", Resource: "/admin/users",
		Status: StatusUnauthorized, Severity: SeverityWarning, Category: CategorySecurity,
		CreatedAt: base.Add(3 * time.Minute),
	}))

	// Routine data-category CRUD never shows up.
	events, err := svc.SecurityEvents(ctx, SecurityFilter{})
	require.NoError(t, err)
	require.Len(t, events, 3)

	failed, err := svc.SecurityEvents(ctx, SecurityFilter{Status: StatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, SeverityWarning, failed[0].Severity)

	rejected, err := svc.SecurityEvents(ctx, SecurityFilter{Status: StatusUnauthorized})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	require.Equal(t, "/admin/users", rejected[0].Resource)
}

func TestSecurityEventsMatchAnySignal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// A critical entry belongs in the feed no matter its category or action.
	require.NoError(t, svc.Record(ctx, Entry{
		ActorID: "admin-1", Action: "credit_adjust", Resource: "client", ResourceID: "client-1",
		Status: StatusFailed, Severity: SeverityCritical, Category: CategoryBilling, CreatedAt: base,
	}))
	// A forbidden entry matches on status alone.
	require.NoError(t, svc.Record(ctx, Entry{
		ActorID: "user-1", Action: "purge", Resource: "audit_logs",
		Status: StatusForbidden, Category: CategorySystem, CreatedAt: base.Add(time.Minute),
	}))
	// A security action matches even at info severity with success status.
	require.NoError(t, svc.Record(ctx, Entry{
		ActorID: "user-1", Action: "change_password", Resource: "user",
		Status: StatusSuccess, Category: CategorySecurity, CreatedAt: base.Add(2 * time.Minute),
	}))
	// Routine success under a non-security action stays out.
	require.NoError(t, svc.Record(ctx, Entry{
		ActorID: "user-1", Action: "update", Resource: "campaign",
		Status: StatusSuccess, CreatedAt: base.Add(3 * time.Minute),
	}))

	events, err := svc.SecurityEvents(ctx, SecurityFilter{})
	require.NoError(t, err)
	require.Len(t, events, 3)

	critical, err := svc.SecurityEvents(ctx, SecurityFilter{Severity: SeverityCritical})
	require.NoError(t, err)
	require.Len(t, critical, 1)
	require.Equal(t, "credit_adjust", critical[0].Action)
	require.Equal(t, CategoryBilling, critical[0].Category)
}

func TestPurgeBefore(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Record(ctx, Entry{
			ActorID: "user-1", Action: "login", Resource: "session",
			Status: StatusSuccess, CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}))
	}

	removed, err := svc.PurgeBefore(ctx, base.Add(2*24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)
	require.Len(t, repo.entries, 3)

	_, err = svc.PurgeBefore(ctx, time.Time{})
	require.ErrorIs(t, err, ErrInvalidArgument)
}
