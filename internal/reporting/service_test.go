package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voicecampaign-platform/internal/calls"
)

func seedCalls(t *testing.T, repo *calls.MemoryRepo) time.Time {
	t.Helper()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fixtures := []calls.Call{
		{ID: "c1", CampaignID: "camp-1", To: "+14155550001", Status: calls.StatusCompleted, DurationSeconds: 65, CreatedAt: base},
		{ID: "c2", CampaignID: "camp-1", To: "+14155550002", Status: calls.StatusCompleted, DurationSeconds: 115, CreatedAt: base.Add(time.Minute)},
		{ID: "c3", CampaignID: "camp-1", To: "+14155550003", Status: calls.StatusFailed, DurationSeconds: 0, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "c4", CampaignID: "camp-1", To: "+14155550004", Status: calls.StatusNoAnswer, DurationSeconds: 0, CreatedAt: base.Add(3 * time.Minute)},
		{ID: "c5", CampaignID: "camp-2", To: "+14155550005", Status: calls.StatusCompleted, DurationSeconds: 30, CreatedAt: base},
	}
	for _, c := range fixtures {
		require.NoError(t, repo.Insert(context.Background(), c))
	}
	return base
}

func TestCampaignSummary(t *testing.T) {
	repo := calls.NewMemoryRepo()
	base := seedCalls(t, repo)
	svc := NewService(repo)

	sum, err := svc.CampaignSummary(context.Background(), "camp-1", time.Time{}, time.Time{})
	require.NoError(t, err)

	require.Equal(t, 4, sum.TotalCalls)
	require.Equal(t, 2, sum.CompletedCalls)
	require.Equal(t, 1, sum.FailedCalls)
	require.Equal(t, 1, sum.NoAnswerCalls)
	require.Equal(t, 180, sum.TotalDurationSeconds)
	// 65s and 115s each bill as 2 minutes; zero-duration calls bill nothing.
	require.Equal(t, int64(4), sum.BilledMinutes)
	require.Equal(t, 90, sum.AverageDurationSeconds)
	require.NotNil(t, sum.LastCallAt)
	require.Equal(t, base.Add(3*time.Minute), *sum.LastCallAt)
}

func TestCampaignSummaryWindow(t *testing.T) {
	repo := calls.NewMemoryRepo()
	base := seedCalls(t, repo)
	svc := NewService(repo)

	sum, err := svc.CampaignSummary(context.Background(), "camp-1", base.Add(time.Minute), base.Add(3*time.Minute))
	require.NoError(t, err)
	require.Equal(t, 2, sum.TotalCalls)
	require.Equal(t, 1, sum.CompletedCalls)
	require.Equal(t, 1, sum.FailedCalls)
}

func TestCampaignSummaryEmpty(t *testing.T) {
	svc := NewService(calls.NewMemoryRepo())

	sum, err := svc.CampaignSummary(context.Background(), "camp-9", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Zero(t, sum.TotalCalls)
	require.Zero(t, sum.AverageDurationSeconds)
	require.Nil(t, sum.LastCallAt)

	_, err = svc.CampaignSummary(context.Background(), "", time.Time{}, time.Time{})
	require.ErrorIs(t, err, ErrInvalidArgument)
}
