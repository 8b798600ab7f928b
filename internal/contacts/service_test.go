package contacts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateNormalizesPhone(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, "camp-1", CreateRequest{Phone: "+1 (415) 555-2671"})
	require.NoError(t, err)
	require.Equal(t, "+14155552671", c.Phone)
	require.Equal(t, CallStatusPending, c.CallStatus)
	require.Zero(t, c.Attempts)
}

func TestCreateRejectsDuplicateWithinCampaign(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "camp-1", CreateRequest{Phone: "+14155552671"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "camp-1", CreateRequest{Phone: "+14155552671"})
	require.ErrorIs(t, err, ErrDuplicatePhone)

	// Same phone on a different campaign is fine.
	_, err = svc.Create(ctx, "camp-2", CreateRequest{Phone: "+14155552671"})
	require.NoError(t, err)
}

func TestMarkDialingIncrementsAttempts(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, "camp-1", CreateRequest{Phone: "+14155552671"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkDialing(ctx, "camp-1", []string{c.ID}))
	got, err := svc.Get(ctx, "camp-1", c.ID)
	require.NoError(t, err)
	require.Equal(t, CallStatusInProgress, got.CallStatus)
	require.Equal(t, 1, got.Attempts)

	// A second dial attempt bumps the counter again.
	require.NoError(t, svc.MarkDialing(ctx, "camp-1", []string{c.ID}))
	got, err = svc.Get(ctx, "camp-1", c.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Attempts)
}

func TestSetCallStatusValidates(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, "camp-1", CreateRequest{Phone: "+14155552671"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.SetCallStatus(ctx, "camp-1", c.ID, "ringing"), ErrInvalidArgument)
	require.NoError(t, svc.SetCallStatus(ctx, "camp-1", c.ID, CallStatusCompleted))

	got, err := svc.Get(ctx, "camp-1", c.ID)
	require.NoError(t, err)
	require.Equal(t, CallStatusCompleted, got.CallStatus)
}
