package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"voicecampaign-platform/internal/calls"
	"voicecampaign-platform/internal/contacts"
	"voicecampaign-platform/internal/credits"
)

const testSecret = "webhook-secret"

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type fakeContactUpdater struct {
	campaignID string
	contactID  string
	status     contacts.CallStatus
	err        error
}

func (f *fakeContactUpdater) SetCallStatus(ctx context.Context, campaignID, contactID string, status contacts.CallStatus) error {
	f.campaignID, f.contactID, f.status = campaignID, contactID, status
	return f.err
}

type fakeDebiter struct {
	clientID string
	req      credits.DebitRequest
	err      error
}

func (f *fakeDebiter) DebitUsage(ctx context.Context, clientID string, req credits.DebitRequest) (credits.LedgerEntry, credits.Balance, error) {
	f.clientID, f.req = clientID, req
	return credits.LedgerEntry{}, credits.Balance{}, f.err
}

func newTestProcessor(callRepo calls.Repository, cu *fakeContactUpdater, d *fakeDebiter) *WebhookProcessor {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWebhookProcessor(testSecret, callRepo, cu, d, log)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"call.completed"}`)
	require.True(t, VerifySignature(testSecret, body, sign(body)))
	require.False(t, VerifySignature(testSecret, body, sign([]byte("other"))))
	require.False(t, VerifySignature(testSecret, body, "not-hex"))
}

func TestProcessCallCompleted(t *testing.T) {
	callRepo := calls.NewMemoryRepo()
	cu := &fakeContactUpdater{}
	d := &fakeDebiter{}
	p := newTestProcessor(callRepo, cu, d)

	body, _ := json.Marshal(CallEvent{
		Event:           "call.completed",
		ProviderCallID:  "pc-1",
		BatchCallID:     "batch-1",
		CampaignID:      "camp-1",
		ClientID:        "client-1",
		ContactID:       "ct-1",
		To:              "+14155552671",
		Status:          "completed",
		DurationSeconds: 95,
	})

	require.NoError(t, p.Process(context.Background(), body, sign(body)))

	recorded, err := callRepo.List(context.Background(), calls.ListFilter{CampaignID: "camp-1"})
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	require.Equal(t, calls.StatusCompleted, recorded[0].Status)
	require.Equal(t, "pc-1", recorded[0].ProviderCallID)

	require.Equal(t, contacts.CallStatusCompleted, cu.status)
	require.Equal(t, "camp-1", cu.campaignID)

	// 95 seconds bills as 2 minutes, keyed by the provider call id.
	require.Equal(t, "client-1", d.clientID)
	require.EqualValues(t, 2, d.req.Minutes)
	require.Equal(t, "call:pc-1", d.req.IdempotencyKey)
}

func TestProcessFailedCallSkipsBilling(t *testing.T) {
	callRepo := calls.NewMemoryRepo()
	cu := &fakeContactUpdater{}
	d := &fakeDebiter{}
	p := newTestProcessor(callRepo, cu, d)

	body, _ := json.Marshal(CallEvent{
		Event: "call.completed", ProviderCallID: "pc-2", CampaignID: "camp-1",
		ClientID: "client-1", ContactID: "ct-1", Status: "no_answer",
	})

	require.NoError(t, p.Process(context.Background(), body, sign(body)))
	require.Equal(t, contacts.CallStatusFailed, cu.status)
	require.Empty(t, d.clientID, "zero-duration calls are not billed")
}

func TestProcessRejectsMissingProviderCallID(t *testing.T) {
	callRepo := calls.NewMemoryRepo()
	d := &fakeDebiter{}
	p := newTestProcessor(callRepo, &fakeContactUpdater{}, d)

	// Without a call id, two distinct calls would share the billing
	// idempotency key and the second would go unbilled.
	body, _ := json.Marshal(CallEvent{
		Event: "call.completed", CampaignID: "camp-1",
		ClientID: "client-1", ContactID: "ct-1", Status: "completed", DurationSeconds: 61,
	})
	require.ErrorIs(t, p.Process(context.Background(), body, sign(body)), ErrBadPayload)

	recorded, err := callRepo.List(context.Background(), calls.ListFilter{})
	require.NoError(t, err)
	require.Empty(t, recorded)
	require.Empty(t, d.clientID)
}

func TestProcessRejectsBadSignature(t *testing.T) {
	p := newTestProcessor(calls.NewMemoryRepo(), &fakeContactUpdater{}, &fakeDebiter{})

	body := []byte(`{"event":"call.completed"}`)
	require.ErrorIs(t, p.Process(context.Background(), body, "deadbeef"), ErrBadSignature)
}

func TestProcessIgnoresUnknownEvents(t *testing.T) {
	callRepo := calls.NewMemoryRepo()
	p := newTestProcessor(callRepo, &fakeContactUpdater{}, &fakeDebiter{})

	body := []byte(`{"event":"agent.updated"}`)
	require.NoError(t, p.Process(context.Background(), body, sign(body)))

	recorded, err := callRepo.List(context.Background(), calls.ListFilter{})
	require.NoError(t, err)
	require.Empty(t, recorded)
}

func TestProcessToleratesInsufficientCredit(t *testing.T) {
	p := newTestProcessor(calls.NewMemoryRepo(), &fakeContactUpdater{}, &fakeDebiter{err: credits.ErrInsufficientCredit})

	body, _ := json.Marshal(CallEvent{
		Event: "call.completed", ProviderCallID: "pc-3", CampaignID: "camp-1",
		ClientID: "client-1", ContactID: "ct-1", Status: "completed", DurationSeconds: 61,
	})
	require.NoError(t, p.Process(context.Background(), body, sign(body)))
}
