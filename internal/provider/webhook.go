package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"voicecampaign-platform/internal/calls"
	"voicecampaign-platform/internal/contacts"
	"voicecampaign-platform/internal/credits"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Provider-Signature"

var (
	ErrBadSignature = errors.New("provider: bad webhook signature")
	ErrBadPayload   = errors.New("provider: bad webhook payload")
)

// VerifySignature checks the provider's HMAC over the raw body.
// hmac.Equal keeps the comparison constant-time.
func VerifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(mac.Sum(nil), got)
}

// CallEvent is the provider's call-completed notification.
type CallEvent struct {
	Event string `json:"event"` // "call.completed"

	ProviderCallID string `json:"call_id"`
	BatchCallID    string `json:"batch_call_id"`
	CampaignID     string `json:"campaign_id"`
	ClientID       string `json:"client_id"`
	ContactID      string `json:"contact_id"`
	To             string `json:"to"`

	Status          string `json:"status"` // maps onto calls.Status
	DurationSeconds int    `json:"duration_seconds"`
}

type contactUpdater interface {
	SetCallStatus(ctx context.Context, campaignID, contactID string, status contacts.CallStatus) error
}

type usageDebiter interface {
	DebitUsage(ctx context.Context, clientID string, req credits.DebitRequest) (credits.LedgerEntry, credits.Balance, error)
}

// WebhookProcessor applies provider call events: records the call, updates
// the contact, and debits the client's minutes.
type WebhookProcessor struct {
	secret   string
	calls    calls.Repository
	contacts contactUpdater
	credits  usageDebiter
	log      *slog.Logger
	clock    func() time.Time
}

func NewWebhookProcessor(secret string, callRepo calls.Repository, contactSvc contactUpdater, creditSvc usageDebiter, log *slog.Logger) *WebhookProcessor {
	return &WebhookProcessor{
		secret:   secret,
		calls:    callRepo,
		contacts: contactSvc,
		credits:  creditSvc,
		log:      log,
		clock:    time.Now,
	}
}

// Process verifies the signature and applies a call event. The raw body is
// required because the signature covers the exact bytes on the wire.
func (p *WebhookProcessor) Process(ctx context.Context, body []byte, signature string) error {
	if !VerifySignature(p.secret, body, signature) {
		return ErrBadSignature
	}

	var ev CallEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ErrBadPayload
	}
	if ev.Event != "call.completed" {
		// Unknown events are acknowledged, not failed: the provider
		// retries failures and we cannot handle these any better later.
		p.log.InfoContext(ctx, "ignoring webhook event", "event", ev.Event)
		return nil
	}
	if ev.CampaignID == "" || ev.ContactID == "" || ev.ClientID == "" {
		return ErrBadPayload
	}
	// The provider call id keys the billing debit; without it, distinct
	// calls would collapse onto one idempotency key.
	if ev.ProviderCallID == "" {
		return ErrBadPayload
	}

	status := mapCallStatus(ev.Status)
	call := calls.Call{
		ID:              uuid.NewString(),
		CampaignID:      ev.CampaignID,
		ContactID:       ev.ContactID,
		BatchCallID:     ev.BatchCallID,
		To:              ev.To,
		Status:          status,
		DurationSeconds: ev.DurationSeconds,
		ProviderCallID:  ev.ProviderCallID,
		CreatedAt:       p.clock().UTC(),
	}
	if err := p.calls.Insert(ctx, call); err != nil {
		return err
	}

	contactStatus := contacts.CallStatusFailed
	if status == calls.StatusCompleted {
		contactStatus = contacts.CallStatusCompleted
	}
	if err := p.contacts.SetCallStatus(ctx, ev.CampaignID, ev.ContactID, contactStatus); err != nil {
		// Contact may have been deleted mid-batch; the call record stands.
		p.log.WarnContext(ctx, "webhook contact update failed",
			"campaign_id", ev.CampaignID, "contact_id", ev.ContactID, "error", err)
	}

	if minutes := call.BilledMinutes(); minutes > 0 {
		_, _, err := p.credits.DebitUsage(ctx, ev.ClientID, credits.DebitRequest{
			Minutes:        minutes,
			ExternalRef:    call.ID,
			IdempotencyKey: "call:" + ev.ProviderCallID,
		})
		if err != nil && !errors.Is(err, credits.ErrInsufficientCredit) {
			return err
		}
		if errors.Is(err, credits.ErrInsufficientCredit) {
			// The call already happened; log the shortfall instead of
			// rejecting the webhook.
			p.log.WarnContext(ctx, "client balance exhausted by call",
				"client_id", ev.ClientID, "call_id", call.ID, "minutes", minutes)
		}
	}
	return nil
}

func mapCallStatus(s string) calls.Status {
	switch s {
	case "completed":
		return calls.StatusCompleted
	case "no_answer":
		return calls.StatusNoAnswer
	case "busy":
		return calls.StatusBusy
	default:
		return calls.StatusFailed
	}
}
