// Package dialer orchestrates batch calls: it validates campaign state,
// reserves dial capacity, dispatches to the calling provider, and tracks the
// active batch per campaign.
package dialer

import (
	"context"
	"errors"
	"log/slog"

	"voicecampaign-platform/internal/agents"
	"voicecampaign-platform/internal/campaigns"
	"voicecampaign-platform/internal/contacts"
	"voicecampaign-platform/internal/numbers"
	"voicecampaign-platform/internal/provider"
)

var (
	ErrNotPublished     = errors.New("dialer: campaign is not published")
	ErrNoContacts       = errors.New("dialer: campaign has no pending contacts")
	ErrNoFromNumber     = errors.New("dialer: client has no active phone number")
	ErrBatchActive      = errors.New("dialer: a batch call is already active for this campaign")
	ErrNoActiveBatch    = errors.New("dialer: no active batch call for this campaign")
	ErrConcurrencyLimit = errors.New("dialer: client concurrency limit reached")
)

type campaignGetter interface {
	Get(ctx context.Context, clientID, id string) (campaigns.Campaign, error)
}

type contactSource interface {
	List(ctx context.Context, campaignID string, status contacts.CallStatus) ([]contacts.Contact, error)
	MarkDialing(ctx context.Context, campaignID string, ids []string) error
}

type agentGetter interface {
	Get(ctx context.Context, id string) (agents.Agent, error)
}

type numberLister interface {
	List(ctx context.Context, clientID string) ([]numbers.PhoneNumber, error)
}

// BatchCache tracks the active batch id and last provider snapshot per
// campaign. Entries expire on their own; a finished batch left behind by a
// crash does not pin the campaign forever.
type BatchCache interface {
	SetActive(ctx context.Context, campaignID, batchID string) error
	Active(ctx context.Context, campaignID string) (string, bool, error)
	SetSnapshot(ctx context.Context, campaignID string, bc provider.BatchCall) error
	Snapshot(ctx context.Context, campaignID string) (provider.BatchCall, bool, error)
	Clear(ctx context.Context, campaignID string) error
}

// CapLimiter bounds how many batches a client may run at once.
type CapLimiter interface {
	Acquire(ctx context.Context, clientID string) (bool, error)
	Release(ctx context.Context, clientID string) error
}

type Service struct {
	campaigns campaignGetter
	contacts  contactSource
	agents    agentGetter
	numbers   numberLister
	provider  provider.CallingProvider
	cache     BatchCache
	limiter   CapLimiter
	log       *slog.Logger
}

func NewService(
	campaignSvc campaignGetter,
	contactSvc contactSource,
	agentSvc agentGetter,
	numberSvc numberLister,
	p provider.CallingProvider,
	cache BatchCache,
	limiter CapLimiter,
	log *slog.Logger,
) *Service {
	return &Service{
		campaigns: campaignSvc,
		contacts:  contactSvc,
		agents:    agentSvc,
		numbers:   numberSvc,
		provider:  p,
		cache:     cache,
		limiter:   limiter,
		log:       log,
	}
}

// Start dispatches a batch call for every pending contact on the campaign.
// The campaign must be published and have at least one pending contact.
func (s *Service) Start(ctx context.Context, clientID, campaignID string) (provider.BatchCall, error) {
	camp, err := s.campaigns.Get(ctx, clientID, campaignID)
	if err != nil {
		return provider.BatchCall{}, err
	}
	if camp.Status != campaigns.StatusPublished {
		return provider.BatchCall{}, ErrNotPublished
	}

	pending, err := s.contacts.List(ctx, campaignID, contacts.CallStatusPending)
	if err != nil {
		return provider.BatchCall{}, err
	}
	if len(pending) == 0 {
		return provider.BatchCall{}, ErrNoContacts
	}

	if _, active, err := s.cache.Active(ctx, campaignID); err != nil {
		return provider.BatchCall{}, err
	} else if active {
		return provider.BatchCall{}, ErrBatchActive
	}

	agent, err := s.agents.Get(ctx, camp.AgentID)
	if err != nil {
		return provider.BatchCall{}, err
	}

	from, err := s.pickFromNumber(ctx, clientID)
	if err != nil {
		return provider.BatchCall{}, err
	}

	ok, err := s.limiter.Acquire(ctx, clientID)
	if err != nil {
		return provider.BatchCall{}, err
	}
	if !ok {
		return provider.BatchCall{}, ErrConcurrencyLimit
	}

	recipients := make([]provider.Recipient, 0, len(pending))
	ids := make([]string, 0, len(pending))
	for _, c := range pending {
		recipients = append(recipients, provider.Recipient{
			ContactID:        c.ID,
			Phone:            c.Phone,
			DynamicVariables: c.DynamicVariables,
		})
		ids = append(ids, c.ID)
	}

	bc, err := s.provider.StartBatchCall(ctx, provider.StartBatchRequest{
		CampaignID: campaignID,
		AgentID:    agent.ProviderAgentID,
		FromNumber: from,
		Prompt:     camp.Prompt,
		Recipients: recipients,
	})
	if err != nil {
		if relErr := s.limiter.Release(ctx, clientID); relErr != nil {
			s.log.ErrorContext(ctx, "release concurrency cap failed", "client_id", clientID, "error", relErr)
		}
		return provider.BatchCall{}, err
	}

	if err := s.contacts.MarkDialing(ctx, campaignID, ids); err != nil {
		s.log.ErrorContext(ctx, "mark dialing failed", "campaign_id", campaignID, "error", err)
	}
	if err := s.cache.SetActive(ctx, campaignID, bc.ID); err != nil {
		s.log.ErrorContext(ctx, "cache active batch failed", "campaign_id", campaignID, "error", err)
	}
	if err := s.cache.SetSnapshot(ctx, campaignID, bc); err != nil {
		s.log.ErrorContext(ctx, "cache batch snapshot failed", "campaign_id", campaignID, "error", err)
	}

	s.log.InfoContext(ctx, "batch call started",
		"campaign_id", campaignID, "batch_call_id", bc.ID, "recipients", len(recipients))
	return bc, nil
}

// Stop halts the campaign's active batch call.
func (s *Service) Stop(ctx context.Context, clientID, campaignID string) (provider.BatchCall, error) {
	if _, err := s.campaigns.Get(ctx, clientID, campaignID); err != nil {
		return provider.BatchCall{}, err
	}

	batchID, active, err := s.cache.Active(ctx, campaignID)
	if err != nil {
		return provider.BatchCall{}, err
	}
	if !active {
		return provider.BatchCall{}, ErrNoActiveBatch
	}

	bc, err := s.provider.StopBatchCall(ctx, batchID)
	if err != nil && !errors.Is(err, provider.ErrNotFound) {
		return provider.BatchCall{}, err
	}

	s.finishBatch(ctx, clientID, campaignID)

	if errors.Is(err, provider.ErrNotFound) {
		// The provider already forgot the batch; report it stopped.
		bc = provider.BatchCall{ID: batchID, CampaignID: campaignID, Status: "stopped"}
	}
	s.log.InfoContext(ctx, "batch call stopped", "campaign_id", campaignID, "batch_call_id", batchID)
	return bc, nil
}

// Status reports the campaign's active batch. The provider is the source of
// truth; the cached snapshot serves as fallback when the provider is down.
func (s *Service) Status(ctx context.Context, clientID, campaignID string) (provider.BatchCall, error) {
	if _, err := s.campaigns.Get(ctx, clientID, campaignID); err != nil {
		return provider.BatchCall{}, err
	}

	batchID, active, err := s.cache.Active(ctx, campaignID)
	if err != nil {
		return provider.BatchCall{}, err
	}
	if !active {
		return provider.BatchCall{}, ErrNoActiveBatch
	}

	bc, err := s.provider.GetBatchCall(ctx, batchID)
	if errors.Is(err, provider.ErrUnavailable) {
		if cached, ok, cacheErr := s.cache.Snapshot(ctx, campaignID); cacheErr == nil && ok {
			s.log.WarnContext(ctx, "provider unavailable, serving cached batch status",
				"campaign_id", campaignID, "batch_call_id", batchID)
			return cached, nil
		}
		return provider.BatchCall{}, err
	}
	if err != nil {
		return provider.BatchCall{}, err
	}

	if err := s.cache.SetSnapshot(ctx, campaignID, bc); err != nil {
		s.log.ErrorContext(ctx, "cache batch snapshot failed", "campaign_id", campaignID, "error", err)
	}
	if isTerminal(bc.Status) {
		s.finishBatch(ctx, clientID, campaignID)
	}
	return bc, nil
}

func (s *Service) pickFromNumber(ctx context.Context, clientID string) (string, error) {
	nums, err := s.numbers.List(ctx, clientID)
	if err != nil {
		return "", err
	}
	for _, n := range nums {
		if n.Active {
			return n.Number, nil
		}
	}
	return "", ErrNoFromNumber
}

func (s *Service) finishBatch(ctx context.Context, clientID, campaignID string) {
	if err := s.limiter.Release(ctx, clientID); err != nil {
		s.log.ErrorContext(ctx, "release concurrency cap failed", "client_id", clientID, "error", err)
	}
	if err := s.cache.Clear(ctx, campaignID); err != nil {
		s.log.ErrorContext(ctx, "clear batch cache failed", "campaign_id", campaignID, "error", err)
	}
}

func isTerminal(status string) bool {
	switch status {
	case "completed", "stopped", "failed":
		return true
	}
	return false
}
