// Package reporting aggregates call records into per-campaign summaries.
package reporting

import (
	"context"
	"errors"
	"time"

	"voicecampaign-platform/internal/calls"
)

var ErrInvalidArgument = errors.New("reporting: invalid argument")

// CampaignSummary is the rollup shown on a campaign's results page.
type CampaignSummary struct {
	CampaignID string `json:"campaign_id"`

	TotalCalls     int `json:"total_calls"`
	CompletedCalls int `json:"completed_calls"`
	FailedCalls    int `json:"failed_calls"`
	NoAnswerCalls  int `json:"no_answer_calls"`
	BusyCalls      int `json:"busy_calls"`

	TotalDurationSeconds int   `json:"total_duration_seconds"`
	BilledMinutes        int64 `json:"billed_minutes"`

	// AverageDurationSeconds covers completed calls only.
	AverageDurationSeconds int `json:"average_duration_seconds"`

	LastCallAt *time.Time `json:"last_call_at,omitempty"`
}

type Service struct {
	calls calls.Repository
}

func NewService(repo calls.Repository) *Service {
	return &Service{calls: repo}
}

// CampaignSummary aggregates all recorded calls for a campaign within the
// optional [since, until) window.
func (s *Service) CampaignSummary(ctx context.Context, campaignID string, since, until time.Time) (CampaignSummary, error) {
	if campaignID == "" {
		return CampaignSummary{}, ErrInvalidArgument
	}

	list, err := s.calls.List(ctx, calls.ListFilter{
		CampaignID: campaignID,
		Since:      since,
		Until:      until,
		Limit:      500,
	})
	if err != nil {
		return CampaignSummary{}, err
	}

	sum := CampaignSummary{CampaignID: campaignID}
	completedDuration := 0
	for _, c := range list {
		sum.TotalCalls++
		sum.TotalDurationSeconds += c.DurationSeconds
		sum.BilledMinutes += c.BilledMinutes()

		switch c.Status {
		case calls.StatusCompleted:
			sum.CompletedCalls++
			completedDuration += c.DurationSeconds
		case calls.StatusFailed:
			sum.FailedCalls++
		case calls.StatusNoAnswer:
			sum.NoAnswerCalls++
		case calls.StatusBusy:
			sum.BusyCalls++
		}

		if sum.LastCallAt == nil || c.CreatedAt.After(*sum.LastCallAt) {
			at := c.CreatedAt
			sum.LastCallAt = &at
		}
	}
	if sum.CompletedCalls > 0 {
		sum.AverageDurationSeconds = completedDuration / sum.CompletedCalls
	}
	return sum, nil
}

// RecentCalls lists the latest call records for a campaign, newest first.
func (s *Service) RecentCalls(ctx context.Context, campaignID string, limit int) ([]calls.Call, error) {
	if campaignID == "" {
		return nil, ErrInvalidArgument
	}
	return s.calls.List(ctx, calls.ListFilter{CampaignID: campaignID, Limit: limit})
}
