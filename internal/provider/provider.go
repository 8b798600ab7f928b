// Package provider integrates with the upstream AI calling service that
// actually places the outbound calls.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound    = errors.New("provider: batch call not found")
	ErrUnavailable = errors.New("provider: unavailable")
)

// UpstreamError carries the provider's HTTP status and message so handlers
// can distinguish upstream failures from our own.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider: upstream status %d: %s", e.StatusCode, e.Message)
}

// BatchCall is the provider's view of an in-flight campaign batch.
type BatchCall struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`
	Status     string `json:"status"` // "queued", "dialing", "completed", "stopped", "failed"

	TotalCalls     int `json:"total_calls"`
	CompletedCalls int `json:"completed_calls"`
	FailedCalls    int `json:"failed_calls"`

	CreatedAt time.Time `json:"created_at"`
}

// Recipient is one dial target within a batch.
type Recipient struct {
	ContactID        string            `json:"contact_id"`
	Phone            string            `json:"phone_number"`
	DynamicVariables map[string]string `json:"dynamic_variables,omitempty"`
}

// StartBatchRequest describes a batch to dispatch.
type StartBatchRequest struct {
	CampaignID      string      `json:"campaign_id"`
	AgentID         string      `json:"agent_id"`
	FromNumber      string      `json:"from_number"`
	Prompt          string      `json:"prompt,omitempty"`
	MaxDurationSecs int         `json:"max_duration_seconds,omitempty"`
	Recipients      []Recipient `json:"recipients"`
}

// CallingProvider is the surface the dialer depends on. The HTTP client
// implements it; tests use fakes.
type CallingProvider interface {
	StartBatchCall(ctx context.Context, req StartBatchRequest) (BatchCall, error)
	StopBatchCall(ctx context.Context, batchID string) (BatchCall, error)
	GetBatchCall(ctx context.Context, batchID string) (BatchCall, error)
	HealthCheck(ctx context.Context) error
}
