package calls

import "time"

// Call is the record of a single outbound dial attempt, written when the
// provider reports a terminal result for a contact.
type Call struct {
	ID          string `json:"id" db:"id"`
	CampaignID  string `json:"campaign_id" db:"campaign_id"`
	ContactID   string `json:"contact_id" db:"contact_id"`
	BatchCallID string `json:"batch_call_id" db:"batch_call_id"`

	To     string `json:"to" db:"to_number"`
	Status Status `json:"status" db:"status"`

	DurationSeconds int `json:"duration_seconds" db:"duration_seconds"`

	// ProviderCallID is the upstream identifier, kept for reconciliation.
	ProviderCallID string `json:"provider_call_id,omitempty" db:"provider_call_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusNoAnswer  Status = "no_answer"
	StatusBusy      Status = "busy"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusNoAnswer, StatusBusy:
		return true
	}
	return false
}

// BilledMinutes rounds call duration up to the next whole minute; partial
// minutes are billed as full ones.
func (c Call) BilledMinutes() int64 {
	if c.DurationSeconds <= 0 {
		return 0
	}
	return int64((c.DurationSeconds + 59) / 60)
}
