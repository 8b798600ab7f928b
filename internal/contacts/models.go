package contacts

import "time"

// Contact is one callable entry on a campaign's dial list.
// DynamicVariables feed the agent's prompt templating ({{first_name}} etc.)
// and are stored as an embedded map, not a separate collection.
type Contact struct {
	ID         string `json:"id" db:"id"`
	CampaignID string `json:"campaign_id" db:"campaign_id"`

	Phone            string            `json:"phone_number" db:"phone_number"`
	DynamicVariables map[string]string `json:"dynamic_variables" db:"dynamic_variables"`

	CallStatus CallStatus `json:"call_status" db:"call_status"`
	// Attempts increments on each dial attempt.
	Attempts int `json:"attempts" db:"attempts"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CallStatus string

const (
	CallStatusPending    CallStatus = "pending"
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
)

func IsValidCallStatus(s CallStatus) bool {
	switch s {
	case CallStatusPending, CallStatusInProgress, CallStatusCompleted, CallStatusFailed:
		return true
	default:
		return false
	}
}
