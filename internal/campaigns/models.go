package campaigns

import "time"

// Campaign is a configured bulk-calling job tied to one agent and a contact
// list, owned by exactly one client.
//
// Lifecycle: draft -> published, one-way. Publishing again keeps the status
// and bumps PublishedVersion; there is no way back to draft. Run-state
// (running/stopped) belongs to the ephemeral batch call, not the campaign.
type Campaign struct {
	ID       string `json:"id" db:"id"`
	ClientID string `json:"client_id" db:"client_id"`
	AgentID  string `json:"agent_id" db:"agent_id"`

	Name   string `json:"name" db:"name"`
	Status Status `json:"status" db:"status"`

	// Prompt is the free-text instruction handed to the calling agent.
	Prompt string `json:"prompt" db:"prompt"`

	// PublishedVersion increments once per publish call.
	PublishedVersion int `json:"published_version" db:"published_version"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)
