package agents

import (
	"strings"
	"time"
	"unicode"
)

// Agent is an AI calling persona registered with the calling provider.
// ProviderAgentID is the provider's identifier; it is issued externally and
// opaque to this service.
//
// Assignment invariant: an agent is assigned to at most one client at a time.
type Agent struct {
	ID              string `json:"id" db:"id"`
	ProviderAgentID string `json:"provider_agent_id" db:"provider_agent_id"`
	Name            string `json:"name" db:"name"`
	Slug            string `json:"slug" db:"slug"`

	ClientID *string `json:"client_id,omitempty" db:"client_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Slugify derives a URL-safe slug from a display name.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
