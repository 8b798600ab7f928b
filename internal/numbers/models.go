package numbers

import (
	"strings"
	"time"
)

// PhoneNumber is a dialable number owned at the calling provider.
// ClientID is optional: unassigned numbers sit in the admin pool.
type PhoneNumber struct {
	ID               string `json:"id" db:"id"`
	Number           string `json:"number" db:"number"`
	ProviderNumberID string `json:"provider_number_id,omitempty" db:"provider_number_id"`

	ClientID *string `json:"client_id,omitempty" db:"client_id"`
	Active   bool    `json:"active" db:"active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NormalizeE164 strips formatting characters and validates a rough E.164
// shape. Full number-plan validation is the provider's job.
func NormalizeE164(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// formatting, drop
		default:
			return "", false
		}
	}
	n := b.String()
	digits := strings.TrimPrefix(n, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return "", false
	}
	if !strings.HasPrefix(n, "+") {
		n = "+" + n
	}
	return n, true
}
