package clients

import "time"

// Client is a tenant/customer account. Credit balance is tracked in
// internal/credits as an append-only minutes ledger; nothing here mutates
// money state.
type Client struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	ContactEmail string `json:"contact_email,omitempty" db:"contact_email"`

	Active bool `json:"active" db:"active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
