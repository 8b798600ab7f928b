package accounts

import "time"

// User is an admin-console or client-dashboard account.
//
// Invariants:
// - Email is unique across all roles.
// - PasswordHash is never serialized (json:"-") and never logged.
// - Accounts are deactivated, not hard-deleted, in normal flow.
type User struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`

	PasswordHash string `json:"-" db:"password_hash"`

	Role        string   `json:"role" db:"role"`
	Permissions []string `json:"permissions" db:"permissions"`

	// ClientID scopes client-role accounts to their tenant. Admin accounts
	// leave it nil.
	ClientID *string `json:"client_id,omitempty" db:"client_id"`

	Active bool `json:"active" db:"active"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
