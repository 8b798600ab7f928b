package credits

import (
	"fmt"
	"time"
)

// LedgerEntry is an immutable append-only record of a credit change.
// Credits are denominated in whole minutes of call time; entries are signed
// (credits positive, debits negative).
//
// Money invariant: no balance change without a corresponding ledger entry.
type LedgerEntry struct {
	ID       string `json:"id" db:"id"`
	ClientID string `json:"client_id" db:"client_id"`

	Type EntryType `json:"type" db:"type"`

	// Minutes is the signed delta in whole minutes.
	Minutes int64 `json:"minutes" db:"minutes"`

	// ExternalRef is optional: call_id, batch_call_id, admin_adjust, etc.
	ExternalRef string `json:"external_ref,omitempty" db:"external_ref"`

	// IdempotencyKey is required for safe retries of posting operations.
	IdempotencyKey string `json:"idempotency_key" db:"idempotency_key"`

	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EntryType string

const (
	EntryTypeCredit EntryType = "credit" // top-up or admin adjustment
	EntryTypeDebit  EntryType = "debit"  // call usage
)

// Balance is the per-client projection over the ledger.
type Balance struct {
	ClientID  string    `json:"client_id" db:"client_id"`
	Minutes   int64     `json:"minutes" db:"minutes"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AdminAction records a privileged manual credit change for auditability.
// It links to the ledger entry it produced; it is not the ledger itself.
type AdminAction struct {
	ID       string `json:"id" db:"id"`
	ClientID string `json:"client_id" db:"client_id"`

	AdminUserID string `json:"admin_user_id" db:"admin_user_id"`
	AdminRole   string `json:"admin_role" db:"admin_role"`

	Reason  string `json:"reason" db:"reason"`
	Minutes int64  `json:"minutes" db:"minutes"`

	RelatedLedgerID string `json:"related_ledger_id" db:"related_ledger_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FormatMinutes renders a balance the way the dashboard shows it: whole
// hours plus leftover minutes.
func FormatMinutes(minutes int64) string {
	if minutes < 0 {
		return "-" + FormatMinutes(-minutes)
	}
	h := minutes / 60
	m := minutes % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
