package audit

import "time"

// Entry is a single append-only audit record. Entries are never updated or
// deleted individually; retention is enforced by bulk purge.
type Entry struct {
	ID string `json:"id" db:"id"`

	ActorID   string `json:"actor_id" db:"actor_id"`
	ActorType string `json:"actor_type" db:"actor_type"` // "user", "admin", "system"

	Action     string `json:"action" db:"action"`       // "login", "create", "update", "delete", "publish", ...
	Resource   string `json:"resource" db:"resource"`   // "campaign", "user", "contact", ...
	ResourceID string `json:"resource_id,omitempty" db:"resource_id"`

	Status   Status   `json:"status" db:"status"`
	Severity Severity `json:"severity" db:"severity"`
	Category Category `json:"category" db:"category"`

	Details map[string]any `json:"details,omitempty" db:"details"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Status string

const (
	StatusSuccess      Status = "success"
	StatusFailed       Status = "failed"
	StatusUnauthorized Status = "unauthorized" // rejected before authentication
	StatusForbidden    Status = "forbidden"    // authenticated, wrong role
)

func IsValidStatus(s Status) bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusUnauthorized, StatusForbidden:
		return true
	}
	return false
}

// SecurityActions are action names that count as security events no matter
// which category they were logged under.
var SecurityActions = []string{
	"login",
	"register",
	"change_password",
	"create_user",
	"set_user_active",
	"access_denied",
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type Category string

const (
	CategorySecurity Category = "security" // logins, password changes, role changes
	CategoryData     Category = "data"     // CRUD on resources
	CategoryBilling  Category = "billing"  // credit adjustments
	CategorySystem   Category = "system"   // background jobs, webhooks
)

// SecurityFilter narrows SecurityEvents queries. The base predicate is
// fixed (see Repository.SecurityEvents); zero values here mean "no extra
// constraint".
type SecurityFilter struct {
	ActorID  string
	Action   string
	Status   Status
	Severity Severity
	Since    time.Time
	Until    time.Time
	Limit    int
}

// ActivityGroup is one row of the activity summary: counts per
// (action, resource) pair for a single actor.
type ActivityGroup struct {
	Action   string `json:"action"`
	Resource string `json:"resource"`

	TotalAttempts      int `json:"total_attempts"`
	SuccessfulAttempts int `json:"successful_attempts"`
	FailedAttempts     int `json:"failed_attempts"`

	LastActivityAt time.Time `json:"last_activity_at"`
}
