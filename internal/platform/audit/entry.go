package audit

import (
	"time"

	"github.com/google/uuid"
)

// Outcome of the audited operation.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

// Classification is the data-sensitivity tier attached to an audited action.
type Classification string

const (
	ClassPublic     Classification = "PUBLIC"
	ClassInternal   Classification = "INTERNAL"
	ClassRestricted Classification = "RESTRICTED"
)

// Sentinel resource IDs for operations that touch several records or where
// no single record can be named.
const (
	ResourceMultiple = "multiple"
	ResourceUnknown  = "unknown"
)

// Entry is one immutable audit trail record. Entries are append-only: the
// application never updates or deletes them.
type Entry struct {
	ID             uuid.UUID              `json:"id"`
	UserID         string                 `json:"user_id"`
	UserEmail      string                 `json:"user_email"`
	Action         string                 `json:"action"`
	ResourceType   string                 `json:"resource_type"`
	ResourceID     string                 `json:"resource_id"`
	SubjectID      string                 `json:"subject_id,omitempty"`
	IPAddress      string                 `json:"ip_address"`
	UserAgent      string                 `json:"user_agent"`
	SessionID      string                 `json:"session_id"`
	Outcome        Outcome                `json:"outcome"`
	Details        map[string]interface{} `json:"details,omitempty"`
	PHIAccessed    bool                   `json:"phi_accessed"`
	Classification Classification         `json:"data_classification"`
	RecordedAt     time.Time              `json:"recorded_at"`
}
