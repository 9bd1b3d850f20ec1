package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRecorder appends entries to the audit_log table. The table is
// append-only; no update or delete statement exists anywhere in this
// codebase.
type PGRecorder struct {
	pool *pgxpool.Pool
}

func NewPGRecorder(pool *pgxpool.Pool) *PGRecorder {
	return &PGRecorder{pool: pool}
}

func (r *PGRecorder) Record(ctx context.Context, entry *Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	details, err := json.Marshal(entry.Details)
	if err != nil {
		details = []byte("{}")
	}

	const query = `
		INSERT INTO audit_log (
			id, user_id, user_email, action, resource_type, resource_id,
			subject_id, ip_address, user_agent, session_id, outcome,
			details, phi_accessed, data_classification, recorded_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
		)`

	_, err = r.pool.Exec(ctx, query,
		entry.ID, entry.UserID, entry.UserEmail, entry.Action,
		entry.ResourceType, entry.ResourceID, nullable(entry.SubjectID),
		entry.IPAddress, entry.UserAgent, entry.SessionID,
		string(entry.Outcome), details, entry.PHIAccessed,
		string(entry.Classification), entry.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: insert entry: %w", err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
