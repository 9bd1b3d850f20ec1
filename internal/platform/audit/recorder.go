package audit

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Recorder persists audit entries. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Record(ctx context.Context, entry *Entry) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, entry *Entry) error

func (f RecorderFunc) Record(ctx context.Context, entry *Entry) error {
	return f(ctx, entry)
}

// Tee fans an entry out to several recorders. Every recorder is attempted;
// the first error is returned so a mirror sink still fires when the primary
// trail is down.
type Tee []Recorder

func (t Tee) Record(ctx context.Context, entry *Entry) error {
	var first error
	for _, r := range t {
		if err := r.Record(ctx, entry); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LogRecorder emits entries to the structured log only. It backs deployments
// without a database trail and doubles as the mirror sink so a storage
// outage still leaves evidence.
type LogRecorder struct {
	logger zerolog.Logger
}

func NewLogRecorder(logger zerolog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(_ context.Context, entry *Entry) error {
	evt := r.logger.Info()
	if entry.Outcome == OutcomeFailure {
		evt = r.logger.Warn()
	}
	evt.
		Str("type", "audit").
		Str("audit_id", entry.ID.String()).
		Str("user_id", entry.UserID).
		Str("user_email", entry.UserEmail).
		Str("action", entry.Action).
		Str("resource_type", entry.ResourceType).
		Str("resource_id", entry.ResourceID).
		Str("subject_id", entry.SubjectID).
		Str("remote_ip", entry.IPAddress).
		Str("session_id", entry.SessionID).
		Str("outcome", string(entry.Outcome)).
		Bool("phi_accessed", entry.PHIAccessed).
		Str("data_classification", string(entry.Classification)).
		Interface("details", entry.Details).
		Msg("audit_trail")
	return nil
}

// MemoryRecorder accumulates entries in memory for tests.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []*Entry
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

// Entries returns a snapshot of everything recorded so far.
func (r *MemoryRecorder) Entries() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Entry(nil), r.entries...)
}
