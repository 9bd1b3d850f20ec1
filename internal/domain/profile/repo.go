package profile

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Get returns the stored profile for the user, or nil when none has
	// been written yet.
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// Upsert writes the mutable fields, creating the row on first update.
	Upsert(ctx context.Context, p *Profile) error
}
