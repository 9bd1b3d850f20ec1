package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository mediates patient persistence. Implementations translate
// backend errors into the application taxonomy (NotFound, Conflict,
// StorageFailure).
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error)
}
