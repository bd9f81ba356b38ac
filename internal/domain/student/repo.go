package student

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, st *Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*Student, error)
	Update(ctx context.Context, st *Student) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List applies the name, school and sex filters in SQL and returns
	// all matching rows ordered by name. Age and status filtering
	// happen in the service, after the engine has run.
	List(ctx context.Context, f Filters) ([]*Student, error)
}
