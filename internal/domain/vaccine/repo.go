package vaccine

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, v *Vaccine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Vaccine, error)
	GetByCode(ctx context.Context, code string) (*Vaccine, error)
	Update(ctx context.Context, v *Vaccine) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Vaccine, int, error)
	// CountReferences returns how many schedule rules and vaccination
	// records point at the vaccine. Used to enforce referential integrity
	// before deletion.
	CountReferences(ctx context.Context, id uuid.UUID) (rules int, records int, err error)
}
