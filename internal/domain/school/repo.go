package school

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *School) error
	GetByID(ctx context.Context, id uuid.UUID) (*School, error)
	Update(ctx context.Context, s *School) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q string, limit, offset int) ([]*School, int, error)
	// CountStudents reports how many students are enrolled, used to
	// block deletion of a school that still has students.
	CountStudents(ctx context.Context, id uuid.UUID) (int, error)
}
