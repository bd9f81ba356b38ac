package school

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrHasStudents is returned when deleting a school that still has
// students enrolled.
var ErrHasStudents = errors.New("school has enrolled students")

type Service struct {
	schools Repository
}

func NewService(schools Repository) *Service {
	return &Service{schools: schools}
}

func (s *Service) Create(ctx context.Context, sc *School) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.schools.Create(ctx, sc)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*School, error) {
	return s.schools.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q string, limit, offset int) ([]*School, int, error) {
	return s.schools.List(ctx, q, limit, offset)
}

type UpdateInput struct {
	Name         *string
	INEPCode     *string
	Address      *string
	TerritoryRef *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*School, error) {
	sc, err := s.schools.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("name must not be empty")
		}
		sc.Name = *in.Name
	}
	if in.INEPCode != nil {
		sc.INEPCode = *in.INEPCode
	}
	if in.Address != nil {
		sc.Address = *in.Address
	}
	if in.TerritoryRef != nil {
		sc.TerritoryRef = *in.TerritoryRef
	}
	if err := s.schools.Update(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.schools.CountStudents(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d student(s)", ErrHasStudents, n)
	}
	return s.schools.Delete(ctx, id)
}
