package vaccine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrReferenced is returned when a vaccine still referenced by schedule
// rules or vaccination records would be deleted.
var ErrReferenced = errors.New("vaccine is referenced by rules or records")

type Service struct {
	vaccines Repository
}

func NewService(vaccines Repository) *Service {
	return &Service{vaccines: vaccines}
}

func (s *Service) Create(ctx context.Context, v *Vaccine) error {
	if v.Code == "" {
		return fmt.Errorf("code is required")
	}
	if v.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.vaccines.Create(ctx, v)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Vaccine, error) {
	return s.vaccines.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Vaccine, int, error) {
	return s.vaccines.List(ctx, limit, offset)
}

// Update only touches the display name; the code is immutable identity.
func (s *Service) Update(ctx context.Context, id uuid.UUID, name string) (*Vaccine, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	v, err := s.vaccines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Name = name
	if err := s.vaccines.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	rules, records, err := s.vaccines.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if rules > 0 || records > 0 {
		return fmt.Errorf("%w: %d rule(s), %d record(s)", ErrReferenced, rules, records)
	}
	return s.vaccines.Delete(ctx, id)
}
