package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/imuniza/imuniza/internal/domain/status"
	"github.com/imuniza/imuniza/internal/platform/db"
)

// ErrConflict is returned when an operation loses a race or hits a
// uniqueness constraint: two activations at once, a duplicate version
// code, or a duplicate (vaccine, dose) rule inside a version.
var ErrConflict = errors.New("conflicting schedule operation")

type Service struct {
	schedules Repository
}

func NewService(schedules Repository) *Service {
	return &Service{schedules: schedules}
}

func (s *Service) Create(ctx context.Context, v *ScheduleVersion) error {
	if v.Code == "" {
		return fmt.Errorf("code is required")
	}
	if v.Name == "" {
		return fmt.Errorf("name is required")
	}
	err := s.schedules.Create(ctx, v)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: code %q already exists", ErrConflict, v.Code)
	}
	return err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ScheduleVersion, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*ScheduleVersion, int, error) {
	return s.schedules.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name string) (*ScheduleVersion, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	v, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Name = name
	if err := s.schedules.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	v, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if v.IsActive {
		return fmt.Errorf("%w: cannot delete the active version", ErrConflict)
	}
	return s.schedules.Delete(ctx, id)
}

// Activate makes id the single active version. Losers of a concurrent
// activation race get ErrConflict, never a second active row.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	err := s.schedules.Activate(ctx, id)
	if db.IsUniqueViolation(err) || db.IsSerializationFailure(err) {
		return fmt.Errorf("%w: concurrent activation", ErrConflict)
	}
	return err
}

// Deactivate is rejected for the lone active version: the system never
// moves from "has an active schedule" to "has none" implicitly, callers
// must activate a replacement instead.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	v, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if v.IsActive {
		return fmt.Errorf("%w: activate another version instead of deactivating the only active one", ErrConflict)
	}
	return s.schedules.Deactivate(ctx, id)
}

func (s *Service) AddRule(ctx context.Context, r *ScheduleRule) error {
	if err := validateRuleWindow(r); err != nil {
		return err
	}
	err := s.schedules.CreateRule(ctx, r)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: dose %d of this vaccine already has a rule", ErrConflict, r.DoseNumber)
	}
	return err
}

func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, doseNumber, minAge, maxAge int) (*ScheduleRule, error) {
	r, err := s.schedules.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	r.DoseNumber = doseNumber
	r.MinAgeMonths = minAge
	r.MaxAgeMonths = maxAge
	if err := validateRuleWindow(r); err != nil {
		return nil, err
	}
	if err := s.schedules.UpdateRule(ctx, r); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: dose %d of this vaccine already has a rule", ErrConflict, doseNumber)
		}
		return nil, err
	}
	return r, nil
}

func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return s.schedules.DeleteRule(ctx, id)
}

func (s *Service) Rules(ctx context.Context, versionID uuid.UUID) ([]*ScheduleRule, error) {
	return s.schedules.ListRules(ctx, versionID)
}

func validateRuleWindow(r *ScheduleRule) error {
	if r.DoseNumber < 1 {
		return fmt.Errorf("dose_number must be at least 1")
	}
	if r.MinAgeMonths < 0 {
		return fmt.Errorf("min_age_months must not be negative")
	}
	if r.MaxAgeMonths < r.MinAgeMonths {
		return fmt.Errorf("max_age_months must be greater than or equal to min_age_months")
	}
	return nil
}

// ActiveSchedule loads the active version with its rules in the shape the
// status engine consumes. Returns nil when no version is active.
func (s *Service) ActiveSchedule(ctx context.Context) (*status.Schedule, error) {
	v, err := s.schedules.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	rules, err := s.schedules.ListRules(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	sched := &status.Schedule{Code: v.Code, Rules: make([]status.Rule, 0, len(rules))}
	for _, r := range rules {
		sched.Rules = append(sched.Rules, status.Rule{
			VaccineCode:  r.VaccineCode,
			VaccineName:  r.VaccineName,
			DoseNumber:   r.DoseNumber,
			MinAgeMonths: r.MinAgeMonths,
			MaxAgeMonths: r.MaxAgeMonths,
		})
	}
	return sched, nil
}
