package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imuniza/imuniza/internal/domain/status"
	"github.com/imuniza/imuniza/internal/platform/db"
)

var (
	// ErrConflict is returned when a dose that already has a record is
	// recorded again for the same student.
	ErrConflict = errors.New("dose already recorded for this student")

	// ErrForbidden is returned when a school-scoped caller touches a
	// record of a student from another school.
	ErrForbidden = errors.New("record belongs to a student of another school")
)

type Service struct {
	records Repository
	now     func() time.Time
}

func NewService(records Repository) *Service {
	return &Service{records: records, now: time.Now}
}

// checkScope enforces school-role visibility. callerSchool is nil for
// admin and health callers.
func (s *Service) checkScope(ctx context.Context, studentID uuid.UUID, callerSchool *uuid.UUID) error {
	if callerSchool == nil {
		return nil
	}
	schoolID, err := s.records.StudentSchool(ctx, studentID)
	if err != nil {
		return err
	}
	if schoolID != *callerSchool {
		return ErrForbidden
	}
	return nil
}

func (s *Service) validate(rec *VaccinationRecord) error {
	if rec.DoseNumber < 1 {
		return fmt.Errorf("dose_number must be at least 1")
	}
	if !rec.Source.Valid() {
		return fmt.Errorf("unknown record source %q", rec.Source)
	}
	if rec.ApplicationDate.IsZero() {
		return fmt.Errorf("application_date is required")
	}
	ny, nm, nd := s.now().Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	ay, am, ad := rec.ApplicationDate.Date()
	if time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC).After(today) {
		return fmt.Errorf("application_date must not be in the future")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, rec *VaccinationRecord, callerSchool *uuid.UUID) error {
	if err := s.checkScope(ctx, rec.StudentID, callerSchool); err != nil {
		return err
	}
	if err := s.validate(rec); err != nil {
		return err
	}
	err := s.records.Create(ctx, rec)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: dose %d", ErrConflict, rec.DoseNumber)
	}
	return err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, callerSchool *uuid.UUID) (*VaccinationRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkScope(ctx, rec.StudentID, callerSchool); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) ListByStudent(ctx context.Context, studentID uuid.UUID, callerSchool *uuid.UUID) ([]*VaccinationRecord, error) {
	if err := s.checkScope(ctx, studentID, callerSchool); err != nil {
		return nil, err
	}
	return s.records.ListByStudent(ctx, studentID)
}

type UpdateInput struct {
	DoseNumber      *int
	ApplicationDate *status.Date
	Source          *Source
	Notes           *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput, callerSchool *uuid.UUID) (*VaccinationRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkScope(ctx, rec.StudentID, callerSchool); err != nil {
		return nil, err
	}
	if in.DoseNumber != nil {
		rec.DoseNumber = *in.DoseNumber
	}
	if in.ApplicationDate != nil {
		rec.ApplicationDate = *in.ApplicationDate
	}
	if in.Source != nil {
		rec.Source = *in.Source
	}
	if in.Notes != nil {
		rec.Notes = *in.Notes
	}
	if err := s.validate(rec); err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, rec); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: dose %d", ErrConflict, rec.DoseNumber)
		}
		return nil, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, callerSchool *uuid.UUID) error {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkScope(ctx, rec.StudentID, callerSchool); err != nil {
		return err
	}
	return s.records.Delete(ctx, id)
}

// EngineRecords feeds the status engine: records of the given students
// keyed by student id. Students with no records are absent from the map.
func (s *Service) EngineRecords(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID][]status.Record, error) {
	return s.records.EngineRecords(ctx, studentIDs)
}
