package student

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imuniza/imuniza/internal/domain/status"
)

// ErrForbidden is returned when a school-scoped caller touches a student
// of another school.
var ErrForbidden = errors.New("student belongs to another school")

// ScheduleSource yields the active schedule for the engine.
type ScheduleSource interface {
	ActiveSchedule(ctx context.Context) (*status.Schedule, error)
}

// RecordSource yields vaccination records in engine shape, keyed by
// student.
type RecordSource interface {
	EngineRecords(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID][]status.Record, error)
}

type Service struct {
	students  Repository
	schedules ScheduleSource
	records   RecordSource
	now       func() time.Time
}

func NewService(students Repository, schedules ScheduleSource, records RecordSource) *Service {
	return &Service{
		students:  students,
		schedules: schedules,
		records:   records,
		now:       time.Now,
	}
}

func (s *Service) validate(st *Student) error {
	if st.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if st.SchoolID == uuid.Nil {
		return fmt.Errorf("school_id is required")
	}
	if st.BirthDate.IsZero() {
		return fmt.Errorf("birth_date is required")
	}
	if _, err := status.AgeInMonths(st.BirthDate.Time, s.now()); err != nil {
		return fmt.Errorf("birth_date must not be in the future")
	}
	if !st.Sex.Valid() {
		return fmt.Errorf("unknown sex code %q", st.Sex)
	}
	return nil
}

func (s *Service) checkScope(st *Student, callerSchool *uuid.UUID) error {
	if callerSchool != nil && st.SchoolID != *callerSchool {
		return ErrForbidden
	}
	return nil
}

func (s *Service) Create(ctx context.Context, st *Student, callerSchool *uuid.UUID) error {
	if err := s.checkScope(st, callerSchool); err != nil {
		return err
	}
	if err := s.validate(st); err != nil {
		return err
	}
	return s.students.Create(ctx, st)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, callerSchool *uuid.UUID) (*Student, error) {
	st, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkScope(st, callerSchool); err != nil {
		return nil, err
	}
	return st, nil
}

type UpdateInput struct {
	SchoolID        *uuid.UUID
	FullName        *string
	BirthDate       *status.Date
	Sex             *Sex
	GuardianName    *string
	GuardianContact *string
	ClassGroup      *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput, callerSchool *uuid.UUID) (*Student, error) {
	st, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkScope(st, callerSchool); err != nil {
		return nil, err
	}
	if in.SchoolID != nil {
		st.SchoolID = *in.SchoolID
	}
	if in.FullName != nil {
		st.FullName = *in.FullName
	}
	if in.BirthDate != nil {
		st.BirthDate = *in.BirthDate
	}
	if in.Sex != nil {
		st.Sex = *in.Sex
	}
	if in.GuardianName != nil {
		st.GuardianName = *in.GuardianName
	}
	if in.GuardianContact != nil {
		st.GuardianContact = *in.GuardianContact
	}
	if in.ClassGroup != nil {
		st.ClassGroup = *in.ClassGroup
	}
	// A transfer out of the caller's own school is still forbidden.
	if err := s.checkScope(st, callerSchool); err != nil {
		return nil, err
	}
	if err := s.validate(st); err != nil {
		return nil, err
	}
	if err := s.students.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, callerSchool *uuid.UUID) error {
	st, err := s.students.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkScope(st, callerSchool); err != nil {
		return err
	}
	return s.students.Delete(ctx, id)
}

// StatusRow pairs a student with their engine result.
type StatusRow struct {
	Student *Student
	Result  *status.Result
}

// ComputeAll runs the engine for every student matching the database
// filters. The active schedule is loaded once and the records in one
// query, so the cost is two round trips plus the student list itself.
func (s *Service) ComputeAll(ctx context.Context, f Filters) ([]StatusRow, error) {
	students, err := s.students.List(ctx, f)
	if err != nil {
		return nil, err
	}
	schedule, err := s.schedules.ActiveSchedule(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(students))
	for i, st := range students {
		ids[i] = st.ID
	}
	recordsByStudent, err := s.records.EngineRecords(ctx, ids)
	if err != nil {
		return nil, err
	}
	asOf := s.now()
	rows := make([]StatusRow, 0, len(students))
	for _, st := range students {
		res, err := status.Compute(st.ID, st.BirthDate.Time, recordsByStudent[st.ID], schedule, asOf)
		if err != nil {
			return nil, fmt.Errorf("compute status for %s: %w", st.ID, err)
		}
		res.StudentName = st.FullName
		rows = append(rows, StatusRow{Student: st, Result: res})
	}
	return rows, nil
}

// ListWithStatus is the listing the screens consume: engine-derived age
// and status per row, with the age and status filters applied after
// computation.
func (s *Service) ListWithStatus(ctx context.Context, f Filters, callerSchool *uuid.UUID) ([]*ListItem, error) {
	if callerSchool != nil {
		f.SchoolID = callerSchool
	}
	rows, err := s.ComputeAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]*ListItem, 0, len(rows))
	for _, row := range rows {
		if f.AgeMin != nil && row.Result.AgeMonths < *f.AgeMin {
			continue
		}
		if f.AgeMax != nil && row.Result.AgeMonths > *f.AgeMax {
			continue
		}
		if f.Status != nil && row.Result.Status != *f.Status {
			continue
		}
		items = append(items, &ListItem{
			Student:       row.Student,
			AgeMonths:     row.Result.AgeMonths,
			CurrentStatus: row.Result.Status,
		})
	}
	return items, nil
}

// ImmunizationStatus computes one student's full engine result as of
// today.
func (s *Service) ImmunizationStatus(ctx context.Context, id uuid.UUID, callerSchool *uuid.UUID) (*status.Result, error) {
	st, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkScope(st, callerSchool); err != nil {
		return nil, err
	}
	schedule, err := s.schedules.ActiveSchedule(ctx)
	if err != nil {
		return nil, err
	}
	recordsByStudent, err := s.records.EngineRecords(ctx, []uuid.UUID{st.ID})
	if err != nil {
		return nil, err
	}
	res, err := status.Compute(st.ID, st.BirthDate.Time, recordsByStudent[st.ID], schedule, s.now())
	if err != nil {
		return nil, err
	}
	res.StudentName = st.FullName
	return res, nil
}
