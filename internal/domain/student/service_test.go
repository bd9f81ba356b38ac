package student

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/imuniza/imuniza/internal/domain/status"
)

type mockRepo struct {
	store map[uuid.UUID]*Student
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Student)}
}

func (m *mockRepo) Create(_ context.Context, st *Student) error {
	st.ID = uuid.New()
	m.store[st.ID] = st
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Student, error) {
	st, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	// Hand out a copy, like the real repository scans a fresh row. Callers
	// mutating the result must not reach the stored entity.
	cp := *st
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, st *Student) error {
	m.store[st.ID] = st
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filters) ([]*Student, error) {
	var result []*Student
	for _, st := range m.store {
		if f.SchoolID != nil && st.SchoolID != *f.SchoolID {
			continue
		}
		if f.Sex != "" && st.Sex != f.Sex {
			continue
		}
		result = append(result, st)
	}
	return result, nil
}

type mockScheduleSource struct {
	schedule *status.Schedule
}

func (m *mockScheduleSource) ActiveSchedule(context.Context) (*status.Schedule, error) {
	return m.schedule, nil
}

type mockRecordSource struct {
	byStudent map[uuid.UUID][]status.Record
}

func (m *mockRecordSource) EngineRecords(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]status.Record, error) {
	out := make(map[uuid.UUID][]status.Record)
	for _, id := range ids {
		if recs, ok := m.byStudent[id]; ok {
			out[id] = recs
		}
	}
	return out, nil
}

func date(y int, m time.Month, d int) status.Date {
	return status.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// hpvSchedule has a single dose due from 108 months.
func hpvSchedule() *status.Schedule {
	return &status.Schedule{
		Code: "PNI-2025",
		Rules: []status.Rule{
			{VaccineCode: "HPV", VaccineName: "HPV quadrivalente", DoseNumber: 1, MinAgeMonths: 108, MaxAgeMonths: 179},
		},
	}
}

func testService(repo *mockRepo, sched *status.Schedule, recs map[uuid.UUID][]status.Record) *Service {
	svc := NewService(repo, &mockScheduleSource{schedule: sched}, &mockRecordSource{byStudent: recs})
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func seed(t *testing.T, svc *Service, schoolID uuid.UUID, name string, birth status.Date) *Student {
	t.Helper()
	st := &Student{SchoolID: schoolID, FullName: name, BirthDate: birth, Sex: SexNotInformed}
	if err := svc.Create(context.Background(), st, nil); err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return st
}

func TestCreateStudent_Validation(t *testing.T) {
	svc := testService(newMockRepo(), nil, nil)
	ctx := context.Background()
	schoolID := uuid.New()

	cases := []struct {
		name string
		st   Student
	}{
		{"missing name", Student{SchoolID: schoolID, BirthDate: date(2015, 3, 1), Sex: SexFemale}},
		{"missing school", Student{FullName: "Ana", BirthDate: date(2015, 3, 1), Sex: SexFemale}},
		{"missing birth date", Student{SchoolID: schoolID, FullName: "Ana", Sex: SexFemale}},
		{"future birth date", Student{SchoolID: schoolID, FullName: "Ana", BirthDate: date(2026, 1, 1), Sex: SexFemale}},
		{"bad sex code", Student{SchoolID: schoolID, FullName: "Ana", BirthDate: date(2015, 3, 1), Sex: "X"}},
	}
	for _, tc := range cases {
		st := tc.st
		if err := svc.Create(ctx, &st, nil); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	ok := Student{SchoolID: schoolID, FullName: "Ana", BirthDate: date(2015, 3, 1), Sex: SexFemale}
	if err := svc.Create(ctx, &ok, nil); err != nil {
		t.Errorf("valid student rejected: %v", err)
	}
}

func TestListWithStatus_DerivedFieldsAndFilters(t *testing.T) {
	repo := newMockRepo()
	recs := make(map[uuid.UUID][]status.Record)
	svc := testService(repo, hpvSchedule(), recs)
	schoolID := uuid.New()

	// 10 years old, dose recorded: up to date.
	covered := seed(t, svc, schoolID, "Ana", date(2015, 3, 1))
	recs[covered.ID] = []status.Record{
		{VaccineCode: "HPV", DoseNumber: 1, ApplicationDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)},
	}
	// 16 years old, no records: the engine reports no data.
	noData := seed(t, svc, schoolID, "Bruno", date(2009, 1, 20))
	_ = noData

	items, err := svc.ListWithStatus(context.Background(), Filters{}, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	byName := map[string]*ListItem{}
	for _, it := range items {
		byName[it.FullName] = it
	}
	if got := byName["Ana"].CurrentStatus; got != status.UpToDate {
		t.Errorf("Ana status = %v", got)
	}
	if got := byName["Ana"].AgeMonths; got != 123 {
		t.Errorf("Ana age = %d, want 123", got)
	}
	if got := byName["Bruno"].CurrentStatus; got != status.NoData {
		t.Errorf("Bruno status = %v", got)
	}

	upToDate := status.UpToDate
	items, err = svc.ListWithStatus(context.Background(), Filters{Status: &upToDate}, nil)
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(items) != 1 || items[0].FullName != "Ana" {
		t.Errorf("status filter returned %d items", len(items))
	}

	ageMin := 150
	items, err = svc.ListWithStatus(context.Background(), Filters{AgeMin: &ageMin}, nil)
	if err != nil {
		t.Fatalf("age filter: %v", err)
	}
	if len(items) != 1 || items[0].FullName != "Bruno" {
		t.Errorf("ageMin filter returned %d items", len(items))
	}
}

func TestListWithStatus_SchoolCallerIsScoped(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo, hpvSchedule(), nil)
	mySchool := uuid.New()
	otherSchool := uuid.New()
	seed(t, svc, mySchool, "Ana", date(2015, 3, 1))
	seed(t, svc, otherSchool, "Bruno", date(2015, 3, 1))

	// A school caller asking for another school still gets their own.
	items, err := svc.ListWithStatus(context.Background(), Filters{SchoolID: &otherSchool}, &mySchool)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].FullName != "Ana" {
		t.Fatalf("scoped list = %d items", len(items))
	}
}

func TestImmunizationStatus_IncludesName(t *testing.T) {
	repo := newMockRepo()
	recs := make(map[uuid.UUID][]status.Record)
	svc := testService(repo, hpvSchedule(), recs)
	schoolID := uuid.New()
	st := seed(t, svc, schoolID, "Ana Souza", date(2015, 3, 1))

	// A record for another vaccine keeps the HPV dose pending without
	// leaving the student with no data at all.
	recs[st.ID] = []status.Record{
		{VaccineCode: "DTPA", DoseNumber: 1, ApplicationDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)},
	}

	res, err := svc.ImmunizationStatus(context.Background(), st.ID, nil)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if res.StudentName != "Ana Souza" {
		t.Errorf("studentName = %q", res.StudentName)
	}
	if res.Status != status.Incomplete {
		t.Errorf("status = %v, want INCOMPLETO for due unrecorded dose", res.Status)
	}

	other := uuid.New()
	if _, err := svc.ImmunizationStatus(context.Background(), st.ID, &other); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUpdateStudent_TransferOutForbiddenForSchoolCaller(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo, nil, nil)
	mySchool := uuid.New()
	otherSchool := uuid.New()
	st := seed(t, svc, mySchool, "Ana", date(2015, 3, 1))

	_, err := svc.Update(context.Background(), st.ID, UpdateInput{SchoolID: &otherSchool}, &mySchool)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on transfer out, got %v", err)
	}

	name := "Ana Souza"
	updated, err := svc.Update(context.Background(), st.ID, UpdateInput{FullName: &name}, &mySchool)
	if err != nil {
		t.Fatalf("own-school update failed: %v", err)
	}
	if updated.FullName != "Ana Souza" {
		t.Errorf("full_name = %q", updated.FullName)
	}
}
