package coverage

import (
	"testing"

	"github.com/google/uuid"

	"github.com/imuniza/imuniza/internal/domain/status"
)

func studentAt(school uuid.UUID, schoolName string, age int, st status.Status) StudentStatus {
	return StudentStatus{
		StudentID:  uuid.New(),
		SchoolID:   school,
		SchoolName: schoolName,
		AgeMonths:  age,
		Status:     st,
	}
}

func TestBySchool(t *testing.T) {
	schoolA := uuid.New()
	schoolB := uuid.New()
	items := []StudentStatus{
		studentAt(schoolB, "Escola Zumbi", 120, status.UpToDate),
		studentAt(schoolA, "Escola Anita", 118, status.UpToDate),
		studentAt(schoolA, "Escola Anita", 130, status.Overdue),
		studentAt(schoolA, "Escola Anita", 125, status.Incomplete),
		studentAt(schoolA, "Escola Anita", 110, status.NoData),
	}

	result := BySchool(items)
	if len(result) != 2 {
		t.Fatalf("got %d schools, want 2", len(result))
	}
	// Sorted by school name ascending.
	if result[0].SchoolName != "Escola Anita" || result[1].SchoolName != "Escola Zumbi" {
		t.Errorf("unexpected order: %s, %s", result[0].SchoolName, result[1].SchoolName)
	}

	anita := result[0]
	if anita.TotalStudents != 4 {
		t.Errorf("totalStudents = %d, want 4", anita.TotalStudents)
	}
	if anita.UpToDate != 1 || anita.Overdue != 1 || anita.Incomplete != 1 || anita.NoData != 1 {
		t.Errorf("status counts = %d/%d/%d/%d, want 1/1/1/1",
			anita.UpToDate, anita.Overdue, anita.Incomplete, anita.NoData)
	}
	if anita.CoveragePercent != 25.0 {
		t.Errorf("coveragePercent = %v, want 25.0", anita.CoveragePercent)
	}

	zumbi := result[1]
	if zumbi.CoveragePercent != 100.0 {
		t.Errorf("coveragePercent = %v, want 100.0", zumbi.CoveragePercent)
	}
}

func TestBySchool_EmptyInput(t *testing.T) {
	result := BySchool(nil)
	if len(result) != 0 {
		t.Fatalf("got %d items, want 0", len(result))
	}
}

func TestPercent_ZeroTotalIsZeroNotNaN(t *testing.T) {
	if got := percent(0, 0); got != 0 {
		t.Errorf("percent(0, 0) = %v, want 0", got)
	}
}

func TestRanking_WorstSchoolsFirst(t *testing.T) {
	schoolA := uuid.New()
	schoolB := uuid.New()
	schoolC := uuid.New()
	items := []StudentStatus{
		// A: 0% delay, 100% no-data
		studentAt(schoolA, "Escola Anita", 110, status.NoData),
		// B: 50% delay
		studentAt(schoolB, "Escola Benedita", 130, status.Overdue),
		studentAt(schoolB, "Escola Benedita", 120, status.UpToDate),
		// C: all up to date
		studentAt(schoolC, "Escola Castro", 120, status.UpToDate),
	}

	result := Ranking(items)
	if len(result) != 3 {
		t.Fatalf("got %d schools, want 3", len(result))
	}
	if result[0].SchoolName != "Escola Benedita" {
		t.Errorf("first = %s, want Escola Benedita (highest delay)", result[0].SchoolName)
	}
	if result[1].SchoolName != "Escola Anita" {
		t.Errorf("second = %s, want Escola Anita (no-data tiebreak)", result[1].SchoolName)
	}
	if result[2].SchoolName != "Escola Castro" {
		t.Errorf("last = %s, want Escola Castro", result[2].SchoolName)
	}
	if result[0].DelayPercent == nil || *result[0].DelayPercent != 50.0 {
		t.Errorf("delayPercent = %v, want 50.0", result[0].DelayPercent)
	}
}

func TestByAgeBucket(t *testing.T) {
	school := uuid.New()
	items := []StudentStatus{
		studentAt(school, "Escola Anita", 5, status.NoData),
		studentAt(school, "Escola Anita", 119, status.Incomplete),
		studentAt(school, "Escola Anita", 119, status.UpToDate),
		studentAt(school, "Escola Anita", 200, status.Overdue),
	}

	result, err := ByAgeBucket(items, DefaultBuckets())
	if err != nil {
		t.Fatalf("ByAgeBucket: %v", err)
	}
	if len(result) != 5 {
		t.Fatalf("got %d buckets, want 5", len(result))
	}
	if result[0].NoData != 1 || result[0].TotalStudents != 1 {
		t.Errorf("bucket 0-11 counts wrong: %+v", result[0])
	}
	hpvBucket := result[3]
	if hpvBucket.TotalStudents != 2 || hpvBucket.Incomplete != 1 || hpvBucket.UpToDate != 1 {
		t.Errorf("bucket 108-179 counts wrong: %+v", hpvBucket)
	}
	if hpvBucket.CoveragePercent != 50.0 {
		t.Errorf("coveragePercent = %v, want 50.0", hpvBucket.CoveragePercent)
	}
	// Empty bucket keeps 0 percent, never NaN.
	if result[1].TotalStudents != 0 || result[1].CoveragePercent != 0 {
		t.Errorf("empty bucket: %+v", result[1])
	}
}

func TestByAgeBucket_StudentOutsideAllBucketsExcluded(t *testing.T) {
	buckets := []AgeBucket{{Label: "108-179", MinMonths: 108, MaxMonths: 179}}
	school := uuid.New()
	items := []StudentStatus{
		studentAt(school, "Escola Anita", 50, status.UpToDate),
		studentAt(school, "Escola Anita", 120, status.UpToDate),
	}
	result, err := ByAgeBucket(items, buckets)
	if err != nil {
		t.Fatalf("ByAgeBucket: %v", err)
	}
	if result[0].TotalStudents != 1 {
		t.Errorf("totalStudents = %d, want 1 (age 50 is outside the bucket)", result[0].TotalStudents)
	}
}

func TestByAgeBucket_InvalidBuckets(t *testing.T) {
	_, err := ByAgeBucket(nil, []AgeBucket{
		{Label: "a", MinMonths: 0, MaxMonths: 20},
		{Label: "b", MinMonths: 10, MaxMonths: 30},
	})
	if err == nil {
		t.Fatal("expected validation error for overlapping buckets")
	}
}

func TestPendingAgeDistribution(t *testing.T) {
	school := uuid.New()
	withPending := studentAt(school, "Escola Anita", 119, status.Overdue)
	withPending.Pending = []status.PendingDose{
		{VaccineCode: "HPV", DoseNumber: 1, Status: status.DoseOverdue},
		{VaccineCode: "HPV", DoseNumber: 2, Status: status.DosePending},
	}
	clean := studentAt(school, "Escola Anita", 119, status.UpToDate)

	result, err := PendingAgeDistribution([]StudentStatus{withPending, clean}, DefaultBuckets())
	if err != nil {
		t.Fatalf("PendingAgeDistribution: %v", err)
	}
	hpvBucket := result[3]
	if hpvBucket.PendingCount != 2 {
		t.Errorf("pendingCount = %d, want 2", hpvBucket.PendingCount)
	}
	if hpvBucket.OverdueCount != 1 {
		t.Errorf("overdueCount = %d, want 1", hpvBucket.OverdueCount)
	}
}
