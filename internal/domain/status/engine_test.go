package status

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func hpvSchedule() *Schedule {
	return &Schedule{
		Code: "PNI-2025",
		Rules: []Rule{
			{VaccineCode: "HPV", VaccineName: "HPV quadrivalente", DoseNumber: 1, MinAgeMonths: 108, MaxAgeMonths: 179},
			{VaccineCode: "HPV", VaccineName: "HPV quadrivalente", DoseNumber: 2, MinAgeMonths: 114, MaxAgeMonths: 179},
		},
	}
}

func TestCompute_NoRecordsIsNoData(t *testing.T) {
	res, err := Compute(uuid.New(), date(2015, 1, 15), nil, hpvSchedule(), date(2025, 1, 10))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Status != NoData {
		t.Errorf("status = %v, want NoData", res.Status)
	}
	if res.AgeMonths != 119 {
		t.Errorf("ageMonths = %d, want 119", res.AgeMonths)
	}
	// Doses are still classified even when the overall status is NoData.
	if len(res.Pending) != 2 {
		t.Errorf("pending = %d entries, want 2", len(res.Pending))
	}
}

func TestCompute_NoActiveSchedule(t *testing.T) {
	res, err := Compute(uuid.New(), date(2015, 1, 15), []Record{
		{VaccineCode: "HPV", DoseNumber: 1, ApplicationDate: date(2024, 6, 1)},
	}, nil, date(2025, 1, 10))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Status != NoData {
		t.Errorf("status = %v, want NoData", res.Status)
	}
	if res.ActiveScheduleCode != nil {
		t.Errorf("activeScheduleCode = %v, want nil", *res.ActiveScheduleCode)
	}
	if len(res.Pending) != 0 || len(res.Future) != 0 {
		t.Errorf("pending/future must be empty without a schedule")
	}
}

func TestCompute_PendingWithinWindow(t *testing.T) {
	// Age 119: dose 1 window (108-179) open, dose 2 window (114-179) open.
	// An unrelated record keeps the student out of NoData.
	records := []Record{
		{VaccineCode: "DTPA", DoseNumber: 1, ApplicationDate: date(2020, 3, 1)},
	}
	res, err := Compute(uuid.New(), date(2015, 1, 15), records, hpvSchedule(), date(2025, 1, 10))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Status != Incomplete {
		t.Errorf("status = %v, want Incomplete", res.Status)
	}
	if len(res.Pending) != 2 {
		t.Fatalf("pending = %d entries, want 2", len(res.Pending))
	}
	for _, dose := range res.Pending {
		if dose.Status != DosePending {
			t.Errorf("dose %s/%d status = %v, want DosePending", dose.VaccineCode, dose.DoseNumber, dose.Status)
		}
	}
}

func TestCompute_OverdueAfterWindowCloses(t *testing.T) {
	// Age ~180 months: both windows (max 179) have closed.
	records := []Record{
		{VaccineCode: "DTPA", DoseNumber: 1, ApplicationDate: date(2020, 3, 1)},
	}
	res, err := Compute(uuid.New(), date(2015, 1, 15), records, hpvSchedule(), date(2030, 2, 1))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Status != Overdue {
		t.Errorf("status = %v, want Overdue", res.Status)
	}
	for _, dose := range res.Pending {
		if dose.Status != DoseOverdue {
			t.Errorf("dose %s/%d status = %v, want DoseOverdue", dose.VaccineCode, dose.DoseNumber, dose.Status)
		}
	}
}

func TestCompute_SatisfiedRulesNeverListed(t *testing.T) {
	records := []Record{
		{VaccineCode: "HPV", DoseNumber: 1, ApplicationDate: date(2024, 6, 1)},
		{VaccineCode: "HPV", DoseNumber: 2, ApplicationDate: date(2024, 12, 1)},
	}
	res, err := Compute(uuid.New(), date(2015, 1, 15), records, hpvSchedule(), date(2025, 1, 10))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Status != UpToDate {
		t.Errorf("status = %v, want UpToDate", res.Status)
	}
	if len(res.Pending) != 0 {
		t.Errorf("pending = %v, want empty", res.Pending)
	}
}

func TestCompute_FutureDosesDoNotBlockUpToDate(t *testing.T) {
	// Age 110: dose 1 window open and satisfied, dose 2 window (114+) not
	// yet entered.
	records := []Record{
		{VaccineCode: "HPV", DoseNumber: 1, ApplicationDate: date(2024, 2, 1)},
	}
	res, err := Compute(uuid.New(), date(2015, 1, 15), records, hpvSchedule(), date(2024, 3, 20))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Status != UpToDate {
		t.Errorf("status = %v, want UpToDate", res.Status)
	}
	if len(res.Future) != 1 {
		t.Fatalf("future = %d entries, want 1", len(res.Future))
	}
	fut := res.Future[0]
	if fut.DoseNumber != 2 {
		t.Errorf("future dose number = %d, want 2", fut.DoseNumber)
	}
	if want := 114 - res.AgeMonths; fut.MonthsUntilDue != want {
		t.Errorf("monthsUntilDue = %d, want %d", fut.MonthsUntilDue, want)
	}
}

func TestCompute_DuplicateRecordsEarliestWins(t *testing.T) {
	// Two records for the same (vaccine, dose); the earlier one is
	// authoritative, so the rule counts as satisfied either way.
	records := []Record{
		{VaccineCode: "HPV", DoseNumber: 1, ApplicationDate: date(2024, 8, 1)},
		{VaccineCode: "HPV", DoseNumber: 1, ApplicationDate: date(2024, 6, 1)},
		{VaccineCode: "HPV", DoseNumber: 2, ApplicationDate: date(2024, 12, 1)},
	}
	res, err := Compute(uuid.New(), date(2015, 1, 15), records, hpvSchedule(), date(2025, 1, 10))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Status != UpToDate {
		t.Errorf("status = %v, want UpToDate", res.Status)
	}
}

func TestCompute_OutputSortedByVaccineThenDose(t *testing.T) {
	schedule := &Schedule{
		Code: "PNI-2025",
		Rules: []Rule{
			{VaccineCode: "MENACWY", VaccineName: "Meningocócica ACWY", DoseNumber: 1, MinAgeMonths: 132, MaxAgeMonths: 179},
			{VaccineCode: "HPV", VaccineName: "HPV quadrivalente", DoseNumber: 2, MinAgeMonths: 114, MaxAgeMonths: 179},
			{VaccineCode: "HPV", VaccineName: "HPV quadrivalente", DoseNumber: 1, MinAgeMonths: 108, MaxAgeMonths: 179},
		},
	}
	records := []Record{
		{VaccineCode: "DTPA", DoseNumber: 1, ApplicationDate: date(2020, 3, 1)},
	}
	res, err := Compute(uuid.New(), date(2013, 1, 15), records, schedule, date(2025, 1, 20))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	var got [][2]interface{}
	for _, dose := range res.Pending {
		got = append(got, [2]interface{}{dose.VaccineCode, dose.DoseNumber})
	}
	want := [][2]interface{}{{"HPV", 1}, {"HPV", 2}, {"MENACWY", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pending order = %v, want %v", got, want)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	records := []Record{
		{VaccineCode: "HPV", DoseNumber: 1, ApplicationDate: date(2024, 6, 1)},
	}
	id := uuid.New()
	first, err := Compute(id, date(2015, 1, 15), records, hpvSchedule(), date(2025, 1, 10))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, err := Compute(id, date(2015, 1, 15), records, hpvSchedule(), date(2025, 1, 10))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different results:\n%+v\n%+v", first, second)
	}
}

func TestCompute_InvalidDatePropagates(t *testing.T) {
	_, err := Compute(uuid.New(), date(2030, 1, 1), nil, hpvSchedule(), date(2025, 1, 1))
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestResult_WireFormat(t *testing.T) {
	records := []Record{
		{VaccineCode: "DTPA", DoseNumber: 1, ApplicationDate: date(2020, 3, 1)},
	}
	res, err := Compute(uuid.New(), date(2015, 1, 15), records, hpvSchedule(), date(2030, 2, 1))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["status"] != "ATRASADO" {
		t.Errorf("status token = %v, want ATRASADO", decoded["status"])
	}
	if decoded["asOfDate"] != "2030-02-01" {
		t.Errorf("asOfDate = %v, want 2030-02-01", decoded["asOfDate"])
	}
	if decoded["activeScheduleCode"] != "PNI-2025" {
		t.Errorf("activeScheduleCode = %v, want PNI-2025", decoded["activeScheduleCode"])
	}
	pending, ok := decoded["pending"].([]interface{})
	if !ok || len(pending) == 0 {
		t.Fatalf("pending missing from wire output: %v", decoded["pending"])
	}
	first := pending[0].(map[string]interface{})
	if first["status"] != "ATRASADA" {
		t.Errorf("pending dose token = %v, want ATRASADA", first["status"])
	}
	for _, field := range []string{"vaccineCode", "vaccineName", "doseNumber", "recommendedMinAgeMonths", "recommendedMaxAgeMonths"} {
		if _, ok := first[field]; !ok {
			t.Errorf("pending dose missing field %s", field)
		}
	}
}
