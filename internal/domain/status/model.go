package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rule is one dose requirement of a vaccination schedule: a specific shot
// number of a vaccine with its recommended age window in months.
type Rule struct {
	VaccineCode  string
	VaccineName  string
	DoseNumber   int
	MinAgeMonths int
	MaxAgeMonths int
}

// Schedule is the active schedule version the engine evaluates against.
type Schedule struct {
	Code  string
	Rules []Rule
}

// Record is an administered dose as seen by the engine.
type Record struct {
	VaccineCode     string
	DoseNumber      int
	ApplicationDate time.Time
}

// PendingDose is a rule whose window minimum has been reached but for which
// no matching record exists.
type PendingDose struct {
	VaccineCode  string     `json:"vaccineCode"`
	VaccineName  string     `json:"vaccineName"`
	DoseNumber   int        `json:"doseNumber"`
	MinAgeMonths int        `json:"recommendedMinAgeMonths"`
	MaxAgeMonths int        `json:"recommendedMaxAgeMonths"`
	Status       DoseStatus `json:"status"`
}

// FutureDose is a rule whose window minimum has not yet been reached.
type FutureDose struct {
	PendingDose
	MonthsUntilDue int `json:"monthsUntilDue"`
}

// Result is the computed immunization status of one student. It is derived
// on demand and never persisted: the age changes daily and schedules and
// records can change between calls.
type Result struct {
	StudentID          uuid.UUID     `json:"studentId"`
	StudentName        string        `json:"studentName,omitempty"`
	AgeMonths          int           `json:"ageMonths"`
	Status             Status        `json:"status"`
	AsOfDate           Date          `json:"asOfDate"`
	ActiveScheduleCode *string       `json:"activeScheduleCode"`
	Pending            []PendingDose `json:"pending"`
	Future             []FutureDose  `json:"future"`
}

// Date marshals as a bare calendar date (YYYY-MM-DD), matching what the
// dashboards expect for asOfDate and application dates.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(t time.Time) Date {
	return Date{t}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}
