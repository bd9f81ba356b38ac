package schedule

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleVersion is one issue of the vaccination calendar. At most one
// version is active at a time; the engine only ever evaluates against
// the active one.
type ScheduleVersion struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// RulesCount is populated on list reads only.
	RulesCount int `db:"-" json:"rules_count"`
}

// ScheduleRule is one dose requirement inside a version: which shot of
// which vaccine is due inside which age window (in whole months).
type ScheduleRule struct {
	ID                uuid.UUID `db:"id" json:"id"`
	ScheduleVersionID uuid.UUID `db:"schedule_version_id" json:"schedule_version_id"`
	VaccineID         uuid.UUID `db:"vaccine_id" json:"vaccine_id"`
	DoseNumber        int       `db:"dose_number" json:"dose_number"`
	MinAgeMonths      int       `db:"min_age_months" json:"min_age_months"`
	MaxAgeMonths      int       `db:"max_age_months" json:"max_age_months"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`

	// Joined from the vaccine table.
	VaccineCode string `db:"vaccine_code" json:"vaccine_code"`
	VaccineName string `db:"vaccine_name" json:"vaccine_name"`
}
