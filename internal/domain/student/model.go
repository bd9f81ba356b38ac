package student

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imuniza/imuniza/internal/domain/status"
)

// Sex uses the national register's codes: F, M or NI (not informed).
type Sex string

const (
	SexFemale      Sex = "F"
	SexMale        Sex = "M"
	SexNotInformed Sex = "NI"
)

func (s Sex) Valid() bool {
	return s == SexFemale || s == SexMale || s == SexNotInformed
}

func ParseSex(raw string) (Sex, error) {
	if raw == "" {
		return SexNotInformed, nil
	}
	s := Sex(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown sex code %q", raw)
	}
	return s, nil
}

// Student is one enrolled child. Age is never stored, always derived from
// the birth date at read time.
type Student struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	SchoolID        uuid.UUID   `db:"school_id" json:"school_id"`
	FullName        string      `db:"full_name" json:"full_name"`
	BirthDate       status.Date `db:"birth_date" json:"birth_date"`
	Sex             Sex         `db:"sex" json:"sex"`
	GuardianName    string      `db:"guardian_name" json:"guardian_name"`
	GuardianContact string      `db:"guardian_contact" json:"guardian_contact"`
	ClassGroup      string      `db:"class_group" json:"class_group"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`

	// Joined from the school table.
	SchoolName string `db:"school_name" json:"school_name"`
}

// ListItem is a student row enriched with the derived fields the listing
// screens show.
type ListItem struct {
	*Student
	AgeMonths     int           `json:"age_months"`
	CurrentStatus status.Status `json:"current_status"`
}

// Filters are the listing filters. Age and status are computed per
// student and applied after the database query.
type Filters struct {
	Query    string
	SchoolID *uuid.UUID
	Sex      Sex
	AgeMin   *int
	AgeMax   *int
	Status   *status.Status
}
