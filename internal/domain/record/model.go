package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imuniza/imuniza/internal/domain/status"
)

// Source tells who vouched for a dose. School staff transcribe the paper
// card; health units confirm against the official registry.
type Source string

const (
	SourceSchool Source = "INFORMADO_ESCOLA"
	SourceHealth Source = "CONFIRMADO_SAUDE"
)

func (s Source) Valid() bool {
	return s == SourceSchool || s == SourceHealth
}

func ParseSource(raw string) (Source, error) {
	s := Source(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown record source %q", raw)
	}
	return s, nil
}

// VaccinationRecord is one administered dose of one student. The pair
// (student, vaccine, dose) is unique: a shot is taken once.
type VaccinationRecord struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	StudentID       uuid.UUID   `db:"student_id" json:"student_id"`
	VaccineID       uuid.UUID   `db:"vaccine_id" json:"vaccine_id"`
	DoseNumber      int         `db:"dose_number" json:"dose_number"`
	ApplicationDate status.Date `db:"application_date" json:"application_date"`
	Source          Source      `db:"source" json:"source"`
	Notes           string      `db:"notes" json:"notes"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`

	// Joined from the vaccine table.
	VaccineCode string `db:"vaccine_code" json:"vaccine_code"`
	VaccineName string `db:"vaccine_name" json:"vaccine_name"`
}
