package record

import (
	"context"

	"github.com/google/uuid"

	"github.com/imuniza/imuniza/internal/domain/status"
)

type Repository interface {
	Create(ctx context.Context, rec *VaccinationRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*VaccinationRecord, error)
	Update(ctx context.Context, rec *VaccinationRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*VaccinationRecord, error)

	// EngineRecords loads the records of the given students in the
	// shape the status engine consumes, keyed by student.
	EngineRecords(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID][]status.Record, error)

	// StudentSchool resolves the school a student belongs to, used for
	// school-role scoping.
	StudentSchool(ctx context.Context, studentID uuid.UUID) (uuid.UUID, error)
}
