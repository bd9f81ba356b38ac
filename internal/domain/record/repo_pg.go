package record

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imuniza/imuniza/internal/domain/status"
	"github.com/imuniza/imuniza/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `r.id, r.student_id, r.vaccine_id, r.dose_number, r.application_date,
	r.source, r.notes, r.created_at, r.updated_at, v.code, v.name`

func (r *repoPG) scan(row pgx.Row) (*VaccinationRecord, error) {
	var rec VaccinationRecord
	var applied time.Time
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.VaccineID, &rec.DoseNumber, &applied,
		&rec.Source, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.VaccineCode, &rec.VaccineName)
	rec.ApplicationDate = status.NewDate(applied)
	return &rec, err
}

func (r *repoPG) Create(ctx context.Context, rec *VaccinationRecord) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO vaccination_record (id, student_id, vaccine_id, dose_number, application_date, source, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.StudentID, rec.VaccineID, rec.DoseNumber, rec.ApplicationDate.Time, rec.Source, rec.Notes)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*VaccinationRecord, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `
		SELECT `+cols+`
		FROM vaccination_record r
		JOIN vaccine v ON v.id = r.vaccine_id
		WHERE r.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, rec *VaccinationRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE vaccination_record
		SET dose_number = $2, application_date = $3, source = $4, notes = $5, updated_at = NOW()
		WHERE id = $1`,
		rec.ID, rec.DoseNumber, rec.ApplicationDate.Time, rec.Source, rec.Notes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM vaccination_record WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*VaccinationRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+cols+`
		FROM vaccination_record r
		JOIN vaccine v ON v.id = r.vaccine_id
		WHERE r.student_id = $1
		ORDER BY v.code, r.dose_number`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*VaccinationRecord
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (r *repoPG) EngineRecords(ctx context.Context, studentIDs []uuid.UUID) (map[uuid.UUID][]status.Record, error) {
	out := make(map[uuid.UUID][]status.Record, len(studentIDs))
	if len(studentIDs) == 0 {
		return out, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT r.student_id, v.code, r.dose_number, r.application_date
		FROM vaccination_record r
		JOIN vaccine v ON v.id = r.vaccine_id
		WHERE r.student_id = ANY($1)`, studentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var studentID uuid.UUID
		var rec status.Record
		if err := rows.Scan(&studentID, &rec.VaccineCode, &rec.DoseNumber, &rec.ApplicationDate); err != nil {
			return nil, err
		}
		out[studentID] = append(out[studentID], rec)
	}
	return out, rows.Err()
}

func (r *repoPG) StudentSchool(ctx context.Context, studentID uuid.UUID) (uuid.UUID, error) {
	var schoolID uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT school_id FROM student WHERE id = $1`, studentID).Scan(&schoolID)
	return schoolID, err
}
