package student

import (
	"context"
	"strconv"
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

const cols = `st.id, st.school_id, st.full_name, st.birth_date, st.sex,
	st.guardian_name, st.guardian_contact, st.class_group,
	st.created_at, st.updated_at, sc.name`

func (r *repoPG) scan(row pgx.Row) (*Student, error) {
	var st Student
	var birth time.Time
	err := row.Scan(&st.ID, &st.SchoolID, &st.FullName, &birth, &st.Sex,
		&st.GuardianName, &st.GuardianContact, &st.ClassGroup,
		&st.CreatedAt, &st.UpdatedAt, &st.SchoolName)
	st.BirthDate = status.NewDate(birth)
	return &st, err
}

func (r *repoPG) Create(ctx context.Context, st *Student) error {
	st.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO student (id, school_id, full_name, birth_date, sex, guardian_name, guardian_contact, class_group)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		st.ID, st.SchoolID, st.FullName, st.BirthDate.Time, st.Sex,
		st.GuardianName, st.GuardianContact, st.ClassGroup)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Student, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `
		SELECT `+cols+`
		FROM student st
		JOIN school sc ON sc.id = st.school_id
		WHERE st.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, st *Student) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE student
		SET school_id = $2, full_name = $3, birth_date = $4, sex = $5,
		    guardian_name = $6, guardian_contact = $7, class_group = $8,
		    updated_at = NOW()
		WHERE id = $1`,
		st.ID, st.SchoolID, st.FullName, st.BirthDate.Time, st.Sex,
		st.GuardianName, st.GuardianContact, st.ClassGroup)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM student WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filters) ([]*Student, error) {
	query := `SELECT ` + cols + `
		FROM student st
		JOIN school sc ON sc.id = st.school_id
		WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.Query != "" {
		query += ` AND st.full_name ILIKE '%' || ` + arg(f.Query) + ` || '%'`
	}
	if f.SchoolID != nil {
		query += ` AND st.school_id = ` + arg(*f.SchoolID)
	}
	if f.Sex != "" {
		query += ` AND st.sex = ` + arg(f.Sex)
	}
	query += ` ORDER BY st.full_name`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Student
	for rows.Next() {
		st, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, st)
	}
	return items, rows.Err()
}
