package school

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

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

const cols = `id, name, inep_code, address, territory_ref, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*School, error) {
	var s School
	err := row.Scan(&s.ID, &s.Name, &s.INEPCode, &s.Address, &s.TerritoryRef, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *School) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO school (id, name, inep_code, address, territory_ref)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.Name, s.INEPCode, s.Address, s.TerritoryRef)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*School, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM school WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, s *School) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE school
		SET name = $2, inep_code = $3, address = $4, territory_ref = $5, updated_at = NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.INEPCode, s.Address, s.TerritoryRef)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM school WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, q string, limit, offset int) ([]*School, int, error) {
	where := ``
	args := []any{}
	if q != "" {
		where = ` WHERE name ILIKE '%' || $1 || '%'`
		args = append(args, q)
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM school`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	query := `SELECT ` + cols + ` FROM school` + where +
		` ORDER BY name LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*School
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountStudents(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM student WHERE school_id = $1`, id).Scan(&n)
	return n, err
}
