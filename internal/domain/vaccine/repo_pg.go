package vaccine

import (
	"context"

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

const cols = `id, code, name, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Vaccine, error) {
	var v Vaccine
	err := row.Scan(&v.ID, &v.Code, &v.Name, &v.CreatedAt, &v.UpdatedAt)
	return &v, err
}

func (r *repoPG) Create(ctx context.Context, v *Vaccine) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO vaccine (id, code, name) VALUES ($1, $2, $3)`,
		v.ID, v.Code, v.Name)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Vaccine, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM vaccine WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Vaccine, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM vaccine WHERE code = $1`, code))
}

func (r *repoPG) Update(ctx context.Context, v *Vaccine) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE vaccine SET name = $2, updated_at = NOW() WHERE id = $1`,
		v.ID, v.Name)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM vaccine WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Vaccine, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM vaccine`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM vaccine ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Vaccine
	for rows.Next() {
		v, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountReferences(ctx context.Context, id uuid.UUID) (int, int, error) {
	var rules, records int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM schedule_rule WHERE vaccine_id = $1),
			(SELECT COUNT(*) FROM vaccination_record WHERE vaccine_id = $1)`,
		id).Scan(&rules, &records)
	return rules, records, err
}
