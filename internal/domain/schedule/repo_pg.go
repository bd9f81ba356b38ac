package schedule

import (
	"context"
	"errors"

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

const versionCols = `id, code, name, is_active, created_at, updated_at`

func (r *repoPG) scanVersion(row pgx.Row) (*ScheduleVersion, error) {
	var v ScheduleVersion
	err := row.Scan(&v.ID, &v.Code, &v.Name, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	return &v, err
}

func (r *repoPG) Create(ctx context.Context, v *ScheduleVersion) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO schedule_version (id, code, name, is_active)
		VALUES ($1, $2, $3, false)`,
		v.ID, v.Code, v.Name)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ScheduleVersion, error) {
	return r.scanVersion(r.conn(ctx).QueryRow(ctx,
		`SELECT `+versionCols+` FROM schedule_version WHERE id = $1`, id))
}

func (r *repoPG) GetActive(ctx context.Context) (*ScheduleVersion, error) {
	v, err := r.scanVersion(r.conn(ctx).QueryRow(ctx,
		`SELECT `+versionCols+` FROM schedule_version WHERE is_active`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *repoPG) Update(ctx context.Context, v *ScheduleVersion) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE schedule_version SET name = $2, updated_at = NOW() WHERE id = $1`,
		v.ID, v.Name)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM schedule_version WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*ScheduleVersion, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM schedule_version`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT v.id, v.code, v.name, v.is_active, v.created_at, v.updated_at,
		       (SELECT COUNT(*) FROM schedule_rule r WHERE r.schedule_version_id = v.id)
		FROM schedule_version v
		ORDER BY v.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ScheduleVersion
	for rows.Next() {
		var v ScheduleVersion
		if err := rows.Scan(&v.ID, &v.Code, &v.Name, &v.IsActive, &v.CreatedAt, &v.UpdatedAt, &v.RulesCount); err != nil {
			return nil, 0, err
		}
		items = append(items, &v)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Activate(ctx context.Context, id uuid.UUID) error {
	// Joins the caller's transaction when one is in flight.
	if db.TxFromContext(ctx) != nil {
		return r.activate(ctx, id)
	}
	return db.InTx(ctx, r.pool, func(ctx context.Context) error {
		return r.activate(ctx, id)
	})
}

func (r *repoPG) activate(ctx context.Context, id uuid.UUID) error {
	if _, err := r.conn(ctx).Exec(ctx, `
		UPDATE schedule_version SET is_active = false, updated_at = NOW()
		WHERE is_active AND id <> $1`, id); err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE schedule_version SET is_active = true, updated_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE schedule_version SET is_active = false, updated_at = NOW()
		WHERE id = $1`, id)
	return err
}

const ruleCols = `r.id, r.schedule_version_id, r.vaccine_id, r.dose_number,
	r.min_age_months, r.max_age_months, r.created_at, r.updated_at,
	v.code, v.name`

func (r *repoPG) scanRule(row pgx.Row) (*ScheduleRule, error) {
	var rl ScheduleRule
	err := row.Scan(&rl.ID, &rl.ScheduleVersionID, &rl.VaccineID, &rl.DoseNumber,
		&rl.MinAgeMonths, &rl.MaxAgeMonths, &rl.CreatedAt, &rl.UpdatedAt,
		&rl.VaccineCode, &rl.VaccineName)
	return &rl, err
}

func (r *repoPG) CreateRule(ctx context.Context, rl *ScheduleRule) error {
	rl.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO schedule_rule (id, schedule_version_id, vaccine_id, dose_number, min_age_months, max_age_months)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rl.ID, rl.ScheduleVersionID, rl.VaccineID, rl.DoseNumber, rl.MinAgeMonths, rl.MaxAgeMonths)
	return err
}

func (r *repoPG) GetRule(ctx context.Context, id uuid.UUID) (*ScheduleRule, error) {
	return r.scanRule(r.conn(ctx).QueryRow(ctx, `
		SELECT `+ruleCols+`
		FROM schedule_rule r
		JOIN vaccine v ON v.id = r.vaccine_id
		WHERE r.id = $1`, id))
}

func (r *repoPG) UpdateRule(ctx context.Context, rl *ScheduleRule) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE schedule_rule
		SET dose_number = $2, min_age_months = $3, max_age_months = $4, updated_at = NOW()
		WHERE id = $1`,
		rl.ID, rl.DoseNumber, rl.MinAgeMonths, rl.MaxAgeMonths)
	return err
}

func (r *repoPG) DeleteRule(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM schedule_rule WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListRules(ctx context.Context, versionID uuid.UUID) ([]*ScheduleRule, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+ruleCols+`
		FROM schedule_rule r
		JOIN vaccine v ON v.id = r.vaccine_id
		WHERE r.schedule_version_id = $1
		ORDER BY v.code, r.dose_number`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ScheduleRule
	for rows.Next() {
		rl, err := r.scanRule(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rl)
	}
	return items, rows.Err()
}
