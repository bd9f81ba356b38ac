package coverage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imuniza/imuniza/internal/platform/db"
)

// PreferenceRepository persists per-user dashboard bucket choices.
type PreferenceRepository interface {
	// Get returns the saved buckets, or nil when the user never saved
	// any.
	Get(ctx context.Context, userID string) ([]AgeBucket, error)
	Put(ctx context.Context, userID string, buckets []AgeBucket) error
}

type preferencePG struct{ pool *pgxpool.Pool }

func NewPreferencePG(pool *pgxpool.Pool) PreferenceRepository {
	return &preferencePG{pool: pool}
}

func (r *preferencePG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *preferencePG) Get(ctx context.Context, userID string) ([]AgeBucket, error) {
	var raw []byte
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT age_buckets FROM dashboard_preference WHERE user_id = $1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var buckets []AgeBucket
	if err := json.Unmarshal(raw, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

func (r *preferencePG) Put(ctx context.Context, userID string, buckets []AgeBucket) error {
	raw, err := json.Marshal(buckets)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO dashboard_preference (user_id, age_buckets)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET age_buckets = EXCLUDED.age_buckets, updated_at = NOW()`,
		userID, raw)
	return err
}
