package schedule

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, v *ScheduleVersion) error
	GetByID(ctx context.Context, id uuid.UUID) (*ScheduleVersion, error)
	// GetActive returns the active version, or nil when no version is
	// active. No error is reported for the nil case.
	GetActive(ctx context.Context) (*ScheduleVersion, error)
	Update(ctx context.Context, v *ScheduleVersion) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*ScheduleVersion, int, error)

	// Activate demotes the current active version and promotes id, in
	// one transaction. The partial unique index on is_active makes
	// concurrent activations fail rather than leave two active rows.
	Activate(ctx context.Context, id uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error

	CreateRule(ctx context.Context, r *ScheduleRule) error
	GetRule(ctx context.Context, id uuid.UUID) (*ScheduleRule, error)
	UpdateRule(ctx context.Context, r *ScheduleRule) error
	DeleteRule(ctx context.Context, id uuid.UUID) error
	ListRules(ctx context.Context, versionID uuid.UUID) ([]*ScheduleRule, error)
}
