package school

import (
	"time"

	"github.com/google/uuid"
)

// School maps to the school table.
type School struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	INEPCode     string    `db:"inep_code" json:"inep_code"`
	Address      string    `db:"address" json:"address"`
	TerritoryRef string    `db:"territory_ref" json:"territory_ref"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
