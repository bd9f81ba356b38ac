package vaccine

import (
	"time"

	"github.com/google/uuid"
)

// Vaccine maps to the vaccine table. The code is the stable identity used
// by schedule rules and vaccination records; only the display name may
// change once the vaccine is referenced.
type Vaccine struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
