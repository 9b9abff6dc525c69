package models

import (
	"time"

	"github.com/google/uuid"
)

type TaxStatus string

const (
	TaxStatusSmallBusiness TaxStatus = "SMALL_BUSINESS"
	TaxStatusStandard      TaxStatus = "STANDARD"
)

// Entity is a sole proprietor's bookkeeping profile and the tenant boundary
// for every other table.
type Entity struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	DisplayName string    `db:"display_name"`
	TaxStatus   TaxStatus `db:"tax_status"`
	TaxID       *string   `db:"tax_id"`
	Timezone    string    `db:"timezone"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (s TaxStatus) Valid() bool {
	return s == TaxStatusSmallBusiness || s == TaxStatusStandard
}
