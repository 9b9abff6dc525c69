package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxPeriod is an immutable snapshot of a closed period. Only Paid and PaidAt
// change after creation.
type TaxPeriod struct {
	ID          uuid.UUID       `db:"id"`
	EntityID    uuid.UUID       `db:"entity_id"`
	PeriodStart time.Time       `db:"period_start"`
	PeriodEnd   time.Time       `db:"period_end"`
	Turnover    decimal.Decimal `db:"turnover"`
	TaxRate     decimal.Decimal `db:"tax_rate"`
	TaxDue      decimal.Decimal `db:"tax_due"`
	Paid        bool            `db:"paid"`
	PaidAt      *time.Time      `db:"paid_at"`
	CreatedAt   time.Time       `db:"created_at"`
}
