package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          uuid.UUID       `db:"id"`
	EntityID    uuid.UUID       `db:"entity_id"`
	Date        time.Time       `db:"date"`
	Amount      decimal.Decimal `db:"amount"`
	Currency    string          `db:"currency"`
	Description string          `db:"description"`
	CategoryID  *uuid.UUID      `db:"category_id"`
	CreatedAt   time.Time       `db:"created_at"`
}
