package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BankTransaction struct {
	ID              uuid.UUID         `db:"id"`
	EntityID        uuid.UUID         `db:"entity_id"`
	Date            time.Time         `db:"date"`
	Amount          decimal.Decimal   `db:"amount"`
	Currency        string            `db:"currency"`
	Description     string            `db:"description"`
	Counterparty    *string           `db:"counterparty"`
	CategoryID      *uuid.UUID        `db:"category_id"`
	LinkedInvoiceID *uuid.UUID        `db:"linked_invoice_id"`
	Raw             map[string]string `db:"raw"`
	CreatedAt       time.Time         `db:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at"`

	// CategoryName is populated by list queries that join categories.
	CategoryName *string `db:"-"`
}
