package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// RecognizedInvoiceStatuses are the states that count as revenue.
var RecognizedInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusIssued,
	InvoiceStatusPartiallyPaid,
	InvoiceStatusPaid,
}

// Recognized reports whether invoices in this status count towards turnover.
func (s InvoiceStatus) Recognized() bool {
	for _, r := range RecognizedInvoiceStatuses {
		if s == r {
			return true
		}
	}
	return false
}

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

type Invoice struct {
	ID         uuid.UUID       `db:"id"`
	EntityID   uuid.UUID       `db:"entity_id"`
	Number     string          `db:"number"`
	ClientName string          `db:"client_name"`
	IssueDate  time.Time       `db:"issue_date"`
	Total      decimal.Decimal `db:"total"`
	Currency   string          `db:"currency"`
	Status     InvoiceStatus   `db:"status"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// InvoiceTotal is the projection used by turnover and income reports.
type InvoiceTotal struct {
	IssueDate time.Time       `db:"issue_date"`
	Total     decimal.Decimal `db:"total"`
	Currency  string          `db:"currency"`
	Status    InvoiceStatus   `db:"status"`
}
