package dto

import (
	"time"

	"github.com/google/uuid"

	"sole-ledger/internal/jobs"
	"sole-ledger/internal/models"
)

const dayLayout = "2006-01-02"

func optionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func optionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func NewTransactionResponse(tx models.BankTransaction) TransactionResponse {
	return TransactionResponse{
		ID:              tx.ID.String(),
		EntityID:        tx.EntityID.String(),
		Date:            tx.Date.Format(dayLayout),
		Amount:          tx.Amount.StringFixed(2),
		Currency:        tx.Currency,
		Description:     tx.Description,
		Counterparty:    tx.Counterparty,
		CategoryID:      optionalID(tx.CategoryID),
		Category:        tx.CategoryName,
		LinkedInvoiceID: optionalID(tx.LinkedInvoiceID),
		Raw:             tx.Raw,
		CreatedAt:       timestamp(tx.CreatedAt),
	}
}

func NewTaxPeriodResponse(p models.TaxPeriod) TaxPeriodResponse {
	return TaxPeriodResponse{
		ID:          p.ID.String(),
		EntityID:    p.EntityID.String(),
		PeriodStart: p.PeriodStart.Format(dayLayout),
		PeriodEnd:   p.PeriodEnd.Format(dayLayout),
		Turnover:    p.Turnover.StringFixed(2),
		TaxRate:     p.TaxRate.String(),
		TaxDue:      p.TaxDue.StringFixed(2),
		Paid:        p.Paid,
		PaidAt:      optionalTime(p.PaidAt),
		CreatedAt:   timestamp(p.CreatedAt),
	}
}

func NewReminderResponse(r models.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:        r.ID.String(),
		EntityID:  r.EntityID.String(),
		Type:      r.Type,
		DueDate:   timestamp(r.DueDate),
		Channel:   string(r.Channel),
		Payload:   r.Payload,
		SentAt:    optionalTime(r.SentAt),
		CreatedAt: timestamp(r.CreatedAt),
	}
}

func NewReminderDelivery(job *jobs.SendReminderJob) *ReminderDelivery {
	return &ReminderDelivery{
		Status:      string(job.Status),
		Retries:     job.RetryCount,
		Error:       job.Error,
		CompletedAt: optionalTime(job.CompletedAt),
	}
}

func NewAuditLogResponse(l models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:        l.ID.String(),
		UserID:    l.UserID.String(),
		EntityID:  l.EntityID.String(),
		Action:    l.Action,
		Details:   l.Details,
		CreatedAt: timestamp(l.CreatedAt),
	}
}

func NewEntityResponse(e models.Entity) EntityResponse {
	return EntityResponse{
		ID:          e.ID.String(),
		DisplayName: e.DisplayName,
		TaxStatus:   string(e.TaxStatus),
		TaxID:       e.TaxID,
		Timezone:    e.Timezone,
		CreatedAt:   timestamp(e.CreatedAt),
	}
}

func NewCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.String(),
		EntityID:  c.EntityID.String(),
		Name:      c.Name,
		Type:      string(c.Type),
		CreatedAt: timestamp(c.CreatedAt),
	}
}

func NewRuleResponse(r models.Rule) RuleResponse {
	contains := r.Condition.DescriptionContains
	if contains == nil {
		contains = []string{}
	}
	return RuleResponse{
		ID:        r.ID.String(),
		EntityID:  r.EntityID.String(),
		Priority:  r.Priority,
		Condition: RuleCondition{DescriptionContains: contains},
		Action: RuleAction{
			SetCategoryID:     r.Action.SetCategoryID,
			SetCategoryByName: r.Action.SetCategoryByName,
		},
		CreatedAt: timestamp(r.CreatedAt),
	}
}

func NewInvoiceResponse(inv models.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:         inv.ID.String(),
		EntityID:   inv.EntityID.String(),
		Number:     inv.Number,
		ClientName: inv.ClientName,
		IssueDate:  inv.IssueDate.Format(dayLayout),
		Total:      inv.Total.StringFixed(2),
		Currency:   inv.Currency,
		Status:     string(inv.Status),
		CreatedAt:  timestamp(inv.CreatedAt),
	}
}

func NewExpenseResponse(e models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID.String(),
		EntityID:    e.EntityID.String(),
		Date:        e.Date.Format(dayLayout),
		Amount:      e.Amount.StringFixed(2),
		Currency:    e.Currency,
		Description: e.Description,
		CategoryID:  optionalID(e.CategoryID),
		CreatedAt:   timestamp(e.CreatedAt),
	}
}

// MapSlice converts a list of models with one of the constructors above.
func MapSlice[M any, D any](items []M, convert func(M) D) []D {
	out := make([]D, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	return out
}
