package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sole-ledger/internal/models"
)

// The store interfaces below are satisfied by the pgx repositories in
// internal/repository. A missing row is reported as pgx.ErrNoRows and a
// unique violation as repository.ErrDuplicate.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type EntityStore interface {
	Create(ctx context.Context, entity *models.Entity) error
	Update(ctx context.Context, entity *models.Entity) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Entity, error)
	GetForUser(ctx context.Context, userID, entityID uuid.UUID) (*models.Entity, error)
}

type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Category, error)
	GetForEntity(ctx context.Context, entityID, categoryID uuid.UUID) (*models.Category, error)
}

type RuleStore interface {
	Create(ctx context.Context, rule *models.Rule) error
	// ListByEntity returns rules by ascending priority.
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Rule, error)
}

type BankTransactionStore interface {
	// CreateBatch inserts all rows atomically and returns how many were written.
	CreateBatch(ctx context.Context, txs []models.BankTransaction) (int64, error)
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.BankTransaction, error)
	ListInRange(ctx context.Context, entityID uuid.UUID, from, to time.Time) ([]models.BankTransaction, error)
	GetForUser(ctx context.Context, userID, txID uuid.UUID) (*models.BankTransaction, error)
	UpdateLinks(ctx context.Context, txID uuid.UUID, categoryID, linkedInvoiceID *uuid.UUID) (*models.BankTransaction, error)
}

type InvoiceStore interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Invoice, error)
	GetForUser(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error)
	UpdateStatus(ctx context.Context, invoiceID uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error)
	CountInYear(ctx context.Context, entityID uuid.UUID, year int) (int, error)
	// ListRecognizedTotals returns recognized invoices issued in [from, to).
	ListRecognizedTotals(ctx context.Context, entityID uuid.UUID, from, to time.Time) ([]models.InvoiceTotal, error)
}

type ExpenseStore interface {
	Create(ctx context.Context, expense *models.Expense) error
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Expense, error)
	ListInRange(ctx context.Context, entityID uuid.UUID, from, to time.Time) ([]models.Expense, error)
}

type TaxPeriodStore interface {
	// CreateIfAbsent inserts the period unless one with the same entity and
	// bounds exists, reporting whether a row was written.
	CreateIfAbsent(ctx context.Context, period *models.TaxPeriod) (bool, error)
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.TaxPeriod, error)
	GetForUser(ctx context.Context, userID, periodID uuid.UUID) (*models.TaxPeriod, error)
	GetByBounds(ctx context.Context, entityID uuid.UUID, start, end time.Time) (*models.TaxPeriod, error)
	MarkPaid(ctx context.Context, periodID uuid.UUID, paidAt time.Time) (*models.TaxPeriod, error)
}

type ReminderStore interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Reminder, error)
	GetRecipient(ctx context.Context, reminderID uuid.UUID) (*models.ReminderRecipient, error)
	MarkSent(ctx context.Context, reminderID uuid.UUID, sentAt time.Time) error
	// ListUnsentDueBefore returns unsent reminders due at or before t.
	ListUnsentDueBefore(ctx context.Context, t time.Time) ([]models.Reminder, error)
}

type AuditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// ownedEntity loads an entity owned by userID. Foreign and missing entities
// are indistinguishable to the caller.
func ownedEntity(ctx context.Context, entities EntityStore, userID, entityID uuid.UUID) (*models.Entity, error) {
	entity, err := entities.GetForUser(ctx, userID, entityID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEntityNotFound
		}
		return nil, err
	}
	return entity, nil
}
