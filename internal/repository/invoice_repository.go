package repository

import (
	"context"
	"time"

	"sole-ledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var invoiceColumns = []string{
	"id", "entity_id", "number", "client_name", "issue_date", "total", "currency", "status", "created_at", "updated_at",
}

type InvoiceRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewInvoiceRepository(db *pgxpool.Pool, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(&inv.ID, &inv.EntityID, &inv.Number, &inv.ClientName, &inv.IssueDate,
		&inv.Total, &inv.Currency, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func qualified(prefix string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = prefix + "." + c
	}
	return out
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	query := squirrel.Insert("invoices").
		Columns(invoiceColumns...).
		Values(invoice.ID, invoice.EntityID, invoice.Number, invoice.ClientName, invoice.IssueDate,
			invoice.Total, invoice.Currency, invoice.Status, invoice.CreatedAt, invoice.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return translate(err)
}

func (r *InvoiceRepository) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Invoice, error) {
	query := squirrel.Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{"entity_id": entityID}).
		OrderBy("issue_date DESC", "number DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]models.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (r *InvoiceRepository) GetForUser(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error) {
	query := squirrel.Select(qualified("i", invoiceColumns)...).
		From("invoices i").
		Join("entities e ON e.id = i.entity_id").
		Where(squirrel.Eq{"i.id": invoiceID, "e.user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return scanInvoice(r.db.QueryRow(ctx, sql, args...))
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, invoiceID uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error) {
	query := squirrel.Update("invoices").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": invoiceID}).
		Suffix("RETURNING " + joinColumns(invoiceColumns)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return scanInvoice(r.db.QueryRow(ctx, sql, args...))
}

func (r *InvoiceRepository) CountInYear(ctx context.Context, entityID uuid.UUID, year int) (int, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	query := squirrel.Select("COUNT(*)").
		From("invoices").
		Where(squirrel.Eq{"entity_id": entityID}).
		Where(squirrel.GtOrEq{"issue_date": start}).
		Where(squirrel.Lt{"issue_date": start.AddDate(1, 0, 0)}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListRecognizedTotals returns the revenue-relevant projection of invoices
// issued in [from, to) whose status counts as recognized.
func (r *InvoiceRepository) ListRecognizedTotals(ctx context.Context, entityID uuid.UUID, from, to time.Time) ([]models.InvoiceTotal, error) {
	statuses := make([]string, 0, len(models.RecognizedInvoiceStatuses))
	for _, s := range models.RecognizedInvoiceStatuses {
		statuses = append(statuses, string(s))
	}

	query := squirrel.Select("issue_date", "total", "currency", "status").
		From("invoices").
		Where(squirrel.Eq{"entity_id": entityID, "status": statuses}).
		Where(squirrel.GtOrEq{"issue_date": from}).
		Where(squirrel.Lt{"issue_date": to}).
		OrderBy("issue_date ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]models.InvoiceTotal, 0)
	for rows.Next() {
		var t models.InvoiceTotal
		if err := rows.Scan(&t.IssueDate, &t.Total, &t.Currency, &t.Status); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
