package repository

import (
	"context"
	"errors"
	"time"

	"sole-ledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var taxPeriodColumns = []string{
	"id", "entity_id", "period_start", "period_end", "turnover", "tax_rate", "tax_due", "paid", "paid_at", "created_at",
}

type TaxPeriodRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaxPeriodRepository(db *pgxpool.Pool, logger *zap.Logger) *TaxPeriodRepository {
	return &TaxPeriodRepository{
		db:     db,
		logger: logger,
	}
}

func scanTaxPeriod(row pgx.Row) (*models.TaxPeriod, error) {
	var p models.TaxPeriod
	err := row.Scan(&p.ID, &p.EntityID, &p.PeriodStart, &p.PeriodEnd, &p.Turnover, &p.TaxRate,
		&p.TaxDue, &p.Paid, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateIfAbsent relies on the unique (entity_id, period_start, period_end)
// index, so two concurrent closes of one period store a single row.
func (r *TaxPeriodRepository) CreateIfAbsent(ctx context.Context, period *models.TaxPeriod) (bool, error) {
	query := squirrel.Insert("tax_periods").
		Columns(taxPeriodColumns...).
		Values(period.ID, period.EntityID, period.PeriodStart, period.PeriodEnd, period.Turnover,
			period.TaxRate, period.TaxDue, period.Paid, period.PaidAt, period.CreatedAt).
		Suffix("ON CONFLICT (entity_id, period_start, period_end) DO NOTHING RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *TaxPeriodRepository) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.TaxPeriod, error) {
	query := squirrel.Select(taxPeriodColumns...).
		From("tax_periods").
		Where(squirrel.Eq{"entity_id": entityID}).
		OrderBy("period_start DESC").
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

	periods := make([]models.TaxPeriod, 0)
	for rows.Next() {
		p, err := scanTaxPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *p)
	}
	return periods, rows.Err()
}

func (r *TaxPeriodRepository) GetForUser(ctx context.Context, userID, periodID uuid.UUID) (*models.TaxPeriod, error) {
	query := squirrel.Select(qualified("p", taxPeriodColumns)...).
		From("tax_periods p").
		Join("entities e ON e.id = p.entity_id").
		Where(squirrel.Eq{"p.id": periodID, "e.user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return scanTaxPeriod(r.db.QueryRow(ctx, sql, args...))
}

func (r *TaxPeriodRepository) GetByBounds(ctx context.Context, entityID uuid.UUID, start, end time.Time) (*models.TaxPeriod, error) {
	query := squirrel.Select(taxPeriodColumns...).
		From("tax_periods").
		Where(squirrel.Eq{"entity_id": entityID, "period_start": start, "period_end": end}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return scanTaxPeriod(r.db.QueryRow(ctx, sql, args...))
}

func (r *TaxPeriodRepository) MarkPaid(ctx context.Context, periodID uuid.UUID, paidAt time.Time) (*models.TaxPeriod, error) {
	query := squirrel.Update("tax_periods").
		Set("paid", true).
		Set("paid_at", paidAt).
		Where(squirrel.Eq{"id": periodID}).
		Suffix("RETURNING " + joinColumns(taxPeriodColumns)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return scanTaxPeriod(r.db.QueryRow(ctx, sql, args...))
}
