package repository

import (
	"context"
	"time"

	"sole-ledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var expenseColumns = []string{"id", "entity_id", "date", "amount", "currency", "description", "category_id", "created_at"}

type ExpenseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewExpenseRepository(db *pgxpool.Pool, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	query := squirrel.Insert("expenses").
		Columns(expenseColumns...).
		Values(expense.ID, expense.EntityID, expense.Date, expense.Amount, expense.Currency,
			expense.Description, expense.CategoryID, expense.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ExpenseRepository) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Expense, error) {
	return r.list(ctx, squirrel.Eq{"entity_id": entityID}, "date DESC")
}

func (r *ExpenseRepository) ListInRange(ctx context.Context, entityID uuid.UUID, from, to time.Time) ([]models.Expense, error) {
	return r.list(ctx, squirrel.And{
		squirrel.Eq{"entity_id": entityID},
		squirrel.GtOrEq{"date": from},
		squirrel.Lt{"date": to},
	}, "date ASC")
}

func (r *ExpenseRepository) list(ctx context.Context, where squirrel.Sqlizer, order string) ([]models.Expense, error) {
	query := squirrel.Select(expenseColumns...).
		From("expenses").
		Where(where).
		OrderBy(order, "created_at ASC").
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

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.EntityID, &e.Date, &e.Amount, &e.Currency, &e.Description, &e.CategoryID, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
