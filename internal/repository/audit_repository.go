package repository

import (
	"context"

	"sole-ledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AuditRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAuditRepository(db *pgxpool.Pool, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	query := squirrel.Insert("audit_logs").
		Columns("id", "user_id", "entity_id", "action", "details", "created_at").
		Values(entry.ID, entry.UserID, entry.EntityID, entry.Action, entry.Details, entry.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// List returns an entity's audit trail, newest first, optionally bounded to
// [From, To).
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	query := squirrel.Select("id", "user_id", "entity_id", "action", "details", "created_at").
		From("audit_logs").
		Where(squirrel.Eq{"entity_id": filter.EntityID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"created_at": *filter.To})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]models.AuditLog, 0)
	for rows.Next() {
		var entry models.AuditLog
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.EntityID, &entry.Action, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
