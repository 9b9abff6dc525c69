package repository

import (
	"context"

	"sole-ledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var entityColumns = []string{"id", "user_id", "display_name", "tax_status", "tax_id", "timezone", "created_at", "updated_at"}

type EntityRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewEntityRepository(db *pgxpool.Pool, logger *zap.Logger) *EntityRepository {
	return &EntityRepository{
		db:     db,
		logger: logger,
	}
}

func scanEntity(row pgx.Row) (*models.Entity, error) {
	var e models.Entity
	if err := row.Scan(&e.ID, &e.UserID, &e.DisplayName, &e.TaxStatus, &e.TaxID, &e.Timezone, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EntityRepository) Create(ctx context.Context, entity *models.Entity) error {
	query := squirrel.Insert("entities").
		Columns(entityColumns...).
		Values(entity.ID, entity.UserID, entity.DisplayName, entity.TaxStatus, entity.TaxID, entity.Timezone, entity.CreatedAt, entity.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return translate(err)
}

func (r *EntityRepository) Update(ctx context.Context, entity *models.Entity) error {
	query := squirrel.Update("entities").
		Set("display_name", entity.DisplayName).
		Set("tax_status", entity.TaxStatus).
		Set("tax_id", entity.TaxID).
		Set("timezone", entity.Timezone).
		Set("updated_at", entity.UpdatedAt).
		Where(squirrel.Eq{"id": entity.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *EntityRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Entity, error) {
	query := squirrel.Select(entityColumns...).
		From("entities").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
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

	entities := make([]models.Entity, 0)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *e)
	}
	return entities, rows.Err()
}

func (r *EntityRepository) GetForUser(ctx context.Context, userID, entityID uuid.UUID) (*models.Entity, error) {
	query := squirrel.Select(entityColumns...).
		From("entities").
		Where(squirrel.Eq{"id": entityID, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return scanEntity(r.db.QueryRow(ctx, sql, args...))
}
