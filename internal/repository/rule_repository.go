package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"sole-ledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RuleRepository stores categorization rules. Condition and action are JSONB
// documents encoded from the model structs.
type RuleRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRuleRepository(db *pgxpool.Pool, logger *zap.Logger) *RuleRepository {
	return &RuleRepository{
		db:     db,
		logger: logger,
	}
}

func (r *RuleRepository) Create(ctx context.Context, rule *models.Rule) error {
	query := squirrel.Insert("rules").
		Columns("id", "entity_id", "priority", "condition", "action", "created_at").
		Values(rule.ID, rule.EntityID, rule.Priority, rule.Condition, rule.Action, rule.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *RuleRepository) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Rule, error) {
	query := squirrel.Select("id", "entity_id", "priority", "condition", "action", "created_at").
		From("rules").
		Where(squirrel.Eq{"entity_id": entityID}).
		OrderBy("priority ASC", "created_at ASC").
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

	rules := make([]models.Rule, 0)
	for rows.Next() {
		var (
			rule              models.Rule
			condition, action []byte
		)
		if err := rows.Scan(&rule.ID, &rule.EntityID, &rule.Priority, &condition, &action, &rule.CreatedAt); err != nil {
			return nil, err
		}
		// a rule whose JSON no longer matches the model is skipped, not fatal;
		// the next rule by priority may then match in its place
		if err := decodeRule(&rule, condition, action); err != nil {
			r.logger.Warn("Skipping unreadable rule",
				zap.String("rule_id", rule.ID.String()),
				zap.Int("priority", rule.Priority),
				zap.Error(err))
			continue
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func decodeRule(rule *models.Rule, condition, action []byte) error {
	if err := json.Unmarshal(condition, &rule.Condition); err != nil {
		return fmt.Errorf("decode rule condition: %w", err)
	}
	if err := json.Unmarshal(action, &rule.Action); err != nil {
		return fmt.Errorf("decode rule action: %w", err)
	}
	return nil
}
