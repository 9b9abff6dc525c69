package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sole-ledger/internal/models"
)

func TestTranslate(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "categories_entity_name_idx"}
	assert.ErrorIs(t, translate(unique), ErrDuplicate)
	assert.ErrorIs(t, translate(fmt.Errorf("insert: %w", unique)), ErrDuplicate)

	fk := &pgconn.PgError{Code: "23503"}
	assert.Same(t, fk, translate(fk))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, translate(plain))
	assert.NoError(t, translate(nil))
}

func TestColumnHelpers(t *testing.T) {
	assert.Equal(t, "id, entity_id", joinColumns([]string{"id", "entity_id"}))
	assert.Equal(t, []string{"i.id", "i.total"}, qualified("i", []string{"id", "total"}))
}

func TestSelectBankTransactions(t *testing.T) {
	entityID := uuid.New()
	sql, args, err := selectBankTransactions().
		Where(squirrel.Eq{"t.entity_id": entityID}).
		OrderBy("t.date DESC").
		ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "LEFT JOIN categories c ON c.id = t.category_id")
	assert.Contains(t, sql, "c.name")
	assert.Contains(t, sql, "WHERE t.entity_id = $1")
	assert.Equal(t, []interface{}{entityID}, args)
}

func TestDecodeRule(t *testing.T) {
	var rule models.Rule
	require.NoError(t, decodeRule(&rule,
		[]byte(`{"description_contains":["uber","bolt"]}`),
		[]byte(`{"setCategoryByName":"Transport"}`)))
	assert.Equal(t, []string{"uber", "bolt"}, rule.Condition.DescriptionContains)
	assert.Equal(t, "Transport", rule.Action.SetCategoryByName)

	err := decodeRule(&models.Rule{}, []byte(`{"description_contains":"uber"}`), []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode rule condition")

	err = decodeRule(&models.Rule{}, []byte(`{}`), []byte(`not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode rule action")
}
