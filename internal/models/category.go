package models

import (
	"time"

	"github.com/google/uuid"
)

type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "INCOME"
	CategoryTypeExpense CategoryType = "EXPENSE"
)

type Category struct {
	ID        uuid.UUID    `db:"id"`
	EntityID  uuid.UUID    `db:"entity_id"`
	Name      string       `db:"name"`
	Type      CategoryType `db:"type"`
	CreatedAt time.Time    `db:"created_at"`
}

func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}
