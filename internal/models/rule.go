package models

import (
	"time"

	"github.com/google/uuid"
)

// RuleCondition is stored as JSONB in rules.condition.
type RuleCondition struct {
	DescriptionContains []string `json:"description_contains,omitempty"`
}

// RuleAction is stored as JSONB in rules.action. SetCategoryID is kept as
// text so a stale or malformed id cannot break loading the whole rule set.
type RuleAction struct {
	SetCategoryID     string `json:"setCategoryId,omitempty"`
	SetCategoryByName string `json:"setCategoryByName,omitempty"`
}

type Rule struct {
	ID        uuid.UUID     `db:"id"`
	EntityID  uuid.UUID     `db:"entity_id"`
	Priority  int           `db:"priority"`
	Condition RuleCondition `db:"condition"`
	Action    RuleAction    `db:"action"`
	CreatedAt time.Time     `db:"created_at"`
}
