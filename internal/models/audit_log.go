package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID        uuid.UUID      `db:"id"`
	UserID    uuid.UUID      `db:"user_id"`
	EntityID  uuid.UUID      `db:"entity_id"`
	Action    string         `db:"action"`
	Details   map[string]any `db:"details"`
	CreatedAt time.Time      `db:"created_at"`
}

// AuditFilter selects audit entries for one entity, newest first.
type AuditFilter struct {
	EntityID uuid.UUID
	From     *time.Time
	To       *time.Time
	Limit    int
}
