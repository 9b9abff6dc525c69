package models

import (
	"time"

	"github.com/google/uuid"
)

type ReminderChannel string

const (
	ReminderChannelEmail    ReminderChannel = "email"
	ReminderChannelTelegram ReminderChannel = "telegram"
)

func (c ReminderChannel) Valid() bool {
	return c == ReminderChannelEmail || c == ReminderChannelTelegram
}

const ReminderTypeRSDeclaration = "RS_DECLARATION"

type Reminder struct {
	ID        uuid.UUID       `db:"id"`
	EntityID  uuid.UUID       `db:"entity_id"`
	Type      string          `db:"type"`
	DueDate   time.Time       `db:"due_date"`
	Channel   ReminderChannel `db:"channel"`
	Payload   map[string]any  `db:"payload"`
	SentAt    *time.Time      `db:"sent_at"`
	CreatedAt time.Time       `db:"created_at"`
}

// ReminderRecipient is what the dispatcher needs to address a notification.
type ReminderRecipient struct {
	Reminder
	UserEmail string `db:"email"`
}
