package dto

type CreateReminderRequest struct {
	Type    string         `json:"type" validate:"required"`
	DueDate string         `json:"dueDate" validate:"required"`
	Channel string         `json:"channel" validate:"required,oneof=email telegram"`
	Payload map[string]any `json:"payload,omitempty"`
}

type ReminderResponse struct {
	ID        string         `json:"id"`
	EntityID  string         `json:"entity_id"`
	Type      string         `json:"type"`
	DueDate   string         `json:"due_date"`
	Channel   string         `json:"channel"`
	Payload   map[string]any `json:"payload,omitempty"`
	SentAt    *string        `json:"sent_at,omitempty"`
	CreatedAt string         `json:"created_at"`

	Delivery *ReminderDelivery `json:"delivery,omitempty"`
}

// ReminderDelivery is the state of the queued delivery job, when this
// process still knows it.
type ReminderDelivery struct {
	Status      string  `json:"status"`
	Retries     int     `json:"retries"`
	Error       string  `json:"error,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`
}
