package dto

type AuditQuery struct {
	From  string `query:"from"`
	To    string `query:"to"`
	Limit int    `query:"limit"`
}

type AuditLogResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	EntityID  string         `json:"entity_id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
	CreatedAt string         `json:"created_at"`
}
