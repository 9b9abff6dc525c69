package dto

type CreateInvoiceRequest struct {
	ClientName string `json:"clientName" validate:"required"`
	IssueDate  string `json:"issueDate" validate:"required"`
	Total      string `json:"total" validate:"required"`
	Currency   string `json:"currency,omitempty"`
}

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type InvoiceResponse struct {
	ID         string `json:"id"`
	EntityID   string `json:"entity_id"`
	Number     string `json:"number"`
	ClientName string `json:"client_name"`
	IssueDate  string `json:"issue_date"`
	Total      string `json:"total"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

type CreateExpenseRequest struct {
	Date        string  `json:"date" validate:"required"`
	Amount      string  `json:"amount" validate:"required"`
	Currency    string  `json:"currency,omitempty"`
	Description string  `json:"description,omitempty"`
	CategoryID  *string `json:"categoryId,omitempty"`
}

type ExpenseResponse struct {
	ID          string  `json:"id"`
	EntityID    string  `json:"entity_id"`
	Date        string  `json:"date"`
	Amount      string  `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	CategoryID  *string `json:"category_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
