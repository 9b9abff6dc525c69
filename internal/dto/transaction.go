package dto

import "sole-ledger/internal/bankimport"

// ImportRequest is the non-file part of a bank CSV upload.
type ImportRequest struct {
	Bank    string              `json:"bank" validate:"required,oneof=BOG TBC OTHER"`
	Mapping *bankimport.Mapping `json:"mapping,omitempty"`
}

type ImportResponse struct {
	Imported int64 `json:"imported"`
}

type UpdateTransactionRequest struct {
	CategoryID      *string `json:"categoryId"`
	LinkedInvoiceID *string `json:"linkedInvoiceId"`
}

type TransactionResponse struct {
	ID              string            `json:"id"`
	EntityID        string            `json:"entity_id"`
	Date            string            `json:"date"`
	Amount          string            `json:"amount"`
	Currency        string            `json:"currency"`
	Description     string            `json:"description"`
	Counterparty    *string           `json:"counterparty,omitempty"`
	CategoryID      *string           `json:"category_id,omitempty"`
	Category        *string           `json:"category,omitempty"`
	LinkedInvoiceID *string           `json:"linked_invoice_id,omitempty"`
	Raw             map[string]string `json:"raw,omitempty"`
	CreatedAt       string            `json:"created_at"`
}
