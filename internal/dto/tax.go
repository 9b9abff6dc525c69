package dto

// ClosePeriodRequest bounds are YYYY-MM-DD or RFC 3339; both are optional.
type ClosePeriodRequest struct {
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

type MarkPaidRequest struct {
	PaidAt string `json:"paidAt"`
}

type TaxPeriodResponse struct {
	ID          string  `json:"id"`
	EntityID    string  `json:"entity_id"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	Turnover    string  `json:"turnover"`
	TaxRate     string  `json:"tax_rate"`
	TaxDue      string  `json:"tax_due"`
	Paid        bool    `json:"paid"`
	PaidAt      *string `json:"paid_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type DeclarationExportResponse struct {
	CSV string `json:"csv"`
}
