package dto

type RangeQuery struct {
	From string `query:"from"`
	To   string `query:"to"`
}

type ReportRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type ReportItem struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency,omitempty"`
	Description string `json:"description,omitempty"`
}

type ReportSection struct {
	Total string       `json:"total"`
	Items []ReportItem `json:"items"`
}

type CashflowReport struct {
	Range    ReportRange   `json:"range"`
	Currency string        `json:"currency"`
	Inflow   ReportSection `json:"inflow"`
	Outflow  ReportSection `json:"outflow"`
	Net      string        `json:"net"`
}

type ProfitAndLossReport struct {
	Range    ReportRange   `json:"range"`
	Currency string        `json:"currency"`
	Income   ReportSection `json:"income"`
	Expenses ReportSection `json:"expenses"`
	Net      string        `json:"net"`
}
