// Package bankimport turns bank statement CSV exports into categorized,
// ready-to-store transactions. It performs no I/O beyond reading the CSV
// stream handed to it; persistence and ownership live in the service layer.
package bankimport

import (
	"errors"
	"strings"
)

// BankID identifies a bank export format with a built-in column preset.
type BankID string

const (
	BankBOG   BankID = "BOG"
	BankTBC   BankID = "TBC"
	BankOther BankID = "OTHER"
)

// ErrMappingRequired is returned when neither an explicit mapping nor a
// preset for the bank is available.
var ErrMappingRequired = errors.New("mapping required")

// Mapping assigns CSV header names to transaction fields. Either Amount or
// the Debit/Credit pair is used for the amount; empty means unmapped.
type Mapping struct {
	Date         string `json:"date"`
	Amount       string `json:"amount,omitempty"`
	Debit        string `json:"debit,omitempty"`
	Credit       string `json:"credit,omitempty"`
	Currency     string `json:"currency,omitempty"`
	Description  string `json:"description"`
	Counterparty string `json:"counterparty,omitempty"`
}

// usesAmountColumn reports whether the signed amount is read from one column.
func (m Mapping) usesAmountColumn() bool {
	return m.Amount != ""
}

var presets = map[BankID]Mapping{
	BankBOG: {
		Date:         "Date",
		Amount:       "Amount",
		Currency:     "Currency",
		Description:  "Description",
		Counterparty: "Counterparty",
	},
	// TBC exports carry no currency column; rows fall back to GEL.
	BankTBC: {
		Date:         "TxnDate",
		Debit:        "Debit",
		Credit:       "Credit",
		Description:  "Details",
		Counterparty: "Account",
	},
}

// ParseBankID normalizes user input such as "bog" to a BankID.
func ParseBankID(s string) BankID {
	return BankID(strings.ToUpper(strings.TrimSpace(s)))
}

// ResolveMapping returns the explicit mapping when one is supplied, else the
// preset for bank. Explicit mappings are used as-is: optional fields left
// empty stay unmapped.
func ResolveMapping(bank BankID, explicit *Mapping) (Mapping, error) {
	if explicit != nil {
		return Mapping{
			Date:         strings.TrimSpace(explicit.Date),
			Amount:       strings.TrimSpace(explicit.Amount),
			Debit:        strings.TrimSpace(explicit.Debit),
			Credit:       strings.TrimSpace(explicit.Credit),
			Currency:     strings.TrimSpace(explicit.Currency),
			Description:  strings.TrimSpace(explicit.Description),
			Counterparty: strings.TrimSpace(explicit.Counterparty),
		}, nil
	}

	preset, ok := presets[bank]
	if !ok {
		return Mapping{}, ErrMappingRequired
	}
	return preset, nil
}
