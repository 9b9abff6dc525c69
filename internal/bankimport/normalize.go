package bankimport

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sole-ledger/internal/models"
)

const (
	isoDate      = "2006-01-02"
	amountPlaces = 2
)

// ErrNoTransactions is returned when no row of a file survives normalization.
var ErrNoTransactions = errors.New("no transactions found")

// dateLayouts lists the accepted date formats, tried in order. Slash dates
// are month-first, as the browser-era importer read them, and may omit the
// leading zeros.
var dateLayouts = []string{
	isoDate,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02.01.2006",
	"1/2/2006",
}

// NormalizedRow is a typed candidate transaction produced from one CSV row.
type NormalizedRow struct {
	// Date is the calendar day at UTC midnight.
	Date         time.Time
	Amount       decimal.Decimal
	Currency     string
	Description  string
	Counterparty *string
	Raw          map[string]string
}

// DateISO renders the financial date as YYYY-MM-DD.
func (r NormalizedRow) DateISO() string {
	return r.Date.Format(isoDate)
}

// NormalizeRow converts a raw record using the mapping. It reports false for
// rows that must be skipped: missing or unparseable date, a currency that is
// not a three-letter code, or an amount that is unparseable or rounds to
// zero. It never fails.
func NormalizeRow(row map[string]string, m Mapping) (NormalizedRow, bool) {
	dateValue := row[m.Date]
	if dateValue == "" {
		return NormalizedRow{}, false
	}

	currency := models.DefaultCurrency
	if m.Currency != "" && strings.TrimSpace(row[m.Currency]) != "" {
		code, ok := models.NormalizeCurrency(row[m.Currency])
		if !ok {
			return NormalizedRow{}, false
		}
		currency = code
	}

	var amount decimal.Decimal
	if m.usesAmountColumn() {
		parsed, err := parseAmount(row[m.Amount])
		if err != nil {
			return NormalizedRow{}, false
		}
		amount = parsed
	} else {
		amount = lenientAmount(row, m.Credit).Sub(lenientAmount(row, m.Debit))
	}

	amount = RoundAmount(amount)
	if amount.IsZero() {
		return NormalizedRow{}, false
	}

	date, ok := parseDate(dateValue)
	if !ok {
		return NormalizedRow{}, false
	}

	var counterparty *string
	if m.Counterparty != "" {
		if value := sanitizeUTF8(row[m.Counterparty]); value != "" {
			counterparty = &value
		}
	}

	return NormalizedRow{
		Date:         date,
		Amount:       amount,
		Currency:     currency,
		Description:  sanitizeUTF8(row[m.Description]),
		Counterparty: counterparty,
		Raw:          sanitizeRaw(row),
	}, true
}

// NormalizeRecords applies NormalizeRow to every record, keeping source
// order. It fails only when nothing survives.
func NormalizeRecords(records []map[string]string, m Mapping) ([]NormalizedRow, error) {
	rows := make([]NormalizedRow, 0, len(records))
	for _, record := range records {
		if row, ok := NormalizeRow(record, m); ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoTransactions
	}
	return rows, nil
}

// RoundAmount rounds to cents, half away from zero, on the exact decimal
// value: 120.005 becomes 120.01 and -120.005 becomes -120.01.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(amountPlaces)
}

func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// lenientAmount reads a debit or credit column, treating absent, empty or
// garbage values as zero.
func lenientAmount(row map[string]string, column string) decimal.Decimal {
	if column == "" {
		return decimal.Zero
	}
	value, err := parseAmount(row[column])
	if err != nil {
		return decimal.Zero
	}
	return value
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
