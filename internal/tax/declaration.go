package tax

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DeclarationPolicy places the RS.ge monthly declaration deadline: Day of the
// month following the period's last day, at Hour in Location.
type DeclarationPolicy struct {
	Day      int
	Hour     int
	Location *time.Location
}

// DefaultDeclarationPolicy is the 15th at 05:00 UTC.
func DefaultDeclarationPolicy() DeclarationPolicy {
	return DeclarationPolicy{Day: 15, Hour: 5, Location: time.UTC}
}

// DueDate returns the declaration deadline for a period ending (exclusive)
// at periodEnd.
func (p DeclarationPolicy) DueDate(periodEnd time.Time) time.Time {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	last := periodEnd.AddDate(0, 0, -1)
	return time.Date(last.Year(), last.Month()+1, p.Day, p.Hour, 0, 0, 0, loc).UTC()
}

var declarationHeader = []string{"Period", "EntityName", "TaxId", "TurnoverGEL", "TaxRatePct", "TaxDueGEL"}

// Declaration is one line of the RS.ge export.
type Declaration struct {
	Period     string
	EntityName string
	TaxID      string
	Turnover   decimal.Decimal
	TaxRate    decimal.Decimal
	TaxDue     decimal.Decimal
}

// RenderDeclaration writes the export as a headed CSV document. Money is
// fixed to two places; the rate is printed without trailing zeros.
func RenderDeclaration(d Declaration) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		declarationHeader,
		{
			d.Period,
			d.EntityName,
			d.TaxID,
			d.Turnover.StringFixed(moneyPlaces),
			d.TaxRate.String(),
			d.TaxDue.StringFixed(moneyPlaces),
		},
	}
	if err := w.WriteAll(records); err != nil {
		return "", fmt.Errorf("render declaration: %w", err)
	}
	return buf.String(), nil
}
