// Package tax holds the pure tax arithmetic of the ledger: recognized
// turnover, the regime rate, period bounds and the declaration calendar.
package tax

import (
	"time"

	"github.com/shopspring/decimal"

	"sole-ledger/internal/models"
)

const moneyPlaces = 2

var (
	smallBusinessRate = decimal.NewFromInt(1)
	standardRate      = decimal.NewFromInt(20)
	hundred           = decimal.NewFromInt(100)
)

// RateFor returns the tax rate in percent for a tax status. Small business
// status pays 1%; every other status falls back to the standard 20%.
func RateFor(status models.TaxStatus) decimal.Decimal {
	if status == models.TaxStatusSmallBusiness {
		return smallBusinessRate
	}
	return standardRate
}

// Turnover sums the totals of recognized invoices issued in [start, end).
// Callers usually pass invoices already filtered by the store; the filter is
// applied again here so the result never depends on that.
func Turnover(invoices []models.InvoiceTotal, start, end time.Time) decimal.Decimal {
	sum := decimal.Zero
	for _, inv := range invoices {
		if !inv.Status.Recognized() {
			continue
		}
		if inv.IssueDate.Before(start) || !inv.IssueDate.Before(end) {
			continue
		}
		sum = sum.Add(inv.Total)
	}
	return sum.Round(moneyPlaces)
}

// Due computes round(turnover * rate / 100, 2).
func Due(turnover, ratePct decimal.Decimal) decimal.Decimal {
	return turnover.Mul(ratePct).Div(hundred).Round(moneyPlaces)
}
