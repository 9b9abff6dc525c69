package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
)

func (env *testEnv) addTransaction(day string, amount string, description string) {
	date, err := time.Parse(dayLayout, day)
	if err != nil {
		panic(err)
	}
	env.transactions.items = append(env.transactions.items, models.BankTransaction{
		ID: uuid.New(), EntityID: env.entityID, Date: date,
		Amount: decimal.RequireFromString(amount), Currency: "GEL", Description: description,
	})
}

func TestCashflow(t *testing.T) {
	env := newTestEnv(t)
	env.addTransaction("2024-03-01", "1000", "Client")
	env.addTransaction("2024-03-02", "-250.50", "Rent")
	env.addTransaction("2024-03-03", "-49.50", "Software")
	env.addTransaction("2024-04-01", "999", "Next month")

	report, err := env.reportSvc.Cashflow(context.Background(), env.userID, env.entityID,
		dto.RangeQuery{From: "2024-03-01", To: "2024-04-01"})
	require.NoError(t, err)

	assert.Equal(t, "GEL", report.Currency)
	assert.Equal(t, "1000.00", report.Inflow.Total)
	assert.Equal(t, "300.00", report.Outflow.Total)
	assert.Equal(t, "700.00", report.Net)
	require.Len(t, report.Outflow.Items, 2)
	assert.Equal(t, "250.50", report.Outflow.Items[0].Amount)
	assert.Equal(t, "2024-03-01T00:00:00Z", report.Range.From)
	assert.Equal(t, "2024-04-01T00:00:00Z", report.Range.To)
}

func TestCashflow_DefaultRangeAndEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.reportSvc.now = fixedClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	report, err := env.reportSvc.Cashflow(context.Background(), env.userID, env.entityID, dto.RangeQuery{})
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01T00:00:00Z", report.Range.From)
	assert.Equal(t, "2024-05-01T00:00:00Z", report.Range.To)
	assert.Equal(t, "0.00", report.Net)
	assert.NotNil(t, report.Inflow.Items)
	assert.Empty(t, report.Inflow.Items)
}

func TestReportRange_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.reportSvc.Cashflow(ctx, env.userID, env.entityID, dto.RangeQuery{From: "March"})
	assert.ErrorIs(t, err, ErrInvalidFromDate)

	_, err = env.reportSvc.Cashflow(ctx, env.userID, env.entityID, dto.RangeQuery{To: "April"})
	assert.ErrorIs(t, err, ErrInvalidToDate)

	_, err = env.reportSvc.ProfitAndLoss(ctx, env.userID, env.entityID, dto.RangeQuery{From: "2024-04-01", To: "2024-04-01"})
	assert.ErrorIs(t, err, ErrInvalidToDate)

	_, err = env.reportSvc.ProfitAndLoss(ctx, env.otherUserID, env.entityID, dto.RangeQuery{})
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestProfitAndLoss(t *testing.T) {
	env := newTestEnv(t)
	env.addInvoice(env.entityID, "2024-03-05", "2000", models.InvoiceStatusPaid)
	env.addInvoice(env.entityID, "2024-03-06", "500", models.InvoiceStatusDraft)
	env.expenses.items = append(env.expenses.items,
		models.Expense{ID: uuid.New(), EntityID: env.entityID, Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			Amount: decimal.RequireFromString("120.25"), Currency: "GEL", Description: "Laptop stand"},
		models.Expense{ID: uuid.New(), EntityID: env.entityID, Date: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			Amount: decimal.RequireFromString("99"), Currency: "GEL", Description: "Out of range"},
	)

	report, err := env.reportSvc.ProfitAndLoss(context.Background(), env.userID, env.entityID,
		dto.RangeQuery{From: "2024-03-01", To: "2024-04-01T00:00:00Z"})
	require.NoError(t, err)

	assert.Equal(t, "2000.00", report.Income.Total)
	assert.Len(t, report.Income.Items, 1)
	assert.Equal(t, "120.25", report.Expenses.Total)
	assert.Equal(t, "Laptop stand", report.Expenses.Items[0].Description)
	assert.Equal(t, "1879.75", report.Net)
}
