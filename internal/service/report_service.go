package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
)

const reportCurrency = models.DefaultCurrency

type ReportService struct {
	entityRepo  EntityStore
	txRepo      BankTransactionStore
	invoiceRepo InvoiceStore
	expenseRepo ExpenseStore
	logger      *zap.Logger
	now         func() time.Time
}

func NewReportService(
	entityRepo EntityStore,
	txRepo BankTransactionStore,
	invoiceRepo InvoiceStore,
	expenseRepo ExpenseStore,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		entityRepo:  entityRepo,
		txRepo:      txRepo,
		invoiceRepo: invoiceRepo,
		expenseRepo: expenseRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// resolveRange defaults to [epoch, now). to must be strictly after from.
func (s *ReportService) resolveRange(q dto.RangeQuery) (time.Time, time.Time, error) {
	from := time.Unix(0, 0).UTC()
	if q.From != "" {
		parsed, err := parseInstant(q.From)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidFromDate
		}
		from = parsed
	}

	to := s.now().UTC()
	if q.To != "" {
		parsed, err := parseInstant(q.To)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidToDate
		}
		to = parsed
	}

	if !to.After(from) {
		return time.Time{}, time.Time{}, ErrInvalidToDate
	}
	return from, to, nil
}

func reportRange(from, to time.Time) dto.ReportRange {
	return dto.ReportRange{From: from.Format(time.RFC3339), To: to.Format(time.RFC3339)}
}

// Cashflow splits bank transactions in the range into inflows and outflows.
// Outflow amounts are reported as positive numbers.
func (s *ReportService) Cashflow(ctx context.Context, userID, entityID uuid.UUID, q dto.RangeQuery) (*dto.CashflowReport, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}
	from, to, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}

	txs, err := s.txRepo.ListInRange(ctx, entityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load bank transactions: %w", err)
	}

	inflow, outflow := decimal.Zero, decimal.Zero
	inItems := make([]dto.ReportItem, 0)
	outItems := make([]dto.ReportItem, 0)
	for _, tx := range txs {
		item := dto.ReportItem{
			Date:        tx.Date.Format(dayLayout),
			Amount:      tx.Amount.Abs().StringFixed(2),
			Currency:    tx.Currency,
			Description: tx.Description,
		}
		if tx.Amount.IsNegative() {
			outflow = outflow.Add(tx.Amount.Abs())
			outItems = append(outItems, item)
		} else {
			inflow = inflow.Add(tx.Amount)
			inItems = append(inItems, item)
		}
	}

	return &dto.CashflowReport{
		Range:    reportRange(from, to),
		Currency: reportCurrency,
		Inflow:   dto.ReportSection{Total: inflow.StringFixed(2), Items: inItems},
		Outflow:  dto.ReportSection{Total: outflow.StringFixed(2), Items: outItems},
		Net:      inflow.Sub(outflow).StringFixed(2),
	}, nil
}

// ProfitAndLoss compares recognized invoice income with recorded expenses.
func (s *ReportService) ProfitAndLoss(ctx context.Context, userID, entityID uuid.UUID, q dto.RangeQuery) (*dto.ProfitAndLossReport, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}
	from, to, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.ListRecognizedTotals(ctx, entityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}
	expenses, err := s.expenseRepo.ListInRange(ctx, entityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}

	income := decimal.Zero
	incomeItems := make([]dto.ReportItem, 0, len(invoices))
	for _, inv := range invoices {
		income = income.Add(inv.Total)
		incomeItems = append(incomeItems, dto.ReportItem{
			Date:     inv.IssueDate.Format(dayLayout),
			Amount:   inv.Total.StringFixed(2),
			Currency: inv.Currency,
		})
	}

	spent := decimal.Zero
	expenseItems := make([]dto.ReportItem, 0, len(expenses))
	for _, e := range expenses {
		spent = spent.Add(e.Amount)
		expenseItems = append(expenseItems, dto.ReportItem{
			Date:        e.Date.Format(dayLayout),
			Amount:      e.Amount.StringFixed(2),
			Currency:    e.Currency,
			Description: e.Description,
		})
	}

	return &dto.ProfitAndLossReport{
		Range:    reportRange(from, to),
		Currency: reportCurrency,
		Income:   dto.ReportSection{Total: income.StringFixed(2), Items: incomeItems},
		Expenses: dto.ReportSection{Total: spent.StringFixed(2), Items: expenseItems},
		Net:      income.Sub(spent).StringFixed(2),
	}, nil
}
