package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
	"sole-ledger/internal/tax"
	"sole-ledger/pkg/logger"
)

const declarationNote = "RS.ge declaration reminder"

// ReminderScheduler queues a reminder without an ownership check.
type ReminderScheduler interface {
	Schedule(ctx context.Context, entityID uuid.UUID, reminderType string, dueDate time.Time, channel models.ReminderChannel, payload map[string]any) (*models.Reminder, error)
}

type TaxService struct {
	entityRepo  EntityStore
	invoiceRepo InvoiceStore
	periodRepo  TaxPeriodStore
	reminders   ReminderScheduler
	audit       *AuditService
	policy      tax.DeclarationPolicy
	location    *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

// NewTaxService wires the period recorder. location decides which calendar
// month "the current month" refers to when no bounds are given.
func NewTaxService(
	entityRepo EntityStore,
	invoiceRepo InvoiceStore,
	periodRepo TaxPeriodStore,
	reminders ReminderScheduler,
	audit *AuditService,
	policy tax.DeclarationPolicy,
	location *time.Location,
	logger *zap.Logger,
) *TaxService {
	if location == nil {
		location = time.UTC
	}
	return &TaxService{
		entityRepo:  entityRepo,
		invoiceRepo: invoiceRepo,
		periodRepo:  periodRepo,
		reminders:   reminders,
		audit:       audit,
		policy:      policy,
		location:    location,
		logger:      logger,
		now:         time.Now,
	}
}

// ClosePeriod snapshots turnover and tax due for a period and schedules the
// declaration reminder. A period with the same bounds can be closed once.
func (s *TaxService) ClosePeriod(ctx context.Context, userID, entityID uuid.UUID, req *dto.ClosePeriodRequest) (*models.TaxPeriod, error) {
	entity, err := ownedEntity(ctx, s.entityRepo, userID, entityID)
	if err != nil {
		return nil, err
	}

	period, err := tax.ResolvePeriod(req.PeriodStart, req.PeriodEnd, s.now(), s.location)
	if err != nil {
		switch {
		case errors.Is(err, tax.ErrInvalidPeriodStart):
			return nil, ErrInvalidPeriodStart
		default:
			return nil, ErrInvalidPeriodEnd
		}
	}

	invoices, err := s.invoiceRepo.ListRecognizedTotals(ctx, entityID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}

	turnover := tax.Turnover(invoices, period.Start, period.End)
	rate := tax.RateFor(entity.TaxStatus)

	record := &models.TaxPeriod{
		ID:          uuid.New(),
		EntityID:    entityID,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Turnover:    turnover,
		TaxRate:     rate,
		TaxDue:      tax.Due(turnover, rate),
		CreatedAt:   s.now().UTC(),
	}

	created, err := s.periodRepo.CreateIfAbsent(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("create tax period: %w", err)
	}
	if !created {
		return nil, ErrTaxPeriodExists
	}

	log := logger.ForEntity(s.logger, userID.String(), entityID.String())
	log.Info("Tax period closed",
		zap.String("period", period.Label()),
		zap.String("turnover", record.Turnover.StringFixed(2)),
		zap.String("tax_due", record.TaxDue.StringFixed(2)))

	dueDate := s.policy.DueDate(period.End)
	if _, err := s.reminders.Schedule(ctx, entityID, models.ReminderTypeRSDeclaration, dueDate,
		models.ReminderChannelEmail, map[string]any{"note": declarationNote}); err != nil {
		// the period is committed; the reminder can be recreated by hand
		log.Error("Failed to schedule declaration reminder", zap.Time("due_date", dueDate), zap.Error(err))
	}

	s.audit.Log(ctx, userID, entityID, "tax:close", map[string]any{
		"taxPeriodId": record.ID.String(),
		"periodStart": period.Start.Format(dayLayout),
		"periodEnd":   period.End.Format(dayLayout),
		"turnover":    record.Turnover.StringFixed(2),
		"taxDue":      record.TaxDue.StringFixed(2),
	})

	return record, nil
}

func (s *TaxService) List(ctx context.Context, userID, entityID uuid.UUID) ([]models.TaxPeriod, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}
	return s.periodRepo.ListByEntity(ctx, entityID)
}

// MarkPaid moves a closed period to paid. Marking an already paid period
// again only updates the payment time.
func (s *TaxService) MarkPaid(ctx context.Context, userID, periodID uuid.UUID, req *dto.MarkPaidRequest) (*models.TaxPeriod, error) {
	period, err := s.periodRepo.GetForUser(ctx, userID, periodID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTaxPeriodNotFound
		}
		return nil, err
	}

	paidAt := s.now().UTC()
	if req != nil && req.PaidAt != "" {
		paidAt, err = parseInstant(req.PaidAt)
		if err != nil {
			return nil, ErrInvalidRequest
		}
	}

	updated, err := s.periodRepo.MarkPaid(ctx, periodID, paidAt)
	if err != nil {
		return nil, fmt.Errorf("mark tax period paid: %w", err)
	}

	s.audit.Log(ctx, userID, period.EntityID, "tax:markPaid", map[string]any{
		"taxPeriodId": periodID.String(),
		"paidAt":      paidAt.Format(time.RFC3339),
	})

	return updated, nil
}

// ExportDeclaration renders the RS.ge CSV for a closed calendar month given
// as YYYY-MM.
func (s *TaxService) ExportDeclaration(ctx context.Context, userID, entityID uuid.UUID, month string) (string, error) {
	entity, err := ownedEntity(ctx, s.entityRepo, userID, entityID)
	if err != nil {
		return "", err
	}

	period, err := tax.ParseMonth(month)
	if err != nil {
		return "", ErrInvalidPeriod
	}

	record, err := s.periodRepo.GetByBounds(ctx, entityID, period.Start, period.End)
	if err != nil {
		if isNotFound(err) {
			return "", ErrTaxPeriodNotFound
		}
		return "", err
	}

	taxID := ""
	if entity.TaxID != nil {
		taxID = *entity.TaxID
	}

	return tax.RenderDeclaration(tax.Declaration{
		Period:     period.Label(),
		EntityName: entity.DisplayName,
		TaxID:      taxID,
		Turnover:   record.Turnover,
		TaxRate:    record.TaxRate,
		TaxDue:     record.TaxDue,
	})
}
