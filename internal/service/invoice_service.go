package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
	"sole-ledger/internal/repository"
)

const invoiceNumberRetries = 3

type InvoiceService struct {
	entityRepo  EntityStore
	invoiceRepo InvoiceStore
	audit       *AuditService
	logger      *zap.Logger
}

func NewInvoiceService(entityRepo EntityStore, invoiceRepo InvoiceStore, audit *AuditService, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		entityRepo:  entityRepo,
		invoiceRepo: invoiceRepo,
		audit:       audit,
		logger:      logger,
	}
}

// Create issues an invoice. Numbers run per entity and issue year as
// YYYY-NNNN.
func (s *InvoiceService) Create(ctx context.Context, userID, entityID uuid.UUID, req *dto.CreateInvoiceRequest) (*models.Invoice, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}

	issueDate, err := parseInstant(req.IssueDate)
	if err != nil {
		return nil, ErrInvalidIssueDate
	}
	issueDate = time.Date(issueDate.Year(), issueDate.Month(), issueDate.Day(), 0, 0, 0, 0, time.UTC)

	total, err := parseMoney(req.Total)
	if err != nil || total.IsNegative() || strings.TrimSpace(req.ClientName) == "" {
		return nil, ErrInvalidRequest
	}

	currency, err := currencyOrDefault(req.Currency)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	invoice := &models.Invoice{
		ID:         uuid.New(),
		EntityID:   entityID,
		ClientName: strings.TrimSpace(req.ClientName),
		IssueDate:  issueDate,
		Total:      total,
		Currency:   currency,
		Status:     models.InvoiceStatusIssued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.insertNumbered(ctx, invoice); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, userID, entityID, "invoice:create", map[string]any{
		"invoiceId": invoice.ID.String(),
		"number":    invoice.Number,
		"total":     invoice.Total.StringFixed(2),
	})
	return invoice, nil
}

// insertNumbered assigns the next number and inserts the invoice. A
// concurrent create can take the same number between the count and the
// insert; the unique index rejects it and the number is taken again.
func (s *InvoiceService) insertNumbered(ctx context.Context, invoice *models.Invoice) error {
	year := invoice.IssueDate.Year()
	insert := func() error {
		count, err := s.invoiceRepo.CountInYear(ctx, invoice.EntityID, year)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("count invoices: %w", err))
		}
		invoice.Number = fmt.Sprintf("%d-%04d", year, count+1)

		err = s.invoiceRepo.Create(ctx, invoice)
		if err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, invoiceNumberRetries), ctx)
	notify := func(error, time.Duration) {
		s.logger.Warn("invoice number taken, retrying",
			zap.String("entity_id", invoice.EntityID.String()),
			zap.String("number", invoice.Number),
		)
	}

	err := backoff.RetryNotify(insert, policy, notify)
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrInvoiceNumberConflict
	}
	return err
}

func (s *InvoiceService) List(ctx context.Context, userID, entityID uuid.UUID) ([]models.Invoice, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}
	return s.invoiceRepo.ListByEntity(ctx, entityID)
}

func (s *InvoiceService) UpdateStatus(ctx context.Context, userID, invoiceID uuid.UUID, req *dto.UpdateInvoiceStatusRequest) (*models.Invoice, error) {
	status := models.InvoiceStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return nil, ErrInvalidRequest
	}

	if _, err := s.invoiceRepo.GetForUser(ctx, userID, invoiceID); err != nil {
		if isNotFound(err) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	invoice, err := s.invoiceRepo.UpdateStatus(ctx, invoiceID, status)
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, userID, invoice.EntityID, "invoice:updateStatus", map[string]any{
		"invoiceId": invoiceID.String(),
		"status":    string(status),
	})
	return invoice, nil
}
