package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sole-ledger/internal/bankimport"
	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
	"sole-ledger/pkg/logger"
)

type BankService struct {
	entityRepo   EntityStore
	categoryRepo CategoryStore
	ruleRepo     RuleStore
	txRepo       BankTransactionStore
	invoiceRepo  InvoiceStore
	audit        *AuditService
	logger       *zap.Logger
}

func NewBankService(
	entityRepo EntityStore,
	categoryRepo CategoryStore,
	ruleRepo RuleStore,
	txRepo BankTransactionStore,
	invoiceRepo InvoiceStore,
	audit *AuditService,
	logger *zap.Logger,
) *BankService {
	return &BankService{
		entityRepo:   entityRepo,
		categoryRepo: categoryRepo,
		ruleRepo:     ruleRepo,
		txRepo:       txRepo,
		invoiceRepo:  invoiceRepo,
		audit:        audit,
		logger:       logger,
	}
}

// Import parses a bank CSV export, categorizes every surviving row and
// stores them all in one transaction. Either every row is stored or none.
func (s *BankService) Import(ctx context.Context, userID, entityID uuid.UUID, req *dto.ImportRequest, file []byte) (*dto.ImportResponse, error) {
	if len(file) == 0 {
		return nil, ErrCSVFileRequired
	}
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}
	log := logger.ForEntity(s.logger, userID.String(), entityID.String())

	mapping, err := bankimport.ResolveMapping(bankimport.ParseBankID(req.Bank), req.Mapping)
	if err != nil {
		return nil, ErrMappingRequired
	}

	records, err := bankimport.ReadRecords(file)
	if err != nil {
		log.Warn("Rejected malformed bank CSV", zap.String("bank", req.Bank), zap.Error(err))
		return nil, ErrInvalidCSV
	}

	rows, err := bankimport.NormalizeRecords(records, mapping)
	if err != nil {
		if errors.Is(err, bankimport.ErrNoTransactions) {
			return nil, ErrNoTransactions
		}
		return nil, err
	}

	engine, err := s.loadEngine(ctx, entityID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txs := make([]models.BankTransaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, models.BankTransaction{
			ID:           uuid.New(),
			EntityID:     entityID,
			Date:         row.Date,
			Amount:       row.Amount,
			Currency:     row.Currency,
			Description:  row.Description,
			Counterparty: row.Counterparty,
			CategoryID:   engine.Categorize(row.Description),
			Raw:          row.Raw,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	imported, err := s.txRepo.CreateBatch(ctx, txs)
	if err != nil {
		return nil, fmt.Errorf("store bank transactions: %w", err)
	}

	log.Info("Bank statement imported",
		zap.String("bank", req.Bank),
		zap.Int("rows", len(records)),
		zap.Int64("imported", imported))

	s.audit.Log(ctx, userID, entityID, "bank:import", map[string]any{
		"bank":         req.Bank,
		"transactions": imported,
	})

	return &dto.ImportResponse{Imported: imported}, nil
}

// loadEngine reads the entity's rules and categories once per import.
func (s *BankService) loadEngine(ctx context.Context, entityID uuid.UUID) (*bankimport.Engine, error) {
	rules, err := s.ruleRepo.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	categories, err := s.categoryRepo.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	engineRules := make([]bankimport.Rule, 0, len(rules))
	for _, r := range rules {
		engineRules = append(engineRules, bankimport.Rule{
			Priority:     r.Priority,
			Contains:     r.Condition.DescriptionContains,
			CategoryID:   r.Action.SetCategoryID,
			CategoryName: r.Action.SetCategoryByName,
		})
	}
	refs := make([]bankimport.CategoryRef, 0, len(categories))
	for _, c := range categories {
		refs = append(refs, bankimport.CategoryRef{ID: c.ID, Name: c.Name})
	}

	return bankimport.NewEngine(engineRules, refs), nil
}

func (s *BankService) List(ctx context.Context, userID, entityID uuid.UUID) ([]models.BankTransaction, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}
	return s.txRepo.ListByEntity(ctx, entityID)
}

// Update re-categorizes a transaction or links it to an invoice. A nil field
// keeps the current value and an empty string clears it.
func (s *BankService) Update(ctx context.Context, userID, txID uuid.UUID, req *dto.UpdateTransactionRequest) (*models.BankTransaction, error) {
	tx, err := s.txRepo.GetForUser(ctx, userID, txID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	categoryID := tx.CategoryID
	if req.CategoryID != nil {
		categoryID, err = parseOptionalUUID(req.CategoryID)
		if err != nil {
			return nil, ErrCategoryNotFound
		}
		if categoryID != nil {
			if _, err := s.categoryRepo.GetForEntity(ctx, tx.EntityID, *categoryID); err != nil {
				if isNotFound(err) {
					return nil, ErrCategoryNotFound
				}
				return nil, err
			}
		}
	}

	invoiceID := tx.LinkedInvoiceID
	if req.LinkedInvoiceID != nil {
		invoiceID, err = parseOptionalUUID(req.LinkedInvoiceID)
		if err != nil {
			return nil, ErrInvoiceNotFound
		}
		if invoiceID != nil {
			invoice, err := s.invoiceRepo.GetForUser(ctx, userID, *invoiceID)
			if err != nil {
				if isNotFound(err) {
					return nil, ErrInvoiceNotFound
				}
				return nil, err
			}
			if invoice.EntityID != tx.EntityID {
				return nil, ErrInvoiceNotFound
			}
		}
	}

	updated, err := s.txRepo.UpdateLinks(ctx, txID, categoryID, invoiceID)
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, userID, tx.EntityID, "bank:updateTransaction", map[string]any{
		"transactionId":   txID.String(),
		"categoryId":      uuidString(categoryID),
		"linkedInvoiceId": uuidString(invoiceID),
	})

	return updated, nil
}

func uuidString(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
