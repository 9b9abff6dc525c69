package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
)

type ExpenseService struct {
	entityRepo   EntityStore
	categoryRepo CategoryStore
	expenseRepo  ExpenseStore
	audit        *AuditService
	logger       *zap.Logger
}

func NewExpenseService(entityRepo EntityStore, categoryRepo CategoryStore, expenseRepo ExpenseStore, audit *AuditService, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		entityRepo:   entityRepo,
		categoryRepo: categoryRepo,
		expenseRepo:  expenseRepo,
		audit:        audit,
		logger:       logger,
	}
}

func (s *ExpenseService) Create(ctx context.Context, userID, entityID uuid.UUID, req *dto.CreateExpenseRequest) (*models.Expense, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}

	date, err := parseInstant(req.Date)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	amount, err := parseMoney(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidRequest
	}

	currency, err := currencyOrDefault(req.Currency)
	if err != nil {
		return nil, err
	}

	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		return nil, ErrCategoryNotFound
	}
	if categoryID != nil {
		if _, err := s.categoryRepo.GetForEntity(ctx, entityID, *categoryID); err != nil {
			if isNotFound(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}

	expense := &models.Expense{
		ID:          uuid.New(),
		EntityID:    entityID,
		Date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Amount:      amount,
		Currency:    currency,
		Description: req.Description,
		CategoryID:  categoryID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, userID, entityID, "expense:create", map[string]any{
		"expenseId":  expense.ID.String(),
		"amount":     expense.Amount.StringFixed(2),
		"categoryId": uuidString(expense.CategoryID),
	})
	return expense, nil
}

func (s *ExpenseService) List(ctx context.Context, userID, entityID uuid.UUID) ([]models.Expense, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}
	return s.expenseRepo.ListByEntity(ctx, entityID)
}
