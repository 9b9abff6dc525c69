package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
	"sole-ledger/internal/repository"
)

type CategoryService struct {
	entityRepo   EntityStore
	categoryRepo CategoryStore
	ruleRepo     RuleStore
	audit        *AuditService
	logger       *zap.Logger
}

func NewCategoryService(entityRepo EntityStore, categoryRepo CategoryStore, ruleRepo RuleStore, audit *AuditService, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		entityRepo:   entityRepo,
		categoryRepo: categoryRepo,
		ruleRepo:     ruleRepo,
		audit:        audit,
		logger:       logger,
	}
}

// Create adds a category. Names are unique per entity, ignoring case, so
// rules that refer to a category by name stay unambiguous.
func (s *CategoryService) Create(ctx context.Context, userID, entityID uuid.UUID, req *dto.CreateCategoryRequest) (*models.Category, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	categoryType := models.CategoryType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if name == "" || !categoryType.Valid() {
		return nil, ErrInvalidRequest
	}

	category := &models.Category{
		ID:        uuid.New(),
		EntityID:  entityID,
		Name:      name,
		Type:      categoryType,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}

	s.audit.Log(ctx, userID, entityID, "category:create", map[string]any{
		"categoryId": category.ID.String(),
		"name":       category.Name,
		"type":       string(category.Type),
	})
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, userID, entityID uuid.UUID) ([]models.Category, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}
	return s.categoryRepo.ListByEntity(ctx, entityID)
}

// CreateRule stores an auto-categorization rule. A direct category id must
// name one of the entity's own categories.
func (s *CategoryService) CreateRule(ctx context.Context, userID, entityID uuid.UUID, req *dto.CreateRuleRequest) (*models.Rule, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(req.Condition.DescriptionContains))
	for _, token := range req.Condition.DescriptionContains {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	action := models.RuleAction{
		SetCategoryID:     strings.TrimSpace(req.Action.SetCategoryID),
		SetCategoryByName: strings.TrimSpace(req.Action.SetCategoryByName),
	}
	if len(tokens) == 0 || (action.SetCategoryID == "" && action.SetCategoryByName == "") {
		return nil, ErrInvalidRequest
	}

	if action.SetCategoryID != "" {
		categoryID, err := uuid.Parse(action.SetCategoryID)
		if err != nil {
			return nil, ErrCategoryNotFound
		}
		if _, err := s.categoryRepo.GetForEntity(ctx, entityID, categoryID); err != nil {
			if isNotFound(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}

	rule := &models.Rule{
		ID:        uuid.New(),
		EntityID:  entityID,
		Priority:  req.Priority,
		Condition: models.RuleCondition{DescriptionContains: tokens},
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, userID, entityID, "rule:create", map[string]any{
		"ruleId":   rule.ID.String(),
		"priority": rule.Priority,
	})
	return rule, nil
}

func (s *CategoryService) ListRules(ctx context.Context, userID, entityID uuid.UUID) ([]models.Rule, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}
	return s.ruleRepo.ListByEntity(ctx, entityID)
}
