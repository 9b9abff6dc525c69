package handlers

import (
	"context"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
	"sole-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EntityService interface {
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateEntityRequest) (*models.Entity, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Entity, error)
	Get(ctx context.Context, userID, entityID uuid.UUID) (*models.Entity, error)
	Update(ctx context.Context, userID, entityID uuid.UUID, req *dto.UpdateEntityRequest) (*models.Entity, error)
}

type CategoryService interface {
	Create(ctx context.Context, userID, entityID uuid.UUID, req *dto.CreateCategoryRequest) (*models.Category, error)
	List(ctx context.Context, userID, entityID uuid.UUID) ([]models.Category, error)
	CreateRule(ctx context.Context, userID, entityID uuid.UUID, req *dto.CreateRuleRequest) (*models.Rule, error)
	ListRules(ctx context.Context, userID, entityID uuid.UUID) ([]models.Rule, error)
}

type EntityHandler struct {
	entityService   EntityService
	categoryService CategoryService
	logger          *zap.Logger
}

func NewEntityHandler(entityService EntityService, categoryService CategoryService, logger *zap.Logger) *EntityHandler {
	return &EntityHandler{
		entityService:   entityService,
		categoryService: categoryService,
		logger:          logger,
	}
}

// CreateEntity godoc
// @Summary Create a business entity
// @Tags entities
// @Accept json
// @Produce json
// @Param request body dto.CreateEntityRequest true "Entity"
// @Security Bearer
// @Success 201 {object} dto.EntityResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/entities [post]
func (h *EntityHandler) CreateEntity(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateEntityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, service.ErrInvalidRequest.Code)
	}

	entity, err := h.entityService.Create(c.Context(), userID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create entity")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewEntityResponse(*entity))
}

// ListEntities godoc
// @Summary List own entities
// @Tags entities
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.EntityResponse
// @Router /api/v1/entities [get]
func (h *EntityHandler) ListEntities(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	entities, err := h.entityService.List(c.Context(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list entities")
	}

	return c.JSON(dto.MapSlice(entities, dto.NewEntityResponse))
}

// GetEntity godoc
// @Summary Get an entity
// @Tags entities
// @Produce json
// @Param entityId path string true "Entity ID"
// @Security Bearer
// @Success 200 {object} dto.EntityResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId} [get]
func (h *EntityHandler) GetEntity(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	entity, err := h.entityService.Get(c.Context(), userID, entityID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get entity")
	}

	return c.JSON(dto.NewEntityResponse(*entity))
}

// UpdateEntity godoc
// @Summary Update an entity
// @Tags entities
// @Accept json
// @Produce json
// @Param entityId path string true "Entity ID"
// @Param request body dto.UpdateEntityRequest true "Fields to change"
// @Security Bearer
// @Success 200 {object} dto.EntityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId} [patch]
func (h *EntityHandler) UpdateEntity(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	var req dto.UpdateEntityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, service.ErrInvalidRequest.Code)
	}

	entity, err := h.entityService.Update(c.Context(), userID, entityID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update entity")
	}

	return c.JSON(dto.NewEntityResponse(*entity))
}

// CreateCategory godoc
// @Summary Create a category
// @Description Names are unique per entity, ignoring case
// @Tags categories
// @Accept json
// @Produce json
// @Param entityId path string true "Entity ID"
// @Param request body dto.CreateCategoryRequest true "Category"
// @Security Bearer
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/entities/{entityId}/categories [post]
func (h *EntityHandler) CreateCategory(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, service.ErrInvalidRequest.Code)
	}

	category, err := h.categoryService.Create(c.Context(), userID, entityID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create category")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewCategoryResponse(*category))
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Param entityId path string true "Entity ID"
// @Security Bearer
// @Success 200 {array} dto.CategoryResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/categories [get]
func (h *EntityHandler) ListCategories(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	categories, err := h.categoryService.List(c.Context(), userID, entityID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list categories")
	}

	return c.JSON(dto.MapSlice(categories, dto.NewCategoryResponse))
}

// CreateRule godoc
// @Summary Create a categorization rule
// @Tags rules
// @Accept json
// @Produce json
// @Param entityId path string true "Entity ID"
// @Param request body dto.CreateRuleRequest true "Rule"
// @Security Bearer
// @Success 201 {object} dto.RuleResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/rules [post]
func (h *EntityHandler) CreateRule(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	var req dto.CreateRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, service.ErrInvalidRequest.Code)
	}

	rule, err := h.categoryService.CreateRule(c.Context(), userID, entityID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create rule")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewRuleResponse(*rule))
}

// ListRules godoc
// @Summary List rules in evaluation order
// @Tags rules
// @Produce json
// @Param entityId path string true "Entity ID"
// @Security Bearer
// @Success 200 {array} dto.RuleResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/rules [get]
func (h *EntityHandler) ListRules(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	rules, err := h.categoryService.ListRules(c.Context(), userID, entityID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list rules")
	}

	return c.JSON(dto.MapSlice(rules, dto.NewRuleResponse))
}
