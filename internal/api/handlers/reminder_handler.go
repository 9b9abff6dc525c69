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

type ReminderService interface {
	Create(ctx context.Context, userID, entityID uuid.UUID, req *dto.CreateReminderRequest) (*models.Reminder, error)
	List(ctx context.Context, userID, entityID uuid.UUID) ([]dto.ReminderResponse, error)
}

type ReminderHandler struct {
	reminderService ReminderService
	logger          *zap.Logger
}

func NewReminderHandler(reminderService ReminderService, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
		logger:          logger,
	}
}

// Create godoc
// @Summary Create a reminder
// @Tags reminders
// @Accept json
// @Produce json
// @Param entityId path string true "Entity ID"
// @Param request body dto.CreateReminderRequest true "Reminder"
// @Security Bearer
// @Success 201 {object} dto.ReminderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/reminders [post]
func (h *ReminderHandler) Create(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	var req dto.CreateReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, service.ErrInvalidRequest.Code)
	}

	reminder, err := h.reminderService.Create(c.Context(), userID, entityID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create reminder")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewReminderResponse(*reminder))
}

// List godoc
// @Summary List reminders
// @Tags reminders
// @Produce json
// @Param entityId path string true "Entity ID"
// @Security Bearer
// @Success 200 {array} dto.ReminderResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/reminders [get]
func (h *ReminderHandler) List(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	reminders, err := h.reminderService.List(c.Context(), userID, entityID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list reminders")
	}

	return c.JSON(reminders)
}
