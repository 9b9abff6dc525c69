package handlers

import (
	"context"
	"fmt"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
	"sole-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaxService interface {
	ClosePeriod(ctx context.Context, userID, entityID uuid.UUID, req *dto.ClosePeriodRequest) (*models.TaxPeriod, error)
	List(ctx context.Context, userID, entityID uuid.UUID) ([]models.TaxPeriod, error)
	MarkPaid(ctx context.Context, userID, periodID uuid.UUID, req *dto.MarkPaidRequest) (*models.TaxPeriod, error)
	ExportDeclaration(ctx context.Context, userID, entityID uuid.UUID, month string) (string, error)
}

type TaxHandler struct {
	taxService TaxService
	logger     *zap.Logger
}

func NewTaxHandler(taxService TaxService, logger *zap.Logger) *TaxHandler {
	return &TaxHandler{
		taxService: taxService,
		logger:     logger,
	}
}

// ClosePeriod godoc
// @Summary Close a tax period
// @Description Snapshots turnover and tax due for [periodStart, periodEnd). Both bounds default to the current month. Schedules the RS.ge declaration reminder.
// @Tags tax
// @Accept json
// @Produce json
// @Param entityId path string true "Entity ID"
// @Param request body dto.ClosePeriodRequest false "Period bounds"
// @Security Bearer
// @Success 201 {object} dto.TaxPeriodResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/entities/{entityId}/tax/periods/close [post]
func (h *TaxHandler) ClosePeriod(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	var req dto.ClosePeriodRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, service.ErrInvalidRequest.Code)
		}
	}

	period, err := h.taxService.ClosePeriod(c.Context(), userID, entityID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to close tax period")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewTaxPeriodResponse(*period))
}

// ListPeriods godoc
// @Summary List closed tax periods
// @Tags tax
// @Produce json
// @Param entityId path string true "Entity ID"
// @Security Bearer
// @Success 200 {array} dto.TaxPeriodResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/tax/periods [get]
func (h *TaxHandler) ListPeriods(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	periods, err := h.taxService.List(c.Context(), userID, entityID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list tax periods")
	}

	return c.JSON(dto.MapSlice(periods, dto.NewTaxPeriodResponse))
}

// MarkPaid godoc
// @Summary Mark a tax period as paid
// @Tags tax
// @Accept json
// @Produce json
// @Param id path string true "Tax period ID"
// @Param request body dto.MarkPaidRequest false "Payment time, defaults to now"
// @Security Bearer
// @Success 200 {object} dto.TaxPeriodResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/tax/periods/{id}/pay [post]
func (h *TaxHandler) MarkPaid(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	periodID, err := pathID(c, "id", service.ErrTaxPeriodNotFound)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to mark tax period paid")
	}

	var req dto.MarkPaidRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, service.ErrInvalidRequest.Code)
		}
	}

	period, err := h.taxService.MarkPaid(c.Context(), userID, periodID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to mark tax period paid")
	}

	return c.JSON(dto.NewTaxPeriodResponse(*period))
}

// ExportDeclaration godoc
// @Summary Export the RS.ge declaration
// @Description CSV for a closed calendar month
// @Tags tax
// @Produce text/csv
// @Param entityId path string true "Entity ID"
// @Param month query string true "Month as YYYY-MM"
// @Security Bearer
// @Success 200 {string} string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/tax/declaration [get]
func (h *TaxHandler) ExportDeclaration(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	month := c.Query("month")
	out, err := h.taxService.ExportDeclaration(c.Context(), userID, entityID, month)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to export declaration")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="rs-declaration-%s.csv"`, month))
	return c.SendString(out)
}
