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

type ReportService interface {
	Cashflow(ctx context.Context, userID, entityID uuid.UUID, q dto.RangeQuery) (*dto.CashflowReport, error)
	ProfitAndLoss(ctx context.Context, userID, entityID uuid.UUID, q dto.RangeQuery) (*dto.ProfitAndLossReport, error)
}

type AuditService interface {
	List(ctx context.Context, userID, entityID uuid.UUID, query dto.AuditQuery) ([]models.AuditLog, error)
}

// ReportHandler serves the read-only views: reports and the audit trail.
type ReportHandler struct {
	reportService ReportService
	auditService  AuditService
	logger        *zap.Logger
}

func NewReportHandler(reportService ReportService, auditService AuditService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		auditService:  auditService,
		logger:        logger,
	}
}

// Cashflow godoc
// @Summary Cashflow report
// @Description Inflows and outflows of bank transactions in [from, to). Defaults to all time.
// @Tags reports
// @Produce json
// @Param entityId path string true "Entity ID"
// @Param from query string false "Start (YYYY-MM-DD or RFC 3339)"
// @Param to query string false "End, exclusive"
// @Security Bearer
// @Success 200 {object} dto.CashflowReport
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/reports/cashflow [get]
func (h *ReportHandler) Cashflow(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	var q dto.RangeQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, service.ErrInvalidRequest.Code)
	}

	report, err := h.reportService.Cashflow(c.Context(), userID, entityID, q)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to build cashflow report")
	}

	return c.JSON(report)
}

// ProfitAndLoss godoc
// @Summary Profit and loss report
// @Description Recognized invoice income against recorded expenses in [from, to)
// @Tags reports
// @Produce json
// @Param entityId path string true "Entity ID"
// @Param from query string false "Start (YYYY-MM-DD or RFC 3339)"
// @Param to query string false "End, exclusive"
// @Security Bearer
// @Success 200 {object} dto.ProfitAndLossReport
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/reports/profit-and-loss [get]
func (h *ReportHandler) ProfitAndLoss(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	var q dto.RangeQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, service.ErrInvalidRequest.Code)
	}

	report, err := h.reportService.ProfitAndLoss(c.Context(), userID, entityID, q)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to build profit and loss report")
	}

	return c.JSON(report)
}

// AuditLog godoc
// @Summary Audit trail
// @Tags audit
// @Produce json
// @Param entityId path string true "Entity ID"
// @Param from query string false "Start"
// @Param to query string false "End, exclusive"
// @Param limit query int false "Limit" default(50)
// @Security Bearer
// @Success 200 {array} dto.AuditLogResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/audit [get]
func (h *ReportHandler) AuditLog(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	var q dto.AuditQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, service.ErrInvalidRequest.Code)
	}

	logs, err := h.auditService.List(c.Context(), userID, entityID, q)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list audit log")
	}

	return c.JSON(dto.MapSlice(logs, dto.NewAuditLogResponse))
}
