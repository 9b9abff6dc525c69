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

type InvoiceService interface {
	Create(ctx context.Context, userID, entityID uuid.UUID, req *dto.CreateInvoiceRequest) (*models.Invoice, error)
	List(ctx context.Context, userID, entityID uuid.UUID) ([]models.Invoice, error)
	UpdateStatus(ctx context.Context, userID, invoiceID uuid.UUID, req *dto.UpdateInvoiceStatusRequest) (*models.Invoice, error)
}

type ExpenseService interface {
	Create(ctx context.Context, userID, entityID uuid.UUID, req *dto.CreateExpenseRequest) (*models.Expense, error)
	List(ctx context.Context, userID, entityID uuid.UUID) ([]models.Expense, error)
}

// InvoiceHandler covers both sides of the books that are entered by hand.
type InvoiceHandler struct {
	invoiceService InvoiceService
	expenseService ExpenseService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService InvoiceService, expenseService ExpenseService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		expenseService: expenseService,
		logger:         logger,
	}
}

// CreateInvoice godoc
// @Summary Issue an invoice
// @Description Numbers are assigned as YYYY-NNNN per entity and issue year
// @Tags invoices
// @Accept json
// @Produce json
// @Param entityId path string true "Entity ID"
// @Param request body dto.CreateInvoiceRequest true "Invoice"
// @Security Bearer
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/entities/{entityId}/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	var req dto.CreateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, service.ErrInvalidRequest.Code)
	}

	invoice, err := h.invoiceService.Create(c.Context(), userID, entityID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create invoice")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewInvoiceResponse(*invoice))
}

// ListInvoices godoc
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param entityId path string true "Entity ID"
// @Security Bearer
// @Success 200 {array} dto.InvoiceResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	invoices, err := h.invoiceService.List(c.Context(), userID, entityID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list invoices")
	}

	return c.JSON(dto.MapSlice(invoices, dto.NewInvoiceResponse))
}

// UpdateInvoiceStatus godoc
// @Summary Change an invoice status
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body dto.UpdateInvoiceStatusRequest true "New status"
// @Security Bearer
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateInvoiceStatus(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	invoiceID, err := pathID(c, "id", service.ErrInvoiceNotFound)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update invoice")
	}

	var req dto.UpdateInvoiceStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, service.ErrInvalidRequest.Code)
	}

	invoice, err := h.invoiceService.UpdateStatus(c.Context(), userID, invoiceID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update invoice")
	}

	return c.JSON(dto.NewInvoiceResponse(*invoice))
}

// CreateExpense godoc
// @Summary Record an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param entityId path string true "Entity ID"
// @Param request body dto.CreateExpenseRequest true "Expense"
// @Security Bearer
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/expenses [post]
func (h *InvoiceHandler) CreateExpense(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	var req dto.CreateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, service.ErrInvalidRequest.Code)
	}

	expense, err := h.expenseService.Create(c.Context(), userID, entityID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create expense")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewExpenseResponse(*expense))
}

// ListExpenses godoc
// @Summary List expenses
// @Tags expenses
// @Produce json
// @Param entityId path string true "Entity ID"
// @Security Bearer
// @Success 200 {array} dto.ExpenseResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/expenses [get]
func (h *InvoiceHandler) ListExpenses(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	expenses, err := h.expenseService.List(c.Context(), userID, entityID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list expenses")
	}

	return c.JSON(dto.MapSlice(expenses, dto.NewExpenseResponse))
}
