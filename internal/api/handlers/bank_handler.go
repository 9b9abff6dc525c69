package handlers

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"sole-ledger/internal/bankimport"
	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
	"sole-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BankService interface {
	Import(ctx context.Context, userID, entityID uuid.UUID, req *dto.ImportRequest, file []byte) (*dto.ImportResponse, error)
	List(ctx context.Context, userID, entityID uuid.UUID) ([]models.BankTransaction, error)
	Update(ctx context.Context, userID, txID uuid.UUID, req *dto.UpdateTransactionRequest) (*models.BankTransaction, error)
}

type BankHandler struct {
	bankService    BankService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewBankHandler(bankService BankService, maxUploadBytes int, logger *zap.Logger) *BankHandler {
	return &BankHandler{
		bankService:    bankService,
		maxUploadBytes: int64(maxUploadBytes),
		logger:         logger,
	}
}

// ImportCSV godoc
// @Summary Import a bank statement
// @Description Upload a bank CSV export. Built-in presets exist for BOG and TBC; other banks need an explicit column mapping (JSON).
// @Tags bank
// @Accept multipart/form-data
// @Produce json
// @Param entityId path string true "Entity ID"
// @Param file formData file true "CSV file"
// @Param bank formData string true "Bank: BOG, TBC or OTHER"
// @Param mapping formData string false "Column mapping as JSON"
// @Security Bearer
// @Success 201 {object} dto.ImportResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Router /api/v1/entities/{entityId}/bank/import [post]
func (h *BankHandler) ImportCSV(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, service.ErrCSVFileRequired.Code)
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "FILE_TOO_LARGE",
		})
	}

	req := dto.ImportRequest{Bank: strings.TrimSpace(c.FormValue("bank"))}
	if raw := strings.TrimSpace(c.FormValue("mapping")); raw != "" {
		var mapping bankimport.Mapping
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			return badRequest(c, service.ErrInvalidRequest.Code)
		}
		req.Mapping = &mapping
	}

	src, err := file.Open()
	if err != nil {
		return badRequest(c, service.ErrCSVFileRequired.Code)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to read upload")
	}

	resp, err := h.bankService.Import(c.Context(), userID, entityID, &req, data)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to import bank statement")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListTransactions godoc
// @Summary List bank transactions
// @Description Newest first, with the assigned category name
// @Tags bank
// @Produce json
// @Param entityId path string true "Entity ID"
// @Security Bearer
// @Success 200 {array} dto.TransactionResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/entities/{entityId}/bank/transactions [get]
func (h *BankHandler) ListTransactions(c *fiber.Ctx) error {
	userID, entityID, err := scope(c)
	if err != nil {
		return scopeError(c, h.logger, err)
	}

	txs, err := h.bankService.List(c.Context(), userID, entityID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list transactions")
	}

	return c.JSON(dto.MapSlice(txs, dto.NewTransactionResponse))
}

// UpdateTransaction godoc
// @Summary Re-categorize or link a transaction
// @Description Omitted fields are kept; an empty string clears the field.
// @Tags bank
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body dto.UpdateTransactionRequest true "Changes"
// @Security Bearer
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/bank/transactions/{id} [patch]
func (h *BankHandler) UpdateTransaction(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	txID, err := pathID(c, "id", service.ErrTransactionNotFound)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update transaction")
	}

	var req dto.UpdateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, service.ErrInvalidRequest.Code)
	}

	tx, err := h.bankService.Update(c.Context(), userID, txID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update transaction")
	}

	return c.JSON(dto.NewTransactionResponse(*tx))
}
