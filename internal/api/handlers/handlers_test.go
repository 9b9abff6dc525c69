package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
	"sole-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubBank struct {
	req      *dto.ImportRequest
	file     []byte
	entityID uuid.UUID
	err      error
}

func (s *stubBank) Import(_ context.Context, _, entityID uuid.UUID, req *dto.ImportRequest, file []byte) (*dto.ImportResponse, error) {
	s.req, s.file, s.entityID = req, file, entityID
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ImportResponse{Imported: 2}, nil
}

func (s *stubBank) List(context.Context, uuid.UUID, uuid.UUID) ([]models.BankTransaction, error) {
	return nil, s.err
}

func (s *stubBank) Update(_ context.Context, _, txID uuid.UUID, _ *dto.UpdateTransactionRequest) (*models.BankTransaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.BankTransaction{ID: txID, Amount: decimal.RequireFromString("-35.01"), Currency: "GEL"}, nil
}

type stubTax struct {
	month string
	err   error
}

func (s *stubTax) ClosePeriod(_ context.Context, _, entityID uuid.UUID, req *dto.ClosePeriodRequest) (*models.TaxPeriod, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.TaxPeriod{
		ID: uuid.New(), EntityID: entityID,
		PeriodStart: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Turnover:    decimal.RequireFromString("3500"),
		TaxRate:     decimal.RequireFromString("0.01"),
		TaxDue:      decimal.RequireFromString("35"),
	}, nil
}

func (s *stubTax) List(context.Context, uuid.UUID, uuid.UUID) ([]models.TaxPeriod, error) {
	return []models.TaxPeriod{}, s.err
}

func (s *stubTax) MarkPaid(context.Context, uuid.UUID, uuid.UUID, *dto.MarkPaidRequest) (*models.TaxPeriod, error) {
	return nil, s.err
}

func (s *stubTax) ExportDeclaration(_ context.Context, _, _ uuid.UUID, month string) (string, error) {
	s.month = month
	if s.err != nil {
		return "", s.err
	}
	return "period,entity,tax_id,turnover,rate,tax_due\n", nil
}

type stubReports struct {
	query dto.RangeQuery
	audit dto.AuditQuery
	err   error
}

func (s *stubReports) Cashflow(_ context.Context, _, _ uuid.UUID, q dto.RangeQuery) (*dto.CashflowReport, error) {
	s.query = q
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CashflowReport{Currency: "GEL", Net: "700.00"}, nil
}

func (s *stubReports) ProfitAndLoss(_ context.Context, _, _ uuid.UUID, q dto.RangeQuery) (*dto.ProfitAndLossReport, error) {
	s.query = q
	return &dto.ProfitAndLossReport{Currency: "GEL", Net: "0.00"}, s.err
}

func (s *stubReports) List(_ context.Context, _, _ uuid.UUID, q dto.AuditQuery) ([]models.AuditLog, error) {
	s.audit = q
	return []models.AuditLog{{ID: uuid.New(), Action: "tax:close", Details: map[string]any{}}}, s.err
}

const testUserID = "6f1c4e8a-3b9d-4c2e-9a51-0d7b2f6e8c14"

func newTestApp(routes func(app *fiber.App)) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-Anonymous") == "" {
			c.Locals("userID", testUserID)
		}
		return c.Next()
	})
	routes(app)
	return app
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["error"]
}

func multipartBody(t *testing.T, fields map[string]string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if content != nil {
		part, err := w.CreateFormFile("file", "statement.csv")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func bankApp(bank *stubBank, limit int) *fiber.App {
	h := NewBankHandler(bank, limit, zap.NewNop())
	return newTestApp(func(app *fiber.App) {
		app.Post("/entities/:entityId/bank/import", h.ImportCSV)
		app.Get("/entities/:entityId/bank/transactions", h.ListTransactions)
		app.Patch("/bank/transactions/:id", h.UpdateTransaction)
	})
}

func TestImportCSV(t *testing.T) {
	bank := &stubBank{}
	app := bankApp(bank, 1024)
	entityID := uuid.New()

	csv := []byte("Date,Amount,Currency,Description\n2024-03-01,10,GEL,Coffee\n")
	body, contentType := multipartBody(t, map[string]string{
		"bank":    "OTHER",
		"mapping": `{"date":"Date","amount":"Amount","description":"Description"}`,
	}, csv)

	req := httptest.NewRequest(http.MethodPost, "/entities/"+entityID.String()+"/bank/import", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out dto.ImportResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(2), out.Imported)

	assert.Equal(t, entityID, bank.entityID)
	assert.Equal(t, "OTHER", bank.req.Bank)
	require.NotNil(t, bank.req.Mapping)
	assert.Equal(t, "Date", bank.req.Mapping.Date)
	assert.Equal(t, csv, bank.file)
}

func TestImportCSV_Rejections(t *testing.T) {
	entityID := uuid.New().String()

	tests := []struct {
		name   string
		fields map[string]string
		file   []byte
		limit  int
		err    error
		status int
		code   string
	}{
		{"missing file", map[string]string{"bank": "BOG"}, nil, 1024, nil, 400, "CSV_FILE_REQUIRED"},
		{"too large", map[string]string{"bank": "BOG"}, bytes.Repeat([]byte("a"), 64), 16, nil, 413, "FILE_TOO_LARGE"},
		{"bad mapping", map[string]string{"bank": "OTHER", "mapping": "{"}, []byte("x"), 1024, nil, 400, "INVALID_REQUEST"},
		{"domain error", map[string]string{"bank": "OTHER"}, []byte("x"), 1024, service.ErrMappingRequired, 400, "MAPPING_REQUIRED"},
		{"store failure", map[string]string{"bank": "BOG"}, []byte("x"), 1024, errors.New("db down"), 500, "Failed to import bank statement"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := bankApp(&stubBank{err: tt.err}, tt.limit)
			body, contentType := multipartBody(t, tt.fields, tt.file)
			req := httptest.NewRequest(http.MethodPost, "/entities/"+entityID+"/bank/import", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, resp))
		})
	}
}

func TestScopeErrors(t *testing.T) {
	app := bankApp(&stubBank{}, 1024)

	req := httptest.NewRequest(http.MethodGet, "/entities/not-a-uuid/bank/transactions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ENTITY_NOT_FOUND", decodeError(t, resp))

	req = httptest.NewRequest(http.MethodGet, "/entities/"+uuid.New().String()+"/bank/transactions", nil)
	req.Header.Set("X-Anonymous", "1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp))
}

func TestListTransactions_EmptyIsArray(t *testing.T) {
	app := bankApp(&stubBank{}, 1024)

	req := httptest.NewRequest(http.MethodGet, "/entities/"+uuid.New().String()+"/bank/transactions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestUpdateTransaction(t *testing.T) {
	app := bankApp(&stubBank{}, 1024)
	txID := uuid.New()

	req := httptest.NewRequest(http.MethodPatch, "/bank/transactions/"+txID.String(), strings.NewReader(`{"categoryId":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out dto.TransactionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, txID.String(), out.ID)
	assert.Equal(t, "-35.01", out.Amount)

	req = httptest.NewRequest(http.MethodPatch, "/bank/transactions/42", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "TRANSACTION_NOT_FOUND", decodeError(t, resp))
}

func taxApp(tax *stubTax) *fiber.App {
	h := NewTaxHandler(tax, zap.NewNop())
	return newTestApp(func(app *fiber.App) {
		app.Post("/entities/:entityId/tax/periods/close", h.ClosePeriod)
		app.Get("/entities/:entityId/tax/declaration", h.ExportDeclaration)
		app.Post("/tax/periods/:id/pay", h.MarkPaid)
	})
}

func TestClosePeriod(t *testing.T) {
	app := taxApp(&stubTax{})

	// an empty body closes the current month
	req := httptest.NewRequest(http.MethodPost, "/entities/"+uuid.New().String()+"/tax/periods/close", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out dto.TaxPeriodResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "2024-05-01", out.PeriodStart)
	assert.Equal(t, "35.00", out.TaxDue)
	assert.Equal(t, "0.01", out.TaxRate)
}

func TestClosePeriod_Conflict(t *testing.T) {
	app := taxApp(&stubTax{err: service.ErrTaxPeriodExists})

	req := httptest.NewRequest(http.MethodPost, "/entities/"+uuid.New().String()+"/tax/periods/close",
		strings.NewReader(`{"periodStart":"2024-05-01","periodEnd":"2024-06-01"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "TAX_PERIOD_ALREADY_EXISTS", decodeError(t, resp))
}

func TestExportDeclaration(t *testing.T) {
	tax := &stubTax{}
	app := taxApp(tax)

	req := httptest.NewRequest(http.MethodGet, "/entities/"+uuid.New().String()+"/tax/declaration?month=2024-05", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-05", tax.month)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "rs-declaration-2024-05.csv")
}

func TestMarkPaid_NotFound(t *testing.T) {
	app := taxApp(&stubTax{err: service.ErrTaxPeriodNotFound})

	req := httptest.NewRequest(http.MethodPost, "/tax/periods/"+uuid.New().String()+"/pay", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "TAX_PERIOD_NOT_FOUND", decodeError(t, resp))
}

func TestReports_QueryParsing(t *testing.T) {
	reports := &stubReports{}
	h := NewReportHandler(reports, reports, zap.NewNop())
	app := newTestApp(func(app *fiber.App) {
		app.Get("/entities/:entityId/reports/cashflow", h.Cashflow)
		app.Get("/entities/:entityId/audit", h.AuditLog)
	})
	base := "/entities/" + uuid.New().String()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, base+"/reports/cashflow?from=2024-03-01&to=2024-04-01", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.RangeQuery{From: "2024-03-01", To: "2024-04-01"}, reports.query)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, base+"/audit?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, reports.audit.Limit)

	reports.err = service.ErrInvalidToDate
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, base+"/reports/cashflow?to=soon", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_TO_DATE", decodeError(t, resp))
}
