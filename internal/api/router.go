package api

import (
	"sole-ledger/docs"
	"sole-ledger/internal/api/handlers"
	"sole-ledger/pkg/auth"
	"sole-ledger/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Bank     *handlers.BankHandler
	Tax      *handlers.TaxHandler
	Reminder *handlers.ReminderHandler
	Report   *handlers.ReportHandler
	Entity   *handlers.EntityHandler
	Invoice  *handlers.InvoiceHandler
}

type RouterConfig struct {
	// BodyLimit caps request bodies, multipart uploads included.
	BodyLimit int
}

func SetupRouter(
	h Handlers,
	jwtManager *auth.JWTManager,
	cfg RouterConfig,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.BodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code == fiber.StatusRequestEntityTooLarge {
				return c.Status(code).JSON(fiber.Map{
					"error": "FILE_TOO_LARGE",
				})
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	protected.Post("/entities", h.Entity.CreateEntity)
	protected.Get("/entities", h.Entity.ListEntities)

	entity := protected.Group("/entities/:entityId")
	entity.Get("", h.Entity.GetEntity)
	entity.Patch("", h.Entity.UpdateEntity)

	entity.Post("/categories", h.Entity.CreateCategory)
	entity.Get("/categories", h.Entity.ListCategories)
	entity.Post("/rules", h.Entity.CreateRule)
	entity.Get("/rules", h.Entity.ListRules)

	entity.Post("/bank/import", h.Bank.ImportCSV)
	entity.Get("/bank/transactions", h.Bank.ListTransactions)

	entity.Post("/tax/periods/close", h.Tax.ClosePeriod)
	entity.Get("/tax/periods", h.Tax.ListPeriods)
	entity.Get("/tax/declaration", h.Tax.ExportDeclaration)

	entity.Post("/reminders", h.Reminder.Create)
	entity.Get("/reminders", h.Reminder.List)

	entity.Get("/reports/cashflow", h.Report.Cashflow)
	entity.Get("/reports/profit-and-loss", h.Report.ProfitAndLoss)
	entity.Get("/audit", h.Report.AuditLog)

	entity.Post("/invoices", h.Invoice.CreateInvoice)
	entity.Get("/invoices", h.Invoice.ListInvoices)
	entity.Post("/expenses", h.Invoice.CreateExpense)
	entity.Get("/expenses", h.Invoice.ListExpenses)

	protected.Patch("/bank/transactions/:id", h.Bank.UpdateTransaction)
	protected.Post("/tax/periods/:id/pay", h.Tax.MarkPaid)
	protected.Patch("/invoices/:id/status", h.Invoice.UpdateInvoiceStatus)

	return app
}
