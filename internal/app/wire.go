// Package app assembles repositories and services from configuration. Both
// the API server and ledgerctl build their object graph here.
package app

import (
	"fmt"
	"time"

	"sole-ledger/internal/jobs"
	"sole-ledger/internal/repository"
	"sole-ledger/internal/service"
	"sole-ledger/internal/tax"
	"sole-ledger/pkg/auth"
	"sole-ledger/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Services struct {
	Auth     *service.AuthService
	Audit    *service.AuditService
	Entity   *service.EntityService
	Category *service.CategoryService
	Bank     *service.BankService
	Invoice  *service.InvoiceService
	Expense  *service.ExpenseService
	Tax      *service.TaxService
	Reminder *service.ReminderService
	Report   *service.ReportService
}

// DeclarationPolicy builds the RS.ge deadline policy from config. Deadlines
// are pinned to UTC; the tax timezone only decides which month is current.
func DeclarationPolicy(cfg config.TaxConfig) tax.DeclarationPolicy {
	return tax.DeclarationPolicy{
		Day:      cfg.DeclarationDay,
		Hour:     cfg.DeclarationHour,
		Location: time.UTC,
	}
}

func NewServices(
	db *pgxpool.Pool,
	cfg *config.Config,
	jwtManager *auth.JWTManager,
	publisher jobs.Publisher,
	jobStore jobs.JobStore,
	logger *zap.Logger,
) (*Services, error) {
	location, err := time.LoadLocation(cfg.Tax.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load tax timezone: %w", err)
	}

	userRepo := repository.NewUserRepository(db, logger)
	entityRepo := repository.NewEntityRepository(db, logger)
	categoryRepo := repository.NewCategoryRepository(db, logger)
	ruleRepo := repository.NewRuleRepository(db, logger)
	txRepo := repository.NewBankTransactionRepository(db, logger)
	invoiceRepo := repository.NewInvoiceRepository(db, logger)
	expenseRepo := repository.NewExpenseRepository(db, logger)
	periodRepo := repository.NewTaxPeriodRepository(db, logger)
	reminderRepo := repository.NewReminderRepository(db, logger)
	auditRepo := repository.NewAuditRepository(db, logger)

	audit := service.NewAuditService(auditRepo, entityRepo, logger)
	reminders := service.NewReminderService(reminderRepo, entityRepo, publisher, jobStore,
		service.NewLogNotifier(logger), audit, logger)

	return &Services{
		Auth:     service.NewAuthService(userRepo, jwtManager, logger),
		Audit:    audit,
		Entity:   service.NewEntityService(entityRepo, audit, logger),
		Category: service.NewCategoryService(entityRepo, categoryRepo, ruleRepo, audit, logger),
		Bank:     service.NewBankService(entityRepo, categoryRepo, ruleRepo, txRepo, invoiceRepo, audit, logger),
		Invoice:  service.NewInvoiceService(entityRepo, invoiceRepo, audit, logger),
		Expense:  service.NewExpenseService(entityRepo, categoryRepo, expenseRepo, audit, logger),
		Tax: service.NewTaxService(entityRepo, invoiceRepo, periodRepo, reminders, audit,
			DeclarationPolicy(cfg.Tax), location, logger),
		Reminder: reminders,
		Report:   service.NewReportService(entityRepo, txRepo, invoiceRepo, expenseRepo, logger),
	}, nil
}
