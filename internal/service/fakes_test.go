package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"sole-ledger/internal/jobs"
	"sole-ledger/internal/models"
	"sole-ledger/internal/repository"
	"sole-ledger/internal/tax"
)

// In-memory stand-ins for the pgx repositories. They mirror the repository
// contract: missing rows surface as pgx.ErrNoRows.

type fakeUsers struct {
	byID map[uuid.UUID]*models.User
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error {
	for _, u := range f.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

type fakeEntities struct {
	byID map[uuid.UUID]*models.Entity
}

func (f *fakeEntities) Create(ctx context.Context, entity *models.Entity) error {
	cp := *entity
	f.byID[entity.ID] = &cp
	return nil
}

func (f *fakeEntities) Update(ctx context.Context, entity *models.Entity) error {
	if _, ok := f.byID[entity.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *entity
	f.byID[entity.ID] = &cp
	return nil
}

func (f *fakeEntities) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Entity, error) {
	var out []models.Entity
	for _, e := range f.byID {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEntities) GetForUser(ctx context.Context, userID, entityID uuid.UUID) (*models.Entity, error) {
	e, ok := f.byID[entityID]
	if !ok || e.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEntities) owner(entityID uuid.UUID) uuid.UUID {
	if e, ok := f.byID[entityID]; ok {
		return e.UserID
	}
	return uuid.Nil
}

type fakeCategories struct {
	items     []models.Category
	listCalls int
}

func (f *fakeCategories) Create(ctx context.Context, category *models.Category) error {
	for _, c := range f.items {
		if c.EntityID == category.EntityID && strings.EqualFold(c.Name, category.Name) {
			return repository.ErrDuplicate
		}
	}
	f.items = append(f.items, *category)
	return nil
}

func (f *fakeCategories) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Category, error) {
	f.listCalls++
	var out []models.Category
	for _, c := range f.items {
		if c.EntityID == entityID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategories) GetForEntity(ctx context.Context, entityID, categoryID uuid.UUID) (*models.Category, error) {
	for _, c := range f.items {
		if c.ID == categoryID && c.EntityID == entityID {
			cp := c
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeRules struct {
	items     []models.Rule
	listCalls int
}

func (f *fakeRules) Create(ctx context.Context, rule *models.Rule) error {
	f.items = append(f.items, *rule)
	return nil
}

func (f *fakeRules) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Rule, error) {
	f.listCalls++
	var out []models.Rule
	for _, r := range f.items {
		if r.EntityID == entityID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

type fakeTransactions struct {
	items    []models.BankTransaction
	entities *fakeEntities
	batchErr error
}

func (f *fakeTransactions) CreateBatch(ctx context.Context, txs []models.BankTransaction) (int64, error) {
	if f.batchErr != nil {
		return 0, f.batchErr
	}
	f.items = append(f.items, txs...)
	return int64(len(txs)), nil
}

func (f *fakeTransactions) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.BankTransaction, error) {
	var out []models.BankTransaction
	for _, tx := range f.items {
		if tx.EntityID == entityID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeTransactions) ListInRange(ctx context.Context, entityID uuid.UUID, from, to time.Time) ([]models.BankTransaction, error) {
	var out []models.BankTransaction
	for _, tx := range f.items {
		if tx.EntityID == entityID && !tx.Date.Before(from) && tx.Date.Before(to) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeTransactions) GetForUser(ctx context.Context, userID, txID uuid.UUID) (*models.BankTransaction, error) {
	for _, tx := range f.items {
		if tx.ID == txID && f.entities.owner(tx.EntityID) == userID {
			cp := tx
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTransactions) UpdateLinks(ctx context.Context, txID uuid.UUID, categoryID, linkedInvoiceID *uuid.UUID) (*models.BankTransaction, error) {
	for i := range f.items {
		if f.items[i].ID == txID {
			f.items[i].CategoryID = categoryID
			f.items[i].LinkedInvoiceID = linkedInvoiceID
			cp := f.items[i]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeInvoices struct {
	items    []models.Invoice
	entities *fakeEntities

	// collisions makes the next Create calls lose a numbering race: a
	// concurrent invoice takes the number first.
	collisions int
}

func (f *fakeInvoices) Create(ctx context.Context, invoice *models.Invoice) error {
	if f.collisions > 0 {
		f.collisions--
		winner := *invoice
		winner.ID = uuid.New()
		f.items = append(f.items, winner)
	}
	for _, inv := range f.items {
		if inv.EntityID == invoice.EntityID && inv.Number == invoice.Number {
			return repository.ErrDuplicate
		}
	}
	f.items = append(f.items, *invoice)
	return nil
}

func (f *fakeInvoices) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, inv := range f.items {
		if inv.EntityID == entityID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvoices) GetForUser(ctx context.Context, userID, invoiceID uuid.UUID) (*models.Invoice, error) {
	for _, inv := range f.items {
		if inv.ID == invoiceID && f.entities.owner(inv.EntityID) == userID {
			cp := inv
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeInvoices) UpdateStatus(ctx context.Context, invoiceID uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error) {
	for i := range f.items {
		if f.items[i].ID == invoiceID {
			f.items[i].Status = status
			cp := f.items[i]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeInvoices) CountInYear(ctx context.Context, entityID uuid.UUID, year int) (int, error) {
	n := 0
	for _, inv := range f.items {
		if inv.EntityID == entityID && inv.IssueDate.Year() == year {
			n++
		}
	}
	return n, nil
}

func (f *fakeInvoices) ListRecognizedTotals(ctx context.Context, entityID uuid.UUID, from, to time.Time) ([]models.InvoiceTotal, error) {
	var out []models.InvoiceTotal
	for _, inv := range f.items {
		if inv.EntityID != entityID || !inv.Status.Recognized() {
			continue
		}
		if inv.IssueDate.Before(from) || !inv.IssueDate.Before(to) {
			continue
		}
		out = append(out, models.InvoiceTotal{
			IssueDate: inv.IssueDate,
			Total:     inv.Total,
			Currency:  inv.Currency,
			Status:    inv.Status,
		})
	}
	return out, nil
}

type fakeExpenses struct {
	items []models.Expense
}

func (f *fakeExpenses) Create(ctx context.Context, expense *models.Expense) error {
	f.items = append(f.items, *expense)
	return nil
}

func (f *fakeExpenses) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range f.items {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenses) ListInRange(ctx context.Context, entityID uuid.UUID, from, to time.Time) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range f.items {
		if e.EntityID == entityID && !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeTaxPeriods struct {
	items    []models.TaxPeriod
	entities *fakeEntities
}

func (f *fakeTaxPeriods) CreateIfAbsent(ctx context.Context, period *models.TaxPeriod) (bool, error) {
	for _, p := range f.items {
		if p.EntityID == period.EntityID && p.PeriodStart.Equal(period.PeriodStart) && p.PeriodEnd.Equal(period.PeriodEnd) {
			return false, nil
		}
	}
	f.items = append(f.items, *period)
	return true, nil
}

func (f *fakeTaxPeriods) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.TaxPeriod, error) {
	var out []models.TaxPeriod
	for _, p := range f.items {
		if p.EntityID == entityID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeTaxPeriods) GetForUser(ctx context.Context, userID, periodID uuid.UUID) (*models.TaxPeriod, error) {
	for _, p := range f.items {
		if p.ID == periodID && f.entities.owner(p.EntityID) == userID {
			cp := p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTaxPeriods) GetByBounds(ctx context.Context, entityID uuid.UUID, start, end time.Time) (*models.TaxPeriod, error) {
	for _, p := range f.items {
		if p.EntityID == entityID && p.PeriodStart.Equal(start) && p.PeriodEnd.Equal(end) {
			cp := p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTaxPeriods) MarkPaid(ctx context.Context, periodID uuid.UUID, paidAt time.Time) (*models.TaxPeriod, error) {
	for i := range f.items {
		if f.items[i].ID == periodID {
			f.items[i].Paid = true
			f.items[i].PaidAt = &paidAt
			cp := f.items[i]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeReminders struct {
	items     []models.Reminder
	entities  *fakeEntities
	users     *fakeUsers
	createErr error
}

func (f *fakeReminders) Create(ctx context.Context, reminder *models.Reminder) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.items = append(f.items, *reminder)
	return nil
}

func (f *fakeReminders) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Reminder, error) {
	var out []models.Reminder
	for _, r := range f.items {
		if r.EntityID == entityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReminders) GetRecipient(ctx context.Context, reminderID uuid.UUID) (*models.ReminderRecipient, error) {
	for _, r := range f.items {
		if r.ID != reminderID {
			continue
		}
		user, err := f.users.GetByID(ctx, f.entities.owner(r.EntityID))
		if err != nil {
			return nil, err
		}
		return &models.ReminderRecipient{Reminder: r, UserEmail: user.Email}, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeReminders) MarkSent(ctx context.Context, reminderID uuid.UUID, sentAt time.Time) error {
	for i := range f.items {
		if f.items[i].ID == reminderID {
			f.items[i].SentAt = &sentAt
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeReminders) ListUnsentDueBefore(ctx context.Context, t time.Time) ([]models.Reminder, error) {
	var out []models.Reminder
	for _, r := range f.items {
		if r.SentAt == nil && !r.DueDate.After(t) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeAudit struct {
	entries []models.AuditLog
	err     error
	filter  models.AuditFilter
}

func (f *fakeAudit) Create(ctx context.Context, entry *models.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAudit) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	f.filter = filter
	var out []models.AuditLog
	for _, e := range f.entries {
		if e.EntityID == filter.EntityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAudit) actions() []string {
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakePublisher struct {
	published []*jobs.SendReminderJob
	err       error
}

func (f *fakePublisher) PublishSendReminder(ctx context.Context, job *jobs.SendReminderJob) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, job)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeJobStore struct {
	jobs map[string]*jobs.SendReminderJob
	err  error
}

func (f *fakeJobStore) SaveJob(ctx context.Context, job *jobs.SendReminderJob) error {
	cp := *job
	f.jobs[job.JobID] = &cp
	return nil
}

func (f *fakeJobStore) GetJob(ctx context.Context, jobID string) (*jobs.SendReminderJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, jobs.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

type fakeNotifier struct {
	sent []uuid.UUID
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, recipient *models.ReminderRecipient) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, recipient.ID)
	return nil
}

var errStoreDown = errors.New("store unavailable")

// testEnv wires every service against fresh fakes with one user owning one
// small-business entity, plus a second user owning another entity.
type testEnv struct {
	users        *fakeUsers
	entities     *fakeEntities
	categories   *fakeCategories
	rules        *fakeRules
	transactions *fakeTransactions
	invoices     *fakeInvoices
	expenses     *fakeExpenses
	periods      *fakeTaxPeriods
	reminders    *fakeReminders
	audit        *fakeAudit
	publisher    *fakePublisher
	jobStore     *fakeJobStore
	notifier     *fakeNotifier

	auditSvc    *AuditService
	bankSvc     *BankService
	taxSvc      *TaxService
	reminderSvc *ReminderService
	reportSvc   *ReportService
	entitySvc   *EntityService
	categorySvc *CategoryService
	invoiceSvc  *InvoiceService
	expenseSvc  *ExpenseService

	userID        uuid.UUID
	entityID      uuid.UUID
	otherUserID   uuid.UUID
	otherEntityID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	env := &testEnv{
		users:       &fakeUsers{byID: map[uuid.UUID]*models.User{}},
		entities:    &fakeEntities{byID: map[uuid.UUID]*models.Entity{}},
		categories:  &fakeCategories{},
		rules:       &fakeRules{},
		expenses:    &fakeExpenses{},
		audit:       &fakeAudit{},
		publisher:   &fakePublisher{},
		jobStore:    &fakeJobStore{jobs: map[string]*jobs.SendReminderJob{}},
		notifier:    &fakeNotifier{},
		userID:      uuid.New(),
		entityID:    uuid.New(),
		otherUserID: uuid.New(),

		otherEntityID: uuid.New(),
	}
	env.transactions = &fakeTransactions{entities: env.entities}
	env.invoices = &fakeInvoices{entities: env.entities}
	env.periods = &fakeTaxPeriods{entities: env.entities}
	env.reminders = &fakeReminders{entities: env.entities, users: env.users}

	env.users.byID[env.userID] = &models.User{ID: env.userID, Username: "nino", Email: "nino@example.ge"}
	env.users.byID[env.otherUserID] = &models.User{ID: env.otherUserID, Username: "levan", Email: "levan@example.ge"}
	taxID := "01001012345"
	env.entities.byID[env.entityID] = &models.Entity{
		ID: env.entityID, UserID: env.userID, DisplayName: "Nino Design",
		TaxStatus: models.TaxStatusSmallBusiness, TaxID: &taxID, Timezone: "Asia/Tbilisi",
	}
	env.entities.byID[env.otherEntityID] = &models.Entity{
		ID: env.otherEntityID, UserID: env.otherUserID, DisplayName: "Levan Dev",
		TaxStatus: models.TaxStatusStandard, Timezone: "Asia/Tbilisi",
	}

	env.auditSvc = NewAuditService(env.audit, env.entities, logger)
	env.bankSvc = NewBankService(env.entities, env.categories, env.rules, env.transactions, env.invoices, env.auditSvc, logger)
	env.reminderSvc = NewReminderService(env.reminders, env.entities, env.publisher, env.jobStore, env.notifier, env.auditSvc, logger)
	env.taxSvc = NewTaxService(env.entities, env.invoices, env.periods, env.reminderSvc, env.auditSvc,
		tax.DefaultDeclarationPolicy(), time.UTC, logger)
	env.reportSvc = NewReportService(env.entities, env.transactions, env.invoices, env.expenses, logger)
	env.entitySvc = NewEntityService(env.entities, env.auditSvc, logger)
	env.categorySvc = NewCategoryService(env.entities, env.categories, env.rules, env.auditSvc, logger)
	env.invoiceSvc = NewInvoiceService(env.entities, env.invoices, env.auditSvc, logger)
	env.expenseSvc = NewExpenseService(env.entities, env.categories, env.expenses, env.auditSvc, logger)

	return env
}

func (env *testEnv) addCategory(entityID uuid.UUID, name string) uuid.UUID {
	id := uuid.New()
	env.categories.items = append(env.categories.items, models.Category{
		ID: id, EntityID: entityID, Name: name, Type: models.CategoryTypeExpense,
	})
	return id
}

func (env *testEnv) addRule(entityID uuid.UUID, priority int, contains []string, action models.RuleAction) {
	env.rules.items = append(env.rules.items, models.Rule{
		ID: uuid.New(), EntityID: entityID, Priority: priority,
		Condition: models.RuleCondition{DescriptionContains: contains},
		Action:    action,
	})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
