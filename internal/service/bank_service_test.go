package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sole-ledger/internal/bankimport"
	"sole-ledger/internal/dto"
	"sole-ledger/internal/models"
)

const bogCSV = "Date,Amount,Currency,Description,Counterparty\n" +
	"2024-01-05,120.50,GEL,Uber trip,Uber BV\n" +
	"2024-01-06,-35.005,gel,Adobe subscription,Adobe\n" +
	"2024-01-07,0,GEL,Zero row,\n" +
	"not-a-date,10,GEL,Broken row,\n"

const tbcCSV = "TxnDate,Debit,Credit,Details,Account\n" +
	"07.03.2024,50,,Office rent,Vendor X\n" +
	"08.03.2024,,200,Client payment,ACME\n"

func TestBankImport_BOGCategorizesAndStores(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	transport := env.addCategory(env.entityID, "Transport")
	software := env.addCategory(env.entityID, "Software")
	env.addRule(env.entityID, 1, []string{"uber"}, models.RuleAction{SetCategoryID: transport.String()})
	env.addRule(env.entityID, 2, []string{"adobe"}, models.RuleAction{SetCategoryByName: "software"})

	resp, err := env.bankSvc.Import(ctx, env.userID, env.entityID, &dto.ImportRequest{Bank: "bog"}, []byte(bogCSV))
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Imported)

	require.Len(t, env.transactions.items, 2)
	uber, adobe := env.transactions.items[0], env.transactions.items[1]

	assert.True(t, uber.Amount.Equal(decimal.RequireFromString("120.50")))
	require.NotNil(t, uber.CategoryID)
	assert.Equal(t, transport, *uber.CategoryID)
	assert.Equal(t, env.entityID, uber.EntityID)

	assert.True(t, adobe.Amount.Equal(decimal.RequireFromString("-35.01")))
	assert.Equal(t, "GEL", adobe.Currency)
	require.NotNil(t, adobe.CategoryID)
	assert.Equal(t, software, *adobe.CategoryID)

	assert.Equal(t, []string{"bank:import"}, env.audit.actions())
	assert.Equal(t, int64(2), env.audit.entries[0].Details["transactions"])
}

func TestBankImport_LoadsRulesAndCategoriesOnce(t *testing.T) {
	env := newTestEnv(t)
	software := env.addCategory(env.entityID, "Software")
	env.addRule(env.entityID, 1, []string{"adobe"}, models.RuleAction{SetCategoryID: software.String()})
	env.addRule(env.entityID, 2, []string{"uber"}, models.RuleAction{SetCategoryByName: "software"})

	data := "Date,Amount,Description\n" +
		"2024-01-05,-10,Adobe CC\n" +
		"2024-01-06,-11,Uber trip\n" +
		"2024-01-07,-12,Adobe Stock\n" +
		"2024-01-08,40,Refund\n"

	resp, err := env.bankSvc.Import(context.Background(), env.userID, env.entityID, &dto.ImportRequest{Bank: "BOG"}, []byte(data))
	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.Imported)

	assert.Equal(t, 1, env.rules.listCalls)
	assert.Equal(t, 1, env.categories.listCalls)
}

func TestBankImport_InvalidCurrencyAndNULRows(t *testing.T) {
	env := newTestEnv(t)
	data := "Date,Amount,Currency,Description,Counterparty\n" +
		"2024-01-05,10,US Dollar,Skipped,\n" +
		"1/6/2024,20,usd,pay\x00ment,ACME\n"

	resp, err := env.bankSvc.Import(context.Background(), env.userID, env.entityID, &dto.ImportRequest{Bank: "BOG"}, []byte(data))
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Imported)

	require.Len(t, env.transactions.items, 1)
	tx := env.transactions.items[0]
	assert.Equal(t, "USD", tx.Currency)
	assert.Equal(t, "payment", tx.Description)
	assert.Equal(t, "2024-01-06", tx.Date.Format("2006-01-02"))
}

func TestBankImport_TBCPreset(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.bankSvc.Import(context.Background(), env.userID, env.entityID,
		&dto.ImportRequest{Bank: "TBC"}, []byte(tbcCSV))
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Imported)

	rent := env.transactions.items[0]
	assert.True(t, rent.Amount.Equal(decimal.RequireFromString("-50")))
	assert.Equal(t, "GEL", rent.Currency)
	require.NotNil(t, rent.Counterparty)
	assert.Equal(t, "Vendor X", *rent.Counterparty)
	assert.Nil(t, rent.CategoryID)

	assert.True(t, env.transactions.items[1].Amount.Equal(decimal.RequireFromString("200")))
}

func TestBankImport_ExplicitMappingForUnknownBank(t *testing.T) {
	env := newTestEnv(t)
	data := "When,Sum,What\n2024-02-01,15.25,Coffee\n"

	resp, err := env.bankSvc.Import(context.Background(), env.userID, env.entityID, &dto.ImportRequest{
		Bank:    "LIBERTY",
		Mapping: &bankimport.Mapping{Date: "When", Amount: "Sum", Description: "What"},
	}, []byte(data))
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Imported)
	assert.Equal(t, "Coffee", env.transactions.items[0].Description)
}

func TestBankImport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		bank    string
		file    string
		foreign bool
		want    error
	}{
		{name: "empty file", bank: "BOG", file: "", want: ErrCSVFileRequired},
		{name: "unknown bank without mapping", bank: "OTHER", file: bogCSV, want: ErrMappingRequired},
		{name: "no surviving rows", bank: "BOG", file: "Date,Amount,Description\n2024-01-01,0,Nothing\n", want: ErrNoTransactions},
		{name: "header only", bank: "BOG", file: "Date,Amount,Description\n", want: ErrNoTransactions},
		{name: "malformed csv", bank: "BOG", file: "Date,Amount\n\"2024-01-01,5\n", want: ErrInvalidCSV},
		{name: "foreign entity", bank: "BOG", file: bogCSV, foreign: true, want: ErrEntityNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			entityID := env.entityID
			if tt.foreign {
				entityID = env.otherEntityID
			}

			_, err := env.bankSvc.Import(context.Background(), env.userID, entityID,
				&dto.ImportRequest{Bank: tt.bank}, []byte(tt.file))
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, env.transactions.items)
			assert.Empty(t, env.audit.entries)
		})
	}
}

func TestBankImport_RuleTargetingForeignCategoryLeavesUncategorized(t *testing.T) {
	env := newTestEnv(t)
	foreign := env.addCategory(env.otherEntityID, "Transport")
	env.addRule(env.entityID, 1, []string{"uber"}, models.RuleAction{SetCategoryID: foreign.String()})

	_, err := env.bankSvc.Import(context.Background(), env.userID, env.entityID,
		&dto.ImportRequest{Bank: "BOG"}, []byte(bogCSV))
	require.NoError(t, err)
	assert.Nil(t, env.transactions.items[0].CategoryID)
}

func TestBankImport_BatchFailureStoresNothing(t *testing.T) {
	env := newTestEnv(t)
	env.transactions.batchErr = errStoreDown

	_, err := env.bankSvc.Import(context.Background(), env.userID, env.entityID,
		&dto.ImportRequest{Bank: "BOG"}, []byte(bogCSV))
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, env.transactions.items)
	assert.Empty(t, env.audit.entries)
}

func TestBankImport_AuditFailureDoesNotFailImport(t *testing.T) {
	env := newTestEnv(t)
	env.audit.err = errStoreDown

	resp, err := env.bankSvc.Import(context.Background(), env.userID, env.entityID,
		&dto.ImportRequest{Bank: "BOG"}, []byte(bogCSV))
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Imported)
}

func importOne(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()
	_, err := env.bankSvc.Import(context.Background(), env.userID, env.entityID,
		&dto.ImportRequest{Bank: "TBC"}, []byte(tbcCSV))
	require.NoError(t, err)
	return env.transactions.items[0].ID
}

func strPtr(s string) *string { return &s }

func TestBankUpdate_SetsAndClearsLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	txID := importOne(t, env)
	category := env.addCategory(env.entityID, "Rent")
	invoice, err := env.invoiceSvc.Create(ctx, env.userID, env.entityID, &dto.CreateInvoiceRequest{
		ClientName: "ACME", IssueDate: "2024-03-01", Total: "200",
	})
	require.NoError(t, err)

	updated, err := env.bankSvc.Update(ctx, env.userID, txID, &dto.UpdateTransactionRequest{
		CategoryID:      strPtr(category.String()),
		LinkedInvoiceID: strPtr(invoice.ID.String()),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, category, *updated.CategoryID)
	require.NotNil(t, updated.LinkedInvoiceID)
	assert.Equal(t, invoice.ID, *updated.LinkedInvoiceID)

	// omitted field is kept, empty string clears
	updated, err = env.bankSvc.Update(ctx, env.userID, txID, &dto.UpdateTransactionRequest{
		LinkedInvoiceID: strPtr(""),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, category, *updated.CategoryID)
	assert.Nil(t, updated.LinkedInvoiceID)

	assert.Contains(t, env.audit.actions(), "bank:updateTransaction")
}

func TestBankUpdate_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	txID := importOne(t, env)
	foreignCategory := env.addCategory(env.otherEntityID, "Rent")

	_, err := env.bankSvc.Update(ctx, env.otherUserID, txID, &dto.UpdateTransactionRequest{})
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = env.bankSvc.Update(ctx, env.userID, uuid.New(), &dto.UpdateTransactionRequest{})
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = env.bankSvc.Update(ctx, env.userID, txID, &dto.UpdateTransactionRequest{
		CategoryID: strPtr(foreignCategory.String()),
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = env.bankSvc.Update(ctx, env.userID, txID, &dto.UpdateTransactionRequest{
		CategoryID: strPtr("not-a-uuid"),
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = env.bankSvc.Update(ctx, env.userID, txID, &dto.UpdateTransactionRequest{
		LinkedInvoiceID: strPtr(uuid.NewString()),
	})
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestBankUpdate_InvoiceFromAnotherEntityRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	txID := importOne(t, env)

	secondEntity, err := env.entitySvc.Create(ctx, env.userID, &dto.CreateEntityRequest{
		DisplayName: "Side project", TaxStatus: "STANDARD",
	})
	require.NoError(t, err)
	invoice, err := env.invoiceSvc.Create(ctx, env.userID, secondEntity.ID, &dto.CreateInvoiceRequest{
		ClientName: "ACME", IssueDate: "2024-03-01", Total: "10",
	})
	require.NoError(t, err)

	_, err = env.bankSvc.Update(ctx, env.userID, txID, &dto.UpdateTransactionRequest{
		LinkedInvoiceID: strPtr(invoice.ID.String()),
	})
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestBankList_ScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	importOne(t, env)

	txs, err := env.bankSvc.List(context.Background(), env.userID, env.entityID)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	_, err = env.bankSvc.List(context.Background(), env.otherUserID, env.entityID)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}
