package repository

import (
	"context"
	"fmt"
	"time"

	"sole-ledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// insertChunkSize keeps one INSERT well below the 65535 bind parameter limit.
const insertChunkSize = 1000

var bankTransactionColumns = []string{
	"id", "entity_id", "date", "amount", "currency", "description", "counterparty",
	"category_id", "linked_invoice_id", "raw", "created_at", "updated_at",
}

// selectBankTransactions reads transactions with the joined category name.
func selectBankTransactions() squirrel.SelectBuilder {
	return squirrel.Select(
		"t.id", "t.entity_id", "t.date", "t.amount", "t.currency", "t.description", "t.counterparty",
		"t.category_id", "t.linked_invoice_id", "t.raw", "t.created_at", "t.updated_at", "c.name",
	).
		From("bank_transactions t").
		LeftJoin("categories c ON c.id = t.category_id").
		PlaceholderFormat(squirrel.Dollar)
}

func scanBankTransaction(row pgx.Row) (*models.BankTransaction, error) {
	var tx models.BankTransaction
	err := row.Scan(
		&tx.ID, &tx.EntityID, &tx.Date, &tx.Amount, &tx.Currency, &tx.Description, &tx.Counterparty,
		&tx.CategoryID, &tx.LinkedInvoiceID, &tx.Raw, &tx.CreatedAt, &tx.UpdatedAt, &tx.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

type BankTransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBankTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *BankTransactionRepository {
	return &BankTransactionRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts every transaction inside one database transaction.
// Large imports are split into several multi-row INSERTs.
func (r *BankTransactionRepository) CreateBatch(ctx context.Context, txs []models.BankTransaction) (int64, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = dbTx.Rollback(ctx) }()

	var inserted int64
	for start := 0; start < len(txs); start += insertChunkSize {
		end := min(start+insertChunkSize, len(txs))

		builder := squirrel.Insert("bank_transactions").
			Columns(bankTransactionColumns...).
			PlaceholderFormat(squirrel.Dollar)
		for _, tx := range txs[start:end] {
			builder = builder.Values(
				tx.ID, tx.EntityID, tx.Date, tx.Amount, tx.Currency, tx.Description, tx.Counterparty,
				tx.CategoryID, tx.LinkedInvoiceID, tx.Raw, tx.CreatedAt, tx.UpdatedAt,
			)
		}

		sql, args, err := builder.ToSql()
		if err != nil {
			return 0, err
		}
		tag, err := dbTx.Exec(ctx, sql, args...)
		if err != nil {
			return 0, translate(err)
		}
		inserted += tag.RowsAffected()
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	r.logger.Debug("Inserted bank transactions", zap.Int64("rows", inserted))
	return inserted, nil
}

func (r *BankTransactionRepository) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.BankTransaction, error) {
	return r.list(ctx, selectBankTransactions().
		Where(squirrel.Eq{"t.entity_id": entityID}).
		OrderBy("t.date DESC", "t.created_at DESC"))
}

func (r *BankTransactionRepository) ListInRange(ctx context.Context, entityID uuid.UUID, from, to time.Time) ([]models.BankTransaction, error) {
	return r.list(ctx, selectBankTransactions().
		Where(squirrel.Eq{"t.entity_id": entityID}).
		Where(squirrel.GtOrEq{"t.date": from}).
		Where(squirrel.Lt{"t.date": to}).
		OrderBy("t.date ASC", "t.created_at ASC"))
}

func (r *BankTransactionRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]models.BankTransaction, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.BankTransaction, 0)
	for rows.Next() {
		tx, err := scanBankTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}

	return transactions, rows.Err()
}

// GetForUser loads a transaction only if its entity belongs to userID.
func (r *BankTransactionRepository) GetForUser(ctx context.Context, userID, txID uuid.UUID) (*models.BankTransaction, error) {
	query := selectBankTransactions().
		Join("entities e ON e.id = t.entity_id").
		Where(squirrel.Eq{"t.id": txID, "e.user_id": userID})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return scanBankTransaction(r.db.QueryRow(ctx, sql, args...))
}

func (r *BankTransactionRepository) UpdateLinks(ctx context.Context, txID uuid.UUID, categoryID, linkedInvoiceID *uuid.UUID) (*models.BankTransaction, error) {
	query := squirrel.Update("bank_transactions").
		Set("category_id", categoryID).
		Set("linked_invoice_id", linkedInvoiceID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": txID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	sql, args, err = selectBankTransactions().Where(squirrel.Eq{"t.id": txID}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanBankTransaction(r.db.QueryRow(ctx, sql, args...))
}
