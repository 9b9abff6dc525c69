package repository

import (
	"context"
	"time"

	"sole-ledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var reminderColumns = []string{"id", "entity_id", "type", "due_date", "channel", "payload", "sent_at", "created_at"}

type ReminderRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReminderRepository(db *pgxpool.Pool, logger *zap.Logger) *ReminderRepository {
	return &ReminderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	query := squirrel.Insert("reminders").
		Columns(reminderColumns...).
		Values(reminder.ID, reminder.EntityID, reminder.Type, reminder.DueDate, reminder.Channel,
			reminder.Payload, reminder.SentAt, reminder.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ReminderRepository) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Reminder, error) {
	return r.list(ctx, squirrel.Select(reminderColumns...).
		From("reminders").
		Where(squirrel.Eq{"entity_id": entityID}).
		OrderBy("due_date ASC"))
}

func (r *ReminderRepository) ListUnsentDueBefore(ctx context.Context, t time.Time) ([]models.Reminder, error) {
	return r.list(ctx, squirrel.Select(reminderColumns...).
		From("reminders").
		Where(squirrel.Eq{"sent_at": nil}).
		Where(squirrel.LtOrEq{"due_date": t}).
		OrderBy("due_date ASC"))
}

func (r *ReminderRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]models.Reminder, error) {
	sql, args, err := query.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]models.Reminder, 0)
	for rows.Next() {
		var rem models.Reminder
		if err := rows.Scan(&rem.ID, &rem.EntityID, &rem.Type, &rem.DueDate, &rem.Channel,
			&rem.Payload, &rem.SentAt, &rem.CreatedAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// GetRecipient loads a reminder together with its owner's email address.
func (r *ReminderRepository) GetRecipient(ctx context.Context, reminderID uuid.UUID) (*models.ReminderRecipient, error) {
	query := squirrel.Select(append(qualified("r", reminderColumns), "u.email")...).
		From("reminders r").
		Join("entities e ON e.id = r.entity_id").
		Join("users u ON u.id = e.user_id").
		Where(squirrel.Eq{"r.id": reminderID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var rec models.ReminderRecipient
	err = r.db.QueryRow(ctx, sql, args...).Scan(&rec.ID, &rec.EntityID, &rec.Type, &rec.DueDate,
		&rec.Channel, &rec.Payload, &rec.SentAt, &rec.CreatedAt, &rec.UserEmail)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkSent stamps sent_at once; a reminder already sent is left untouched.
func (r *ReminderRepository) MarkSent(ctx context.Context, reminderID uuid.UUID, sentAt time.Time) error {
	query := squirrel.Update("reminders").
		Set("sent_at", sentAt).
		Where(squirrel.Eq{"id": reminderID, "sent_at": nil}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug("Reminder already sent or gone", zap.String("reminder_id", reminderID.String()))
	}
	return nil
}

