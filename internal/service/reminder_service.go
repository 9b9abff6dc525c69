package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/jobs"
	"sole-ledger/internal/models"
)

// SweepHorizon is how far ahead SweepUpcoming looks for unsent reminders.
const SweepHorizon = 7 * 24 * time.Hour

// Notifier delivers a reminder to its recipient.
type Notifier interface {
	Notify(ctx context.Context, recipient *models.ReminderRecipient) error
}

// LogNotifier records the delivery as a structured log line. It stands in
// for email and Telegram senders.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, recipient *models.ReminderRecipient) error {
	target := recipient.UserEmail
	if recipient.Channel == models.ReminderChannelTelegram {
		target = "Telegram"
	}
	n.logger.Info("Dispatching reminder",
		zap.String("reminder_id", recipient.ID.String()),
		zap.String("type", recipient.Type),
		zap.String("channel", string(recipient.Channel)),
		zap.String("target", target),
		zap.Time("due_date", recipient.DueDate))
	return nil
}

type ReminderService struct {
	reminderRepo ReminderStore
	entityRepo   EntityStore
	publisher    jobs.Publisher
	jobStore     jobs.JobStore
	notifier     Notifier
	audit        *AuditService
	logger       *zap.Logger
	now          func() time.Time
}

func NewReminderService(
	reminderRepo ReminderStore,
	entityRepo EntityStore,
	publisher jobs.Publisher,
	jobStore jobs.JobStore,
	notifier Notifier,
	audit *AuditService,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		entityRepo:   entityRepo,
		publisher:    publisher,
		jobStore:     jobStore,
		notifier:     notifier,
		audit:        audit,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *ReminderService) Create(ctx context.Context, userID, entityID uuid.UUID, req *dto.CreateReminderRequest) (*models.Reminder, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}

	dueDate, err := parseInstant(req.DueDate)
	if err != nil {
		return nil, ErrInvalidDueDate
	}
	channel := models.ReminderChannel(strings.ToLower(strings.TrimSpace(req.Channel)))
	if !channel.Valid() || strings.TrimSpace(req.Type) == "" {
		return nil, ErrInvalidRequest
	}

	reminder, err := s.Schedule(ctx, entityID, strings.TrimSpace(req.Type), dueDate, channel, req.Payload)
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, userID, entityID, "reminder:create", map[string]any{
		"reminderId": reminder.ID.String(),
		"dueDate":    reminder.DueDate.Format(time.RFC3339),
		"channel":    string(reminder.Channel),
	})

	return reminder, nil
}

// List returns the entity's reminders with the state of their delivery job
// where the job store still holds it.
func (s *ReminderService) List(ctx context.Context, userID, entityID uuid.UUID) ([]dto.ReminderResponse, error) {
	if _, err := ownedEntity(ctx, s.entityRepo, userID, entityID); err != nil {
		return nil, err
	}
	reminders, err := s.reminderRepo.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReminderResponse, 0, len(reminders))
	for _, reminder := range reminders {
		resp := dto.NewReminderResponse(reminder)
		resp.Delivery = s.delivery(ctx, reminder.ID)
		out = append(out, resp)
	}
	return out, nil
}

func (s *ReminderService) delivery(ctx context.Context, reminderID uuid.UUID) *dto.ReminderDelivery {
	if s.jobStore == nil {
		return nil
	}
	job, err := s.jobStore.GetJob(ctx, jobs.ReminderJobID(reminderID.String()))
	if err != nil {
		if !errors.Is(err, jobs.ErrJobNotFound) {
			s.logger.Warn("Failed to read delivery job",
				zap.String("reminder_id", reminderID.String()),
				zap.Error(err))
		}
		return nil
	}
	return dto.NewReminderDelivery(job)
}

// Schedule stores a reminder and queues its delivery for the due date. It
// performs no ownership check and is meant for internal callers. A failure
// to queue is logged only; the sweep picks the reminder up later.
func (s *ReminderService) Schedule(ctx context.Context, entityID uuid.UUID, reminderType string, dueDate time.Time, channel models.ReminderChannel, payload map[string]any) (*models.Reminder, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	reminder := &models.Reminder{
		ID:        uuid.New(),
		EntityID:  entityID,
		Type:      reminderType,
		DueDate:   dueDate.UTC(),
		Channel:   channel,
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	}
	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}

	if err := s.enqueue(ctx, reminder); err != nil {
		s.logger.Warn("Failed to queue reminder",
			zap.String("reminder_id", reminder.ID.String()),
			zap.Error(err))
	}
	return reminder, nil
}

func (s *ReminderService) enqueue(ctx context.Context, reminder *models.Reminder) error {
	id := reminder.ID.String()
	return s.publisher.PublishSendReminder(ctx, &jobs.SendReminderJob{
		JobID:      jobs.ReminderJobID(id),
		ReminderID: id,
		RunAt:      reminder.DueDate,
	})
}

// HandleJob is the queue consumer entry point.
func (s *ReminderService) HandleJob(ctx context.Context, job jobs.Job) error {
	sendJob, ok := job.(*jobs.SendReminderJob)
	if !ok {
		return fmt.Errorf("unexpected job type %s", job.GetType())
	}
	reminderID, err := uuid.Parse(sendJob.ReminderID)
	if err != nil {
		s.logger.Warn("Dropping job with malformed reminder id", zap.String("job_id", sendJob.JobID))
		return nil
	}
	return s.Dispatch(ctx, reminderID)
}

// Dispatch delivers a reminder once. Missing and already sent reminders are
// skipped without error.
func (s *ReminderService) Dispatch(ctx context.Context, reminderID uuid.UUID) error {
	recipient, err := s.reminderRepo.GetRecipient(ctx, reminderID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("load reminder: %w", err)
	}
	if recipient.SentAt != nil {
		return nil
	}

	if err := s.notifier.Notify(ctx, recipient); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if err := s.reminderRepo.MarkSent(ctx, reminderID, s.now().UTC()); err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}

// SweepUpcoming re-queues every unsent reminder due within SweepHorizon,
// including overdue ones lost from the queue by a restart. Queue dedup makes
// repeated sweeps harmless.
func (s *ReminderService) SweepUpcoming(ctx context.Context) (int, error) {
	reminders, err := s.reminderRepo.ListUnsentDueBefore(ctx, s.now().Add(SweepHorizon))
	if err != nil {
		return 0, fmt.Errorf("list upcoming reminders: %w", err)
	}

	queued := 0
	for i := range reminders {
		if err := s.enqueue(ctx, &reminders[i]); err != nil {
			return queued, fmt.Errorf("queue reminder %s: %w", reminders[i].ID, err)
		}
		queued++
	}

	if queued > 0 {
		s.logger.Info("Queued upcoming reminders", zap.Int("count", queued))
	}
	return queued, nil
}
