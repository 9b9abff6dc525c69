package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sole-ledger/internal/dto"
	"sole-ledger/internal/jobs"
	"sole-ledger/internal/models"
)

type otherJob struct{}

func (otherJob) GetID() string             { return "other" }
func (otherJob) GetType() jobs.JobType     { return "other" }
func (otherJob) GetStatus() jobs.JobStatus { return jobs.JobStatusPending }

func TestReminderCreate_PublishesDedupedJob(t *testing.T) {
	env := newTestEnv(t)

	reminder, err := env.reminderSvc.Create(context.Background(), env.userID, env.entityID, &dto.CreateReminderRequest{
		Type:    "VAT_CHECK",
		DueDate: "2024-06-15T09:00:00+04:00",
		Channel: "EMAIL",
		Payload: map[string]any{"note": "check"},
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 15, 5, 0, 0, 0, time.UTC), reminder.DueDate)
	assert.Equal(t, models.ReminderChannelEmail, reminder.Channel)
	assert.Nil(t, reminder.SentAt)

	require.Len(t, env.publisher.published, 1)
	job := env.publisher.published[0]
	assert.Equal(t, "reminder:"+reminder.ID.String(), job.JobID)
	assert.Equal(t, reminder.ID.String(), job.ReminderID)
	assert.Equal(t, reminder.DueDate, job.RunAt)

	assert.Equal(t, []string{"reminder:create"}, env.audit.actions())
}

func TestReminderCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.reminderSvc.Create(ctx, env.userID, env.entityID, &dto.CreateReminderRequest{
		Type: "X", DueDate: "next week", Channel: "email",
	})
	assert.ErrorIs(t, err, ErrInvalidDueDate)

	_, err = env.reminderSvc.Create(ctx, env.userID, env.entityID, &dto.CreateReminderRequest{
		Type: "X", DueDate: "2024-06-15", Channel: "sms",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = env.reminderSvc.Create(ctx, env.otherUserID, env.entityID, &dto.CreateReminderRequest{
		Type: "X", DueDate: "2024-06-15", Channel: "email",
	})
	assert.ErrorIs(t, err, ErrEntityNotFound)

	assert.Empty(t, env.reminders.items)
	assert.Empty(t, env.publisher.published)
}

func TestReminderDispatch_SendsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sentAt := time.Date(2024, 6, 15, 5, 0, 1, 0, time.UTC)
	env.reminderSvc.now = fixedClock(sentAt)

	reminder, err := env.reminderSvc.Schedule(ctx, env.entityID, models.ReminderTypeRSDeclaration,
		time.Date(2024, 6, 15, 5, 0, 0, 0, time.UTC), models.ReminderChannelEmail, nil)
	require.NoError(t, err)

	require.NoError(t, env.reminderSvc.Dispatch(ctx, reminder.ID))
	require.NoError(t, env.reminderSvc.Dispatch(ctx, reminder.ID))

	assert.Equal(t, []uuid.UUID{reminder.ID}, env.notifier.sent)
	require.NotNil(t, env.reminders.items[0].SentAt)
	assert.Equal(t, sentAt, *env.reminders.items[0].SentAt)
}

func TestReminderDispatch_MissingReminderIsSkipped(t *testing.T) {
	env := newTestEnv(t)
	assert.NoError(t, env.reminderSvc.Dispatch(context.Background(), uuid.New()))
	assert.Empty(t, env.notifier.sent)
}

func TestReminderDispatch_NotifierErrorLeavesUnsent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.notifier.err = errStoreDown

	reminder, err := env.reminderSvc.Schedule(ctx, env.entityID, "X", time.Now(), models.ReminderChannelTelegram, nil)
	require.NoError(t, err)

	err = env.reminderSvc.Dispatch(ctx, reminder.ID)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Nil(t, env.reminders.items[0].SentAt)
}

func TestReminderHandleJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reminder, err := env.reminderSvc.Schedule(ctx, env.entityID, "X", time.Now(), models.ReminderChannelEmail, nil)
	require.NoError(t, err)

	require.NoError(t, env.reminderSvc.HandleJob(ctx, env.publisher.published[0]))
	assert.Equal(t, []uuid.UUID{reminder.ID}, env.notifier.sent)

	// malformed ids are dropped rather than retried forever
	assert.NoError(t, env.reminderSvc.HandleJob(ctx, &jobs.SendReminderJob{JobID: "reminder:bad", ReminderID: "bad"}))

	assert.Error(t, env.reminderSvc.HandleJob(ctx, otherJob{}))
}

func TestReminderSweep_QueuesUnsentWithinHorizon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	env.reminderSvc.now = fixedClock(now)

	overdue, err := env.reminderSvc.Schedule(ctx, env.entityID, "X", now.Add(-48*time.Hour), models.ReminderChannelEmail, nil)
	require.NoError(t, err)
	soon, err := env.reminderSvc.Schedule(ctx, env.entityID, "X", now.Add(6*24*time.Hour), models.ReminderChannelEmail, nil)
	require.NoError(t, err)
	_, err = env.reminderSvc.Schedule(ctx, env.entityID, "X", now.Add(8*24*time.Hour), models.ReminderChannelEmail, nil)
	require.NoError(t, err)
	sent, err := env.reminderSvc.Schedule(ctx, env.entityID, "X", now.Add(time.Hour), models.ReminderChannelEmail, nil)
	require.NoError(t, err)
	require.NoError(t, env.reminderSvc.Dispatch(ctx, sent.ID))

	env.publisher.published = nil
	queued, err := env.reminderSvc.SweepUpcoming(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, queued)

	var ids []string
	for _, job := range env.publisher.published {
		ids = append(ids, job.ReminderID)
	}
	assert.ElementsMatch(t, []string{overdue.ID.String(), soon.ID.String()}, ids)
}

func TestReminderSweep_PublishFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.reminderSvc.Schedule(ctx, env.entityID, "X", time.Now(), models.ReminderChannelEmail, nil)
	require.NoError(t, err)

	env.publisher.err = errStoreDown
	queued, err := env.reminderSvc.SweepUpcoming(ctx)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 0, queued)
}

func TestReminderList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.reminderSvc.Schedule(ctx, env.entityID, "X", time.Now(), models.ReminderChannelEmail, nil)
	require.NoError(t, err)

	reminders, err := env.reminderSvc.List(ctx, env.userID, env.entityID)
	require.NoError(t, err)
	assert.Len(t, reminders, 1)
	assert.Nil(t, reminders[0].Delivery)

	_, err = env.reminderSvc.List(ctx, env.otherUserID, env.entityID)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestReminderList_IncludesDeliveryState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sent, err := env.reminderSvc.Schedule(ctx, env.entityID, "X", time.Now(), models.ReminderChannelEmail, nil)
	require.NoError(t, err)
	failing, err := env.reminderSvc.Schedule(ctx, env.entityID, "Y", time.Now(), models.ReminderChannelTelegram, nil)
	require.NoError(t, err)

	completedAt := time.Date(2024, 4, 15, 5, 0, 0, 0, time.UTC)
	require.NoError(t, env.jobStore.SaveJob(ctx, &jobs.SendReminderJob{
		JobID: jobs.ReminderJobID(sent.ID.String()), ReminderID: sent.ID.String(),
		Status: jobs.JobStatusCompleted, CompletedAt: &completedAt,
	}))
	require.NoError(t, env.jobStore.SaveJob(ctx, &jobs.SendReminderJob{
		JobID: jobs.ReminderJobID(failing.ID.String()), ReminderID: failing.ID.String(),
		Status: jobs.JobStatusRetrying, RetryCount: 2, Error: "smtp unavailable",
	}))

	reminders, err := env.reminderSvc.List(ctx, env.userID, env.entityID)
	require.NoError(t, err)
	require.Len(t, reminders, 2)

	byID := map[string]*dto.ReminderDelivery{}
	for _, r := range reminders {
		byID[r.ID] = r.Delivery
	}

	require.NotNil(t, byID[sent.ID.String()])
	assert.Equal(t, "completed", byID[sent.ID.String()].Status)
	require.NotNil(t, byID[sent.ID.String()].CompletedAt)
	assert.Equal(t, "2024-04-15T05:00:00Z", *byID[sent.ID.String()].CompletedAt)

	require.NotNil(t, byID[failing.ID.String()])
	assert.Equal(t, "retrying", byID[failing.ID.String()].Status)
	assert.Equal(t, 2, byID[failing.ID.String()].Retries)
	assert.Equal(t, "smtp unavailable", byID[failing.ID.String()].Error)
}

func TestReminderList_JobStoreErrorOmitsDelivery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.reminderSvc.Schedule(ctx, env.entityID, "X", time.Now(), models.ReminderChannelEmail, nil)
	require.NoError(t, err)
	env.jobStore.err = errStoreDown

	reminders, err := env.reminderSvc.List(ctx, env.userID, env.entityID)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Nil(t, reminders[0].Delivery)
}
