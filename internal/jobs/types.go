package jobs

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned by JobStore.GetJob for unknown or evicted jobs.
var ErrJobNotFound = errors.New("job not found")

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeSendReminder delivers one stored reminder.
	JobTypeSendReminder JobType = "send_reminder"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// SendReminderJob asks a worker to dispatch a reminder once RunAt has passed.
type SendReminderJob struct {
	// JobID doubles as the dedup key; reminders use "reminder:<id>".
	JobID      string `json:"job_id"`
	ReminderID string `json:"reminder_id"`

	// RunAt is the earliest time the job may run. Zero means immediately.
	RunAt time.Time `json:"run_at"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
}

// ReminderJobID is the job id used for a reminder, so that repeated
// scheduling of the same reminder collapses into one job.
func ReminderJobID(reminderID string) string {
	return "reminder:" + reminderID
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *SendReminderJob) GetID() string {
	return j.JobID
}

func (j *SendReminderJob) GetType() JobType {
	return JobTypeSendReminder
}

func (j *SendReminderJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher enqueues jobs.
type Publisher interface {
	// PublishSendReminder enqueues a reminder job. Publishing a job whose id
	// is already scheduled or queued is a no-op.
	PublishSendReminder(ctx context.Context, job *SendReminderJob) error

	Close() error
}

// Consumer runs handlers for queued jobs.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A non-nil error makes the job eligible for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore keeps recent job state so delivery progress can be reported.
// Implementations may forget finished jobs.
type JobStore interface {
	SaveJob(ctx context.Context, job *SendReminderJob) error
	GetJob(ctx context.Context, jobID string) (*SendReminderJob, error)
}

// Finished reports whether the job will not run again unless republished.
func (s JobStatus) Finished() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
