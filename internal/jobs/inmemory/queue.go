package inmemory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sole-ledger/internal/jobs"
)

// ErrQueueClosed is returned by Publish and Start after Stop.
var ErrQueueClosed = errors.New("queue is closed")

// Options configures a Queue. Zero values fall back to defaults.
type Options struct {
	BufferSize int
	Workers    int
	MaxRetries int
	// NewBackOff builds the retry delay policy for one job.
	NewBackOff func() backoff.BackOff
	Logger     *zap.Logger
}

func (o *Options) applyDefaults() {
	if o.BufferSize <= 0 {
		o.BufferSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.NewBackOff == nil {
		o.NewBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxElapsedTime = 0
			return b
		}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Queue is an in-memory delayed job queue. Jobs whose RunAt lies in the
// future wait on a timer before they are handed to the workers. A job id
// stays reserved from publish until the job completes or finally fails, so
// re-publishing the same id in between is ignored.
// Single-instance only: scheduled jobs are lost on restart and are
// re-created by the reminder sweep.
type Queue struct {
	opts      Options
	jobChan   chan *jobs.SendReminderJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	store     jobs.JobStore

	mu       sync.Mutex
	closed   bool
	active   map[string]struct{}
	timers   map[string]*time.Timer
	backoffs map[string]backoff.BackOff
}

// NewQueue creates a new in-memory job queue. store may be nil.
func NewQueue(opts Options, store jobs.JobStore) *Queue {
	opts.applyDefaults()
	return &Queue{
		opts:      opts,
		jobChan:   make(chan *jobs.SendReminderJob, opts.BufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		active:    make(map[string]struct{}),
		timers:    make(map[string]*time.Timer),
		backoffs:  make(map[string]backoff.BackOff),
	}
}

// PublishSendReminder implements jobs.Publisher.
func (q *Queue) PublishSendReminder(ctx context.Context, job *jobs.SendReminderJob) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if _, dup := q.active[job.JobID]; dup {
		q.mu.Unlock()
		return nil
	}
	q.active[job.JobID] = struct{}{}
	q.mu.Unlock()

	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = q.opts.MaxRetries
	}

	if delay := time.Until(job.RunAt); delay > 0 {
		job.Status = jobs.JobStatusScheduled
		q.save(ctx, job)
		q.schedule(job, delay)
		return nil
	}

	job.Status = jobs.JobStatusPending
	q.save(ctx, job)
	if err := q.enqueue(ctx, job); err != nil {
		q.release(job.JobID)
		return err
	}
	return nil
}

func (q *Queue) enqueue(ctx context.Context, job *jobs.SendReminderJob) error {
	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return ErrQueueClosed
	}
}

func (q *Queue) schedule(job *jobs.SendReminderJob, delay time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}

	q.timers[job.JobID] = time.AfterFunc(delay, func() {
		q.mu.Lock()
		delete(q.timers, job.JobID)
		q.mu.Unlock()

		job.Status = jobs.JobStatusPending
		job.StartedAt = nil
		job.CompletedAt = nil
		if err := q.enqueue(context.Background(), job); err != nil {
			q.release(job.JobID)
		}
	})
}

// Start implements jobs.Consumer. It launches the configured number of
// workers and returns immediately.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return ErrQueueClosed
	}

	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			q.processJob(ctx, job, handler)
		}
	}
}

func (q *Queue) processJob(ctx context.Context, job *jobs.SendReminderJob, handler jobs.JobHandler) {
	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	q.save(ctx, job)

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err == nil {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		q.release(job.JobID)
		q.save(ctx, job)
		return
	}

	job.Error = err.Error()
	delay := q.nextBackOff(job.JobID)
	if job.RetryCount >= job.MaxRetries || delay == backoff.Stop {
		job.Status = jobs.JobStatusFailed
		q.release(job.JobID)
		q.save(ctx, job)
		q.opts.Logger.Error("Job failed",
			zap.String("job_id", job.JobID),
			zap.Int("retries", job.RetryCount),
			zap.Error(err))
		return
	}

	job.RetryCount++
	job.Status = jobs.JobStatusRetrying
	q.save(ctx, job)
	q.opts.Logger.Warn("Job failed, retrying",
		zap.String("job_id", job.JobID),
		zap.Int("attempt", job.RetryCount),
		zap.Duration("delay", delay),
		zap.Error(err))
	q.schedule(job, delay)
}

func (q *Queue) nextBackOff(jobID string) time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()

	b, ok := q.backoffs[jobID]
	if !ok {
		b = q.opts.NewBackOff()
		q.backoffs[jobID] = b
	}
	return b.NextBackOff()
}

func (q *Queue) release(jobID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.active, jobID)
	delete(q.backoffs, jobID)
}

func (q *Queue) save(ctx context.Context, job *jobs.SendReminderJob) {
	if q.store == nil {
		return
	}
	if err := q.store.SaveJob(ctx, job); err != nil {
		q.opts.Logger.Warn("Failed to save job state", zap.String("job_id", job.JobID), zap.Error(err))
	}
}

// Stop implements jobs.Consumer. Scheduled timers are cancelled and
// in-flight jobs are awaited until ctx expires.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements jobs.Publisher.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
