package inmemory

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"sole-ledger/internal/jobs"
)

// DefaultRetention is the number of finished jobs a Store remembers when
// NewStore is given no positive limit.
const DefaultRetention = 1000

// Store is an in-memory implementation of JobStore. Data is lost on restart.
// Scheduled, pending and running jobs are always kept; only the most recent
// finished jobs are, oldest evicted first.
type Store struct {
	mu       sync.RWMutex
	jobs     map[string]*jobs.SendReminderJob
	finished *list.List
	position map[string]*list.Element
	retain   int
}

func NewStore(retain int) *Store {
	if retain <= 0 {
		retain = DefaultRetention
	}
	return &Store{
		jobs:     make(map[string]*jobs.SendReminderJob),
		finished: list.New(),
		position: make(map[string]*list.Element),
		retain:   retain,
	}
}

// SaveJob stores a copy of the job.
func (s *Store) SaveJob(ctx context.Context, job *jobs.SendReminderJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy

	if el, ok := s.position[job.JobID]; ok {
		s.finished.Remove(el)
		delete(s.position, job.JobID)
	}
	if job.Status.Finished() {
		s.position[job.JobID] = s.finished.PushBack(job.JobID)
		s.evict()
	}
	return nil
}

// evict drops the oldest finished jobs beyond the retention limit.
func (s *Store) evict() {
	for s.finished.Len() > s.retain {
		oldest := s.finished.Front()
		id := s.finished.Remove(oldest).(string)
		delete(s.position, id)
		delete(s.jobs, id)
	}
}

func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.SendReminderJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", jobs.ErrJobNotFound, jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

var _ jobs.JobStore = (*Store)(nil)
