package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// archivedJob is a terminal record kept around for status lookups.
type archivedJob struct {
	status    JobStatus
	expiresAt time.Time
}

// MemoryStorage is an in-memory Storage implementation for development and
// testing. Terminal records honor the same retention windows as the
// Redis-backed storage; expired archives and dead worker locks are swept by
// a background goroutine.
type MemoryStorage struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*Job

	// Active sets, each holding job ids. queued preserves claim order.
	queued    []uuid.UUID
	scheduled map[uuid.UUID]struct{}

	// Terminal records.
	completed map[uuid.UUID]archivedJob
	failed    map[uuid.UUID]archivedJob

	baseDelay          time.Duration
	completedRetention time.Duration
	failedRetention    time.Duration

	sweepTicker *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

// MemoryStorageOption configures a MemoryStorage.
type MemoryStorageOption func(*MemoryStorage)

// WithBaseDelay sets the base for the exponential retry backoff.
func WithBaseDelay(d time.Duration) MemoryStorageOption {
	return func(s *MemoryStorage) {
		if d > 0 {
			s.baseDelay = d
		}
	}
}

// WithRetention sets how long terminal completion and failure records are
// kept for status lookups.
func WithRetention(completed, failed time.Duration) MemoryStorageOption {
	return func(s *MemoryStorage) {
		if completed > 0 {
			s.completedRetention = completed
		}
		if failed > 0 {
			s.failedRetention = failed
		}
	}
}

// NewMemoryStorage creates an in-memory job storage. Call Close to stop its
// background sweeper.
func NewMemoryStorage(opts ...MemoryStorageOption) *MemoryStorage {
	s := &MemoryStorage{
		jobs:               make(map[uuid.UUID]*Job),
		scheduled:          make(map[uuid.UUID]struct{}),
		completed:          make(map[uuid.UUID]archivedJob),
		failed:             make(map[uuid.UUID]archivedJob),
		baseDelay:          DefaultBaseDelay,
		completedRetention: DefaultCompletedRetention,
		failedRetention:    DefaultFailedRetention,
		done:               make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.sweepTicker = time.NewTicker(time.Second)
	go s.sweepLoop()

	return s
}

// Close stops the background sweeper.
func (s *MemoryStorage) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.sweepTicker.Stop()
	})
	return nil
}

func (s *MemoryStorage) CreateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("queue: job cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("queue: job %s already exists", job.ID)
	}

	jobCopy := *job
	s.jobs[job.ID] = &jobCopy

	if jobCopy.ScheduledAt.After(time.Now()) {
		jobCopy.Status = StatusScheduled
		s.scheduled[job.ID] = struct{}{}
	} else {
		jobCopy.Status = StatusQueued
		s.queued = append(s.queued, job.ID)
	}
	return nil
}

func (s *MemoryStorage) PromoteDue(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promoteDueLocked(time.Now()), nil
}

func (s *MemoryStorage) promoteDueLocked(now time.Time) int {
	promoted := 0
	for id := range s.scheduled {
		job := s.jobs[id]
		if job.ScheduledAt.After(now) {
			continue
		}
		delete(s.scheduled, id)
		job.Status = StatusQueued
		s.queued = append(s.queued, id)
		promoted++
	}

	// Reclaim jobs abandoned by dead workers.
	for id, job := range s.jobs {
		if job.Status != StatusProcessing {
			continue
		}
		if job.LockedUntil != nil && job.LockedUntil.Before(now) {
			job.Status = StatusQueued
			job.LockedUntil = nil
			job.LockedBy = nil
			s.queued = append(s.queued, id)
		}
	}
	return promoted
}

func (s *MemoryStorage) ClaimNext(ctx context.Context, workerID uuid.UUID, lockDuration time.Duration) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queued) == 0 {
		return nil, ErrNoJobToClaim
	}

	// Pop from the head; the move to processing happens under the same
	// lock, so no two workers can claim the same job.
	id := s.queued[0]
	s.queued = s.queued[1:]

	job := s.jobs[id]
	lockUntil := time.Now().Add(lockDuration)
	job.Status = StatusProcessing
	job.LockedUntil = &lockUntil
	job.LockedBy = &workerID

	jobCopy := *job
	return &jobCopy, nil
}

func (s *MemoryStorage) CompleteJob(ctx context.Context, jobID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return ErrJobNotFound
	}
	if job.Status != StatusProcessing {
		return fmt.Errorf("queue: job %s is not processing", jobID)
	}

	s.completed[jobID] = archivedJob{
		status:    JobStatus{Status: StatusCompleted, Attempts: job.Attempts + 1},
		expiresAt: time.Now().Add(s.completedRetention),
	}
	delete(s.jobs, jobID)
	return nil
}

func (s *MemoryStorage) FailJob(ctx context.Context, jobID uuid.UUID, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return ErrJobNotFound
	}
	if job.Status != StatusProcessing {
		return fmt.Errorf("queue: job %s is not processing", jobID)
	}

	job.Attempts++
	job.LastError = errorMsg
	job.LockedUntil = nil
	job.LockedBy = nil

	if job.Attempts >= job.MaxAttempts {
		s.archiveFailedLocked(job)
		return nil
	}

	// Delayed re-insertion: the job waits out its backoff in the scheduled
	// set instead of blocking a worker.
	job.Status = StatusScheduled
	job.ScheduledAt = time.Now().Add(Backoff(s.baseDelay, job.Attempts))
	s.scheduled[jobID] = struct{}{}
	return nil
}

func (s *MemoryStorage) DiscardJob(ctx context.Context, jobID uuid.UUID, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return ErrJobNotFound
	}

	job.Attempts++
	job.LastError = errorMsg
	s.removeFromActiveSetsLocked(jobID, job.Status)
	s.archiveFailedLocked(job)
	return nil
}

func (s *MemoryStorage) archiveFailedLocked(job *Job) {
	s.failed[job.ID] = archivedJob{
		status: JobStatus{
			Status:    StatusFailed,
			Attempts:  job.Attempts,
			LastError: job.LastError,
		},
		expiresAt: time.Now().Add(s.failedRetention),
	}
	delete(s.jobs, job.ID)
}

func (s *MemoryStorage) removeFromActiveSetsLocked(jobID uuid.UUID, status Status) {
	switch status {
	case StatusQueued:
		s.queued = slices.DeleteFunc(s.queued, func(id uuid.UUID) bool { return id == jobID })
	case StatusScheduled:
		delete(s.scheduled, jobID)
	}
}

func (s *MemoryStorage) GetStatus(ctx context.Context, jobID uuid.UUID) (JobStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.completed[jobID]; ok {
		return rec.status, nil
	}
	if rec, ok := s.failed[jobID]; ok {
		return rec.status, nil
	}
	if job, ok := s.jobs[jobID]; ok {
		return JobStatus{Status: externalStatus(job.Status), Attempts: job.Attempts, LastError: job.LastError}, nil
	}
	return JobStatus{}, ErrJobNotFound
}

func (s *MemoryStorage) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		Queued:    len(s.queued),
		Scheduled: len(s.scheduled),
		Failed:    len(s.failed),
	}
	for _, job := range s.jobs {
		if job.Status == StatusProcessing {
			stats.Processing++
		}
	}
	return stats, nil
}

func (s *MemoryStorage) sweepLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.sweepTicker.C:
			s.sweep()
		}
	}
}

// sweep reclaims expired worker locks and drops terminal records past their
// retention window.
func (s *MemoryStorage) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, job := range s.jobs {
		if job.Status == StatusProcessing && job.LockedUntil != nil && job.LockedUntil.Before(now) {
			job.Status = StatusQueued
			job.LockedUntil = nil
			job.LockedBy = nil
			s.queued = append(s.queued, id)
		}
	}
	for id, rec := range s.completed {
		if rec.expiresAt.Before(now) {
			delete(s.completed, id)
		}
	}
	for id, rec := range s.failed {
		if rec.expiresAt.Before(now) {
			delete(s.failed, id)
		}
	}
}
