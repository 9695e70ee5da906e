package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage persists delivery jobs across the scheduled, queued, processing
// and terminal sets. Implementations must make ClaimNext an atomic move
// from the active queue into the processing set so that at most one worker
// ever holds a given job, even across process boundaries.
type Storage interface {
	// CreateJob stores a new job. Jobs due in the future land in the
	// scheduled set; everything else goes straight onto the active queue.
	CreateJob(ctx context.Context, job *Job) error

	// PromoteDue moves scheduled jobs whose due time has passed onto the
	// active queue and reclaims processing jobs whose locks have expired.
	// Returns the number of jobs promoted.
	PromoteDue(ctx context.Context) (int, error)

	// ClaimNext atomically moves one job from the active queue into the
	// processing set and locks it for the worker. Returns ErrNoJobToClaim
	// when the active queue is empty.
	ClaimNext(ctx context.Context, workerID uuid.UUID, lockDuration time.Duration) (*Job, error)

	// CompleteJob removes the job from the processing set and records a
	// completion kept for the completed retention window.
	CompleteJob(ctx context.Context, jobID uuid.UUID) error

	// FailJob records a failed attempt. If attempts remain, the job is
	// re-inserted into the scheduled set after an exponential backoff;
	// otherwise it becomes a terminal failure kept for the failed
	// retention window.
	FailJob(ctx context.Context, jobID uuid.UUID, errorMsg string) error

	// DiscardJob archives the job as a terminal failure immediately,
	// regardless of remaining attempts. Used for permanent delivery
	// failures and jobs no sender can handle.
	DiscardJob(ctx context.Context, jobID uuid.UUID, errorMsg string) error

	// GetStatus reports the state of a job, consulting the terminal
	// records first and the active sets as a fallback.
	GetStatus(ctx context.Context, jobID uuid.UUID) (JobStatus, error)

	// Stats returns a snapshot of queue depth per state.
	Stats(ctx context.Context) (Stats, error)
}
