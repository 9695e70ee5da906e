package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Channel names routed through the queue. Senders register under these.
const (
	ChannelEmail = "email"
	ChannelPush  = "push"
)

// Status is the lifecycle state of a delivery job.
type Status string

const (
	// StatusScheduled means the job waits in the time-ordered set for its
	// due timestamp. Retries waiting out their backoff are also scheduled.
	StatusScheduled Status = "scheduled"
	// StatusQueued means the job sits in the active queue ready to be claimed.
	StatusQueued Status = "queued"
	// StatusProcessing means exactly one worker holds the job.
	StatusProcessing Status = "processing"
	// StatusPending is the coarse pre-execution state surfaced by GetStatus.
	// Scheduled and queued are internal distinctions; callers only see that
	// the job has not started yet.
	StatusPending Status = "pending"
	// StatusCompleted is terminal success, retained briefly for lookups.
	StatusCompleted Status = "completed"
	// StatusFailed is terminal failure after exhausting attempts, retained
	// longer for operator inspection.
	StatusFailed Status = "failed"
)

// Defaults for job processing and archival.
const (
	DefaultMaxAttempts        = 5
	DefaultBaseDelay          = time.Second
	DefaultCompletedRetention = 24 * time.Hour
	DefaultFailedRetention    = 7 * 24 * time.Hour
)

// Job is the unit of work in the delivery queue. The payload is fully
// rendered, channel-ready content; the queue never inspects it.
type Job struct {
	ID          uuid.UUID       `json:"id"`
	Channel     string          `json:"channel"`
	Payload     json.RawMessage `json:"payload"`
	Status      Status          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	LastError   string          `json:"last_error,omitempty"`
	LockedUntil *time.Time      `json:"locked_until,omitempty"`
	LockedBy    *uuid.UUID      `json:"locked_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// JobStatus is the point-lookup view of a job returned by GetStatus.
type JobStatus struct {
	Status    Status `json:"status"`
	Attempts  int    `json:"attempts"`
	LastError string `json:"last_error,omitempty"`
}

// externalStatus collapses the internal waiting states into StatusPending
// for status lookups. All other states pass through unchanged.
func externalStatus(s Status) Status {
	if s == StatusScheduled || s == StatusQueued {
		return StatusPending
	}
	return s
}

// Stats is a snapshot of queue depth per state for observability.
type Stats struct {
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Scheduled  int `json:"scheduled"`
	Failed     int `json:"failed"`
}

// Backoff returns the retry delay after the given attempt number (1-based):
// base, 2*base, 4*base and so on, doubling per attempt.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(1<<(attempt-1))
}
