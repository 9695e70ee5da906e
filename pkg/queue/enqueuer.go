package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Enqueuer submits delivery jobs to the queue.
type Enqueuer struct {
	storage            Storage
	defaultMaxAttempts int
}

// EnqueuerOption configures an Enqueuer.
type EnqueuerOption func(*Enqueuer)

// WithDefaultMaxAttempts sets the attempt budget applied when an individual
// Enqueue call does not override it.
func WithDefaultMaxAttempts(n int) EnqueuerOption {
	return func(e *Enqueuer) {
		if n > 0 {
			e.defaultMaxAttempts = n
		}
	}
}

// NewEnqueuer creates a job enqueuer backed by the given storage.
func NewEnqueuer(storage Storage, opts ...EnqueuerOption) (*Enqueuer, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	e := &Enqueuer{
		storage:            storage,
		defaultMaxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	maxAttempts int
	delay       time.Duration
	scheduledAt *time.Time
}

// WithMaxAttempts overrides the attempt budget for this job.
func WithMaxAttempts(n int) EnqueueOption {
	return func(o *enqueueOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithDelay defers the job by the given duration from now.
func WithDelay(d time.Duration) EnqueueOption {
	return func(o *enqueueOptions) {
		if d > 0 {
			o.delay = d
		}
	}
}

// WithScheduledAt defers the job until a specific time. Takes precedence
// over WithDelay.
func WithScheduledAt(at time.Time) EnqueueOption {
	return func(o *enqueueOptions) {
		o.scheduledAt = &at
	}
}

// Enqueue submits one delivery job for the given channel and returns its id.
// The payload is marshaled to JSON and must be fully rendered, channel-ready
// content; the queue hands it to the channel sender verbatim.
func (e *Enqueuer) Enqueue(ctx context.Context, channel string, payload any, opts ...EnqueueOption) (uuid.UUID, error) {
	if channel != ChannelEmail && channel != ChannelPush {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
	if payload == nil {
		return uuid.Nil, ErrPayloadNil
	}

	options := &enqueueOptions{maxAttempts: e.defaultMaxAttempts}
	for _, opt := range opts {
		opt(options)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("queue: marshal payload of type %T: %w", payload, err)
	}

	now := time.Now()
	scheduledAt := now
	if options.scheduledAt != nil {
		scheduledAt = *options.scheduledAt
	} else if options.delay > 0 {
		scheduledAt = now.Add(options.delay)
	}

	status := StatusQueued
	if scheduledAt.After(now) {
		status = StatusScheduled
	}

	job := &Job{
		ID:          uuid.New(),
		Channel:     channel,
		Payload:     raw,
		Status:      status,
		MaxAttempts: options.maxAttempts,
		ScheduledAt: scheduledAt,
		CreatedAt:   now,
	}

	if err := e.storage.CreateJob(ctx, job); err != nil {
		return uuid.Nil, fmt.Errorf("queue: create %s job: %w", channel, err)
	}
	return job.ID, nil
}

// GetStatus reports the state of a previously enqueued job.
func (e *Enqueuer) GetStatus(ctx context.Context, jobID uuid.UUID) (JobStatus, error) {
	return e.storage.GetStatus(ctx, jobID)
}

// Stats returns a snapshot of queue depth per state.
func (e *Enqueuer) Stats(ctx context.Context) (Stats, error) {
	return e.storage.Stats(ctx)
}
