package queue

import "errors"

var (
	// ErrStorageNil is returned when a nil storage is provided.
	ErrStorageNil = errors.New("queue: storage cannot be nil")

	// ErrPayloadNil is returned when attempting to enqueue a nil payload.
	ErrPayloadNil = errors.New("queue: payload cannot be nil")

	// ErrUnknownChannel is returned when a job names a channel the queue
	// does not route.
	ErrUnknownChannel = errors.New("queue: unknown channel")

	// ErrJobNotFound is returned when a job id matches neither the active
	// sets nor the retained terminal records.
	ErrJobNotFound = errors.New("queue: job not found")

	// ErrNoJobToClaim signals an empty active queue. Not an error condition
	// for the processing loop.
	ErrNoJobToClaim = errors.New("queue: no job available to claim")

	// ErrNoSenders is returned when a processor starts with no registered
	// channel senders.
	ErrNoSenders = errors.New("queue: no channel senders registered")

	// ErrSenderNotFound is returned when a claimed job names a channel with
	// no registered sender.
	ErrSenderNotFound = errors.New("queue: no sender registered for channel")

	// ErrPermanent marks a send failure that retrying cannot fix, such as a
	// hard-bounced address. Senders wrap their errors with it to make the
	// processor archive the job immediately instead of backing off.
	ErrPermanent = errors.New("queue: permanent delivery failure")
)
