// Package queue implements the durable delivery queue for email and push
// jobs: exponential retry backoff, scheduled (future-dated) jobs, terminal
// failure archiving and an independent processing loop decoupled from the
// dispatcher's call stack.
//
// A job moves through scheduled, queued, processing and one of two terminal
// states. GetStatus collapses scheduled and queued into pending, so callers
// see pending, processing, completed or failed.
// The claim from queued to processing is a single atomic move, so a
// job is never executed by two workers at once even when several processor
// instances share one storage. Failed attempts are re-inserted into the
// scheduled set after a doubling backoff; once attempts reach the budget
// the job is archived as failed with its last error. Completions are kept
// for a day for status lookups, failures for a week for operators.
//
// # Enqueueing
//
//	enqueuer, err := queue.NewEnqueuer(storage)
//	jobID, err := enqueuer.Enqueue(ctx, queue.ChannelEmail, payload,
//		queue.WithMaxAttempts(3),
//		queue.WithScheduledAt(time.Now().Add(5*time.Minute)),
//	)
//
//	status, err := enqueuer.GetStatus(ctx, jobID)
//	stats, err := enqueuer.Stats(ctx)
//
// # Processing
//
//	processor, err := queue.NewProcessor(storage,
//		queue.WithPollInterval(time.Second),
//		queue.WithMaxConcurrent(4),
//	)
//	processor.RegisterSender(emailSender, pushSender)
//
//	if err := processor.Start(ctx); err != nil { ... }
//	defer processor.Stop()
//
// Senders report unrecoverable outcomes by wrapping queue.ErrPermanent,
// which archives the job immediately instead of burning retries. Any other
// error, including a send timeout, follows the backoff path.
//
// # Storage
//
// NewMemoryStorage suits tests and single-process setups. NewRedisStorage
// uses a Redis list move for the claim and supports multiple processor
// instances across processes.
package queue
