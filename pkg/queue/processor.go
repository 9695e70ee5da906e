package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Sender delivers one rendered payload over a channel. Implementations wrap
// failures with ErrPermanent when retrying cannot help.
type Sender interface {
	// Channel returns the channel name the sender handles.
	Channel() string

	// Send delivers one payload. The context carries the per-send timeout.
	Send(ctx context.Context, payload json.RawMessage) error
}

// Processor runs the delivery queue's processing loop: on every tick it
// promotes due scheduled jobs, then claims jobs one at a time and executes
// the matching channel sender. It is safe to run multiple processors
// against the same storage; the atomic claim keeps them from overlapping
// on a job.
type Processor struct {
	storage  Storage
	senders  map[string]Sender
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopMu   sync.Mutex

	pollInterval time.Duration
	lockTimeout  time.Duration
	sendTimeout  time.Duration
	log          *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*processorOptions)

type processorOptions struct {
	pollInterval  time.Duration
	lockTimeout   time.Duration
	sendTimeout   time.Duration
	maxConcurrent int
	log           *slog.Logger
}

// WithPollInterval sets how often the processor checks for work.
func WithPollInterval(d time.Duration) ProcessorOption {
	return func(o *processorOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithLockTimeout sets how long a claimed job stays locked before the
// storage may hand it to another worker.
func WithLockTimeout(d time.Duration) ProcessorOption {
	return func(o *processorOptions) {
		if d > 0 {
			o.lockTimeout = d
		}
	}
}

// WithSendTimeout bounds a single sender call so a hung provider cannot
// stall the loop.
func WithSendTimeout(d time.Duration) ProcessorOption {
	return func(o *processorOptions) {
		if d > 0 {
			o.sendTimeout = d
		}
	}
}

// WithMaxConcurrent sets how many jobs may be in flight at once.
func WithMaxConcurrent(n int) ProcessorOption {
	return func(o *processorOptions) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

// WithProcessorLogger sets the logger for the processor.
func WithProcessorLogger(log *slog.Logger) ProcessorOption {
	return func(o *processorOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// NewProcessor creates a delivery queue processor.
func NewProcessor(storage Storage, opts ...ProcessorOption) (*Processor, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	options := &processorOptions{
		pollInterval:  time.Second,
		lockTimeout:   time.Minute,
		sendTimeout:   30 * time.Second,
		maxConcurrent: 1,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Processor{
		storage:      storage,
		senders:      make(map[string]Sender),
		workerID:     uuid.New(),
		sem:          make(chan struct{}, options.maxConcurrent),
		pollInterval: options.pollInterval,
		lockTimeout:  options.lockTimeout,
		sendTimeout:  options.sendTimeout,
		log:          options.log,
	}, nil
}

// RegisterSender registers a channel sender. Registering a second sender
// for the same channel replaces the first.
func (p *Processor) RegisterSender(senders ...Sender) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range senders {
		if s != nil {
			p.senders[s.Channel()] = s
		}
	}
}

// Start launches the processing loop in the background.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return errors.New("queue: processor already started")
	}
	if len(p.senders) == 0 {
		p.mu.Unlock()
		return ErrNoSenders
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	p.stopping.Store(false)
	go p.run()

	p.log.Info("queue processor started",
		slog.String("worker_id", p.workerID.String()),
		slog.Int("max_concurrent", cap(p.sem)))
	return nil
}

// Stop shuts the loop down and waits for in-flight sends to finish. There
// is no mid-flight cancellation; each attempt runs to its outcome.
func (p *Processor) Stop() error {
	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return errors.New("queue: processor not started")
	}

	p.stopMu.Lock()
	p.stopping.Store(true)
	p.stopMu.Unlock()

	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	p.wg.Wait()

	p.log.Info("queue processor stopped", slog.String("worker_id", p.workerID.String()))
	return nil
}

// Run returns a function suitable for errgroup: it starts the processor,
// blocks until the context is done and then stops it.
func (p *Processor) Run(ctx context.Context) func() error {
	return func() error {
		if err := p.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return p.Stop()
	}
}

func (p *Processor) run() {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.storage.PromoteDue(p.ctx); err != nil && p.ctx.Err() == nil {
				p.log.Error("failed to promote scheduled jobs",
					slog.String("worker_id", p.workerID.String()),
					slog.String("error", err.Error()))
			}

			p.drain()
		}
	}
}

// drain claims jobs until the queue is empty or all slots are busy.
func (p *Processor) drain() {
	for {
		select {
		case p.sem <- struct{}{}:
		default:
			return
		}

		// stopMu keeps the WaitGroup add ordered before Stop's Wait.
		p.stopMu.Lock()
		if p.stopping.Load() {
			p.stopMu.Unlock()
			<-p.sem
			return
		}
		p.wg.Add(1)
		p.stopMu.Unlock()

		job, err := p.storage.ClaimNext(p.ctx, p.workerID, p.lockTimeout)
		if err != nil {
			p.wg.Done()
			<-p.sem
			if !errors.Is(err, ErrNoJobToClaim) && p.ctx.Err() == nil {
				p.log.Error("failed to claim job",
					slog.String("worker_id", p.workerID.String()),
					slog.String("error", err.Error()))
			}
			return
		}

		go func() {
			defer p.wg.Done()
			defer func() { <-p.sem }()
			p.process(job)
		}()
	}
}

func (p *Processor) process(job *Job) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("sender panicked",
				slog.String("worker_id", p.workerID.String()),
				slog.String("job_id", job.ID.String()),
				slog.String("channel", job.Channel),
				slog.Any("panic", r))
			p.fail(job, fmt.Errorf("panic in sender: %v", r), time.Since(start))
		}
	}()

	p.mu.RLock()
	sender, ok := p.senders[job.Channel]
	p.mu.RUnlock()

	if !ok {
		// Retrying cannot conjure a sender, so archive immediately for
		// operator inspection.
		p.log.Error("no sender registered for channel",
			slog.String("worker_id", p.workerID.String()),
			slog.String("job_id", job.ID.String()),
			slog.String("channel", job.Channel))
		msg := ErrSenderNotFound.Error() + ": " + job.Channel
		if err := p.storage.DiscardJob(context.WithoutCancel(p.ctx), job.ID, msg); err != nil {
			p.log.Error("failed to discard job",
				slog.String("job_id", job.ID.String()),
				slog.String("error", err.Error()))
		}
		return
	}

	// Detached from the loop context so graceful shutdown lets the attempt
	// finish; bounded so a hung provider cannot stall the slot forever.
	ctx, cancel := context.WithTimeout(context.Background(), p.sendTimeout)
	defer cancel()

	err := sender.Send(ctx, job.Payload)
	duration := time.Since(start)

	if err != nil {
		p.fail(job, err, duration)
		return
	}

	if err := p.storage.CompleteJob(context.WithoutCancel(p.ctx), job.ID); err != nil {
		p.log.Error("failed to mark job completed",
			slog.String("job_id", job.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	p.log.Info("job delivered",
		slog.String("worker_id", p.workerID.String()),
		slog.String("job_id", job.ID.String()),
		slog.String("channel", job.Channel),
		slog.Duration("duration", duration))
}

func (p *Processor) fail(job *Job, sendErr error, duration time.Duration) {
	p.log.Error("job delivery failed",
		slog.String("worker_id", p.workerID.String()),
		slog.String("job_id", job.ID.String()),
		slog.String("channel", job.Channel),
		slog.Int("attempts", job.Attempts+1),
		slog.Int("max_attempts", job.MaxAttempts),
		slog.Duration("duration", duration),
		slog.String("error", sendErr.Error()))

	ctx := context.WithoutCancel(p.ctx)

	if errors.Is(sendErr, ErrPermanent) {
		if err := p.storage.DiscardJob(ctx, job.ID, sendErr.Error()); err != nil {
			p.log.Error("failed to discard job",
				slog.String("job_id", job.ID.String()),
				slog.String("error", err.Error()))
		}
		return
	}

	if err := p.storage.FailJob(ctx, job.ID, sendErr.Error()); err != nil {
		p.log.Error("failed to record job failure",
			slog.String("job_id", job.ID.String()),
			slog.String("error", err.Error()))
	}
}
