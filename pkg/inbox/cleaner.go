package inbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Cleaner periodically sweeps the storage, deleting expired notifications
// and read notifications past the retention horizon.
type Cleaner struct {
	storage       Storage
	log           *slog.Logger
	interval      time.Duration
	readRetention time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithCleanerLogger sets the logger for the cleaner.
func WithCleanerLogger(log *slog.Logger) CleanerOption {
	return func(c *Cleaner) {
		if log != nil {
			c.log = log
		}
	}
}

// WithInterval sets how often the sweep runs.
func WithInterval(d time.Duration) CleanerOption {
	return func(c *Cleaner) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithReadRetention sets how long read notifications are kept.
func WithReadRetention(d time.Duration) CleanerOption {
	return func(c *Cleaner) {
		if d > 0 {
			c.readRetention = d
		}
	}
}

// NewCleaner creates a periodic cleanup sweeper for the given storage.
func NewCleaner(storage Storage, opts ...CleanerOption) (*Cleaner, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	c := &Cleaner{
		storage:       storage,
		log:           slog.Default(),
		interval:      time.Hour,
		readRetention: 30 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start launches the background sweep loop. Calling Start on a running
// cleaner is a no-op.
func (c *Cleaner) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})

	go c.run(ctx)
}

// Stop terminates the sweep loop and waits for an in-flight sweep to finish.
func (c *Cleaner) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Cleaner) run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := c.storage.Cleanup(ctx, c.readRetention)
			if err != nil {
				c.log.LogAttrs(ctx, slog.LevelError, "inbox cleanup failed",
					logger.Component("inbox.cleaner"),
					logger.Error(err),
				)
				continue
			}
			if deleted > 0 {
				c.log.LogAttrs(ctx, slog.LevelInfo, "inbox cleanup removed notifications",
					logger.Component("inbox.cleaner"),
					slog.Int("deleted", deleted),
				)
			}
		}
	}
}
