package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces the queue's Redis keys.
const DefaultKeyPrefix = "notify:queue"

// RedisStorage is a Redis-backed Storage implementation suitable for
// running multiple processor instances across process boundaries.
//
// Layout: the active queue and the processing set are lists of job ids;
// the claim is a single LMOVE between them, which is what guarantees that
// at most one worker ever holds a given job. Scheduled jobs (including
// retries waiting out their backoff) live in a sorted set scored by due
// time. Terminal records are plain keys whose TTL implements retention.
type RedisStorage struct {
	client *redis.Client
	prefix string

	baseDelay          time.Duration
	completedRetention time.Duration
	failedRetention    time.Duration
}

// RedisStorageOption configures a RedisStorage.
type RedisStorageOption func(*RedisStorage)

// WithKeyPrefix overrides the key namespace.
func WithKeyPrefix(prefix string) RedisStorageOption {
	return func(s *RedisStorage) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRedisBaseDelay sets the base for the exponential retry backoff.
func WithRedisBaseDelay(d time.Duration) RedisStorageOption {
	return func(s *RedisStorage) {
		if d > 0 {
			s.baseDelay = d
		}
	}
}

// WithRedisRetention sets how long terminal completion and failure records
// are kept for status lookups.
func WithRedisRetention(completed, failed time.Duration) RedisStorageOption {
	return func(s *RedisStorage) {
		if completed > 0 {
			s.completedRetention = completed
		}
		if failed > 0 {
			s.failedRetention = failed
		}
	}
}

// NewRedisStorage creates a Redis-backed job storage.
func NewRedisStorage(client *redis.Client, opts ...RedisStorageOption) (*RedisStorage, error) {
	if client == nil {
		return nil, ErrStorageNil
	}

	s := &RedisStorage{
		client:             client,
		prefix:             DefaultKeyPrefix,
		baseDelay:          DefaultBaseDelay,
		completedRetention: DefaultCompletedRetention,
		failedRetention:    DefaultFailedRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisStorage) pendingKey() string    { return s.prefix + ":pending" }
func (s *RedisStorage) processingKey() string { return s.prefix + ":processing" }
func (s *RedisStorage) scheduledKey() string  { return s.prefix + ":scheduled" }
func (s *RedisStorage) failedIndexKey() string {
	return s.prefix + ":failed_index"
}
func (s *RedisStorage) jobKey(id uuid.UUID) string       { return s.prefix + ":job:" + id.String() }
func (s *RedisStorage) completedKey(id uuid.UUID) string { return s.prefix + ":completed:" + id.String() }
func (s *RedisStorage) failedKey(id uuid.UUID) string    { return s.prefix + ":failed:" + id.String() }

func (s *RedisStorage) saveJob(ctx context.Context, job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", job.ID, err)
	}
	if err := s.client.Set(ctx, s.jobKey(job.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("queue: save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *RedisStorage) loadJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	raw, err := s.client.Get(ctx, s.jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("queue: load job %s: %w", id, err)
	}
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("queue: decode job %s: %w", id, err)
	}
	return &job, nil
}

func (s *RedisStorage) CreateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("queue: job cannot be nil")
	}

	jobCopy := *job
	now := time.Now()
	if jobCopy.ScheduledAt.After(now) {
		jobCopy.Status = StatusScheduled
	} else {
		jobCopy.Status = StatusQueued
	}

	if err := s.saveJob(ctx, &jobCopy); err != nil {
		return err
	}

	if jobCopy.Status == StatusScheduled {
		err := s.client.ZAdd(ctx, s.scheduledKey(), redis.Z{
			Score:  float64(jobCopy.ScheduledAt.UnixMilli()),
			Member: jobCopy.ID.String(),
		}).Err()
		if err != nil {
			return fmt.Errorf("queue: schedule job %s: %w", jobCopy.ID, err)
		}
		return nil
	}

	if err := s.client.LPush(ctx, s.pendingKey(), jobCopy.ID.String()).Err(); err != nil {
		return fmt.Errorf("queue: push job %s: %w", jobCopy.ID, err)
	}
	return nil
}

func (s *RedisStorage) PromoteDue(ctx context.Context) (int, error) {
	now := time.Now()

	dueIDs, err := s.client.ZRangeByScore(ctx, s.scheduledKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("queue: list due jobs: %w", err)
	}

	promoted := 0
	for _, rawID := range dueIDs {
		// ZRem doubles as the claim between concurrent promoters; only the
		// instance that removed the member pushes the job.
		removed, err := s.client.ZRem(ctx, s.scheduledKey(), rawID).Result()
		if err != nil {
			return promoted, fmt.Errorf("queue: unschedule job %s: %w", rawID, err)
		}
		if removed == 0 {
			continue
		}

		id, err := uuid.Parse(rawID)
		if err != nil {
			continue
		}
		job, err := s.loadJob(ctx, id)
		if err != nil {
			if errors.Is(err, ErrJobNotFound) {
				continue
			}
			return promoted, err
		}
		job.Status = StatusQueued
		if err := s.saveJob(ctx, job); err != nil {
			return promoted, err
		}
		if err := s.client.LPush(ctx, s.pendingKey(), rawID).Err(); err != nil {
			return promoted, fmt.Errorf("queue: push promoted job %s: %w", rawID, err)
		}
		promoted++
	}

	if err := s.reclaimExpiredLocks(ctx, now); err != nil {
		return promoted, err
	}

	// Keep the failure index in step with the per-record TTLs.
	horizon := strconv.FormatInt(now.Add(-s.failedRetention).UnixMilli(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.failedIndexKey(), "-inf", horizon).Err(); err != nil {
		return promoted, fmt.Errorf("queue: prune failed index: %w", err)
	}

	return promoted, nil
}

// reclaimExpiredLocks returns processing jobs abandoned by dead workers to
// the active queue, preserving their attempt count.
func (s *RedisStorage) reclaimExpiredLocks(ctx context.Context, now time.Time) error {
	ids, err := s.client.LRange(ctx, s.processingKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("queue: list processing jobs: %w", err)
	}

	for _, rawID := range ids {
		id, err := uuid.Parse(rawID)
		if err != nil {
			continue
		}
		job, err := s.loadJob(ctx, id)
		if err != nil {
			if errors.Is(err, ErrJobNotFound) {
				s.client.LRem(ctx, s.processingKey(), 1, rawID)
				continue
			}
			return err
		}
		if job.LockedUntil == nil || job.LockedUntil.After(now) {
			continue
		}

		removed, err := s.client.LRem(ctx, s.processingKey(), 1, rawID).Result()
		if err != nil {
			return fmt.Errorf("queue: remove expired job %s: %w", rawID, err)
		}
		if removed == 0 {
			continue
		}

		job.Status = StatusQueued
		job.LockedUntil = nil
		job.LockedBy = nil
		if err := s.saveJob(ctx, job); err != nil {
			return err
		}
		if err := s.client.LPush(ctx, s.pendingKey(), rawID).Err(); err != nil {
			return fmt.Errorf("queue: requeue expired job %s: %w", rawID, err)
		}
	}
	return nil
}

func (s *RedisStorage) ClaimNext(ctx context.Context, workerID uuid.UUID, lockDuration time.Duration) (*Job, error) {
	rawID, err := s.client.LMove(ctx, s.pendingKey(), s.processingKey(), "RIGHT", "LEFT").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoJobToClaim
		}
		return nil, fmt.Errorf("queue: claim job: %w", err)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		s.client.LRem(ctx, s.processingKey(), 1, rawID)
		return nil, ErrNoJobToClaim
	}

	job, err := s.loadJob(ctx, id)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			s.client.LRem(ctx, s.processingKey(), 1, rawID)
			return nil, ErrNoJobToClaim
		}
		return nil, err
	}

	lockUntil := time.Now().Add(lockDuration)
	job.Status = StatusProcessing
	job.LockedUntil = &lockUntil
	job.LockedBy = &workerID
	if err := s.saveJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *RedisStorage) CompleteJob(ctx context.Context, jobID uuid.UUID) error {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return err
	}

	record := JobStatus{Status: StatusCompleted, Attempts: job.Attempts + 1}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("queue: marshal completion %s: %w", jobID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, s.processingKey(), 1, jobID.String())
	pipe.Set(ctx, s.completedKey(jobID), raw, s.completedRetention)
	pipe.Del(ctx, s.jobKey(jobID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue: complete job %s: %w", jobID, err)
	}
	return nil
}

func (s *RedisStorage) FailJob(ctx context.Context, jobID uuid.UUID, errorMsg string) error {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Attempts++
	job.LastError = errorMsg
	job.LockedUntil = nil
	job.LockedBy = nil

	if job.Attempts >= job.MaxAttempts {
		return s.archiveFailed(ctx, job)
	}

	job.Status = StatusScheduled
	job.ScheduledAt = time.Now().Add(Backoff(s.baseDelay, job.Attempts))
	if err := s.saveJob(ctx, job); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, s.processingKey(), 1, jobID.String())
	pipe.ZAdd(ctx, s.scheduledKey(), redis.Z{
		Score:  float64(job.ScheduledAt.UnixMilli()),
		Member: jobID.String(),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue: reschedule job %s: %w", jobID, err)
	}
	return nil
}

func (s *RedisStorage) DiscardJob(ctx context.Context, jobID uuid.UUID, errorMsg string) error {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Attempts++
	job.LastError = errorMsg
	return s.archiveFailed(ctx, job)
}

func (s *RedisStorage) archiveFailed(ctx context.Context, job *Job) error {
	record := JobStatus{Status: StatusFailed, Attempts: job.Attempts, LastError: job.LastError}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("queue: marshal failure %s: %w", job.ID, err)
	}

	rawID := job.ID.String()
	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, s.processingKey(), 1, rawID)
	pipe.LRem(ctx, s.pendingKey(), 1, rawID)
	pipe.ZRem(ctx, s.scheduledKey(), rawID)
	pipe.Set(ctx, s.failedKey(job.ID), raw, s.failedRetention)
	pipe.ZAdd(ctx, s.failedIndexKey(), redis.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: rawID,
	})
	pipe.Del(ctx, s.jobKey(job.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue: archive failed job %s: %w", job.ID, err)
	}
	return nil
}

func (s *RedisStorage) GetStatus(ctx context.Context, jobID uuid.UUID) (JobStatus, error) {
	// Terminal records are cheap point lookups, so they go first.
	for _, key := range []string{s.completedKey(jobID), s.failedKey(jobID)} {
		raw, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return JobStatus{}, fmt.Errorf("queue: lookup job %s: %w", jobID, err)
		}
		var record JobStatus
		if err := json.Unmarshal(raw, &record); err != nil {
			return JobStatus{}, fmt.Errorf("queue: decode record %s: %w", jobID, err)
		}
		return record, nil
	}

	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return JobStatus{}, err
	}
	return JobStatus{Status: externalStatus(job.Status), Attempts: job.Attempts, LastError: job.LastError}, nil
}

func (s *RedisStorage) Stats(ctx context.Context) (Stats, error) {
	pipe := s.client.Pipeline()
	queued := pipe.LLen(ctx, s.pendingKey())
	processing := pipe.LLen(ctx, s.processingKey())
	scheduled := pipe.ZCard(ctx, s.scheduledKey())
	failed := pipe.ZCard(ctx, s.failedIndexKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return Stats{}, fmt.Errorf("queue: collect stats: %w", err)
	}

	return Stats{
		Queued:     int(queued.Val()),
		Processing: int(processing.Val()),
		Scheduled:  int(scheduled.Val()),
		Failed:     int(failed.Val()),
	}, nil
}
