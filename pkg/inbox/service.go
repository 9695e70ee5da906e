package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultChunkSize bounds the number of ids mutated in a single storage call
// so one large batch cannot monopolize the store.
const DefaultChunkSize = 100

// Service wraps a Storage with id/timestamp defaults and chunked batch
// mutations. It is the in-app writer the dispatcher talks to.
type Service struct {
	storage   Storage
	log       *slog.Logger
	chunkSize int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithChunkSize sets the batch mutation chunk size.
func WithChunkSize(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// NewService creates an in-app notification service.
func NewService(storage Storage, opts ...ServiceOption) (*Service, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}

	s := &Service{
		storage:   storage,
		log:       slog.Default(),
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create stores a notification, generating its id and creation time when
// absent and defaulting the priority to normal. The storage enforces the
// per-user cap atomically.
func (s *Service) Create(ctx context.Context, notif Notification) (Notification, error) {
	if notif.ID == uuid.Nil {
		notif.ID = uuid.New()
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}
	if notif.Priority == "" {
		notif.Priority = PriorityNormal
	}
	if !notif.Priority.Valid() {
		return Notification{}, fmt.Errorf("%w: %q", ErrInvalidPriority, notif.Priority)
	}

	if err := s.storage.Create(ctx, notif); err != nil {
		return Notification{}, fmt.Errorf("inbox: create notification: %w", err)
	}
	return notif, nil
}

// Get retrieves a single notification owned by the user.
func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error) {
	return s.storage.Get(ctx, userID, id)
}

// List returns one page of the user's notifications.
func (s *Service) List(ctx context.Context, userID string, opts ListOptions) (ListResult, error) {
	return s.storage.List(ctx, userID, opts)
}

// MarkRead marks the given notifications as read, in chunks.
func (s *Service) MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error {
	for chunk := range chunks(ids, s.chunkSize) {
		if err := s.storage.MarkRead(ctx, userID, chunk...); err != nil {
			return err
		}
	}
	return nil
}

// MarkAllRead marks every live unread notification of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	ids, err := s.storage.UnreadIDs(ctx, userID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return s.MarkRead(ctx, userID, ids...)
}

// DeleteMany removes the given notifications, in chunks.
func (s *Service) DeleteMany(ctx context.Context, userID string, ids ...uuid.UUID) error {
	for chunk := range chunks(ids, s.chunkSize) {
		if err := s.storage.Delete(ctx, userID, chunk...); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup deletes expired notifications and read notifications older than
// the retention horizon.
func (s *Service) Cleanup(ctx context.Context, readRetention time.Duration) (int, error) {
	return s.storage.Cleanup(ctx, readRetention)
}

// chunks yields fixed-size sub-slices of ids.
func chunks(ids []uuid.UUID, size int) func(yield func([]uuid.UUID) bool) {
	return func(yield func([]uuid.UUID) bool) {
		for start := 0; start < len(ids); start += size {
			end := min(start+size, len(ids))
			if !yield(ids[start:end]) {
				return
			}
		}
	}
}
