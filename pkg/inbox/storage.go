package inbox

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// DefaultMaxPerUser caps the number of stored notifications per user.
const DefaultMaxPerUser = 50

// ListOptions provides filtering and pagination for listing notifications.
// Expired notifications are always excluded.
type ListOptions struct {
	UnreadOnly bool
	Types      []notification.EventType
	Priority   *Priority
	Since      *time.Time
	Until      *time.Time
	Page       int // 1-based; 0 means first page
	PageSize   int // 0 means DefaultPageSize
}

// DefaultPageSize bounds a single listing when the caller does not specify one.
const DefaultPageSize = 20

// ListResult is one page of a user's notifications plus aggregate counts.
// Total counts every live (non-expired) notification matching the filters;
// UnreadCount counts live unread notifications regardless of filters.
type ListResult struct {
	Items       []Notification `json:"items"`
	Total       int            `json:"total"`
	UnreadCount int            `json:"unread_count"`
}

// Storage persists in-app notifications. Implementations must enforce the
// per-user capacity cap inside Create as one atomic operation per user:
// count, evict oldest-first, insert.
type Storage interface {
	// Create stores a notification, evicting the user's oldest records when
	// the per-user cap would be exceeded. Eviction is strict insertion-order
	// FIFO, blind to read status and priority.
	Create(ctx context.Context, notif Notification) error

	// Get retrieves a single notification owned by the user.
	Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error)

	// List returns one page of the user's notifications, excluding expired
	// records, ordered by priority descending then recency descending.
	List(ctx context.Context, userID string, opts ListOptions) (ListResult, error)

	// MarkRead marks the given notifications as read.
	MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error

	// UnreadIDs returns the ids of the user's live unread notifications.
	UnreadIDs(ctx context.Context, userID string) ([]uuid.UUID, error)

	// Delete removes the given notifications.
	Delete(ctx context.Context, userID string, ids ...uuid.UUID) error

	// CountForUser returns the number of stored records for a user,
	// including read and expired ones still awaiting cleanup.
	CountForUser(ctx context.Context, userID string) (int, error)

	// Cleanup deletes notifications that are expired, or that are read and
	// older than the retention horizon. Returns the number deleted.
	Cleanup(ctx context.Context, readRetention time.Duration) (int, error)
}
