package inbox

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory Storage implementation.
// Suitable for development and testing.
type MemoryStorage struct {
	notifications map[string][]Notification // userID -> records in insertion order
	maxPerUser    int
	mu            sync.RWMutex
}

// NewMemoryStorage creates an in-memory notification storage with the given
// per-user cap. A non-positive cap falls back to DefaultMaxPerUser.
func NewMemoryStorage(maxPerUser int) *MemoryStorage {
	if maxPerUser <= 0 {
		maxPerUser = DefaultMaxPerUser
	}
	return &MemoryStorage{
		notifications: make(map[string][]Notification),
		maxPerUser:    maxPerUser,
	}
}

// Create inserts a record, evicting the user's oldest records first when the
// cap would be exceeded. The count-evict-insert sequence runs under one lock
// so concurrent creations for the same user cannot exceed the cap.
func (s *MemoryStorage) Create(ctx context.Context, notif Notification) error {
	if notif.ID == uuid.Nil {
		return ErrMissingID
	}
	if notif.UserID == "" {
		return ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	records := s.notifications[notif.UserID]
	if overflow := len(records) - s.maxPerUser + 1; overflow > 0 {
		// Records are held in insertion order, so FIFO eviction is a prefix cut.
		records = slices.Clone(records[overflow:])
	}

	s.notifications[notif.UserID] = append(records, notif)
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, userID string, id uuid.UUID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications[userID] {
		if n.ID == id {
			notif := n
			return &notif, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) (ListResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		filtered    []Notification
		unreadCount int
	)
	for _, n := range s.notifications[userID] {
		if n.IsExpired() {
			continue
		}
		if !n.Read {
			unreadCount++
		}
		if opts.UnreadOnly && n.Read {
			continue
		}
		if len(opts.Types) > 0 && !slices.Contains(opts.Types, n.Type) {
			continue
		}
		if opts.Priority != nil && n.Priority != *opts.Priority {
			continue
		}
		if opts.Since != nil && n.CreatedAt.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && n.CreatedAt.After(*opts.Until) {
			continue
		}
		filtered = append(filtered, n)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Priority.Rank() != filtered[j].Priority.Rank() {
			return filtered[i].Priority.Rank() > filtered[j].Priority.Rank()
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	result := ListResult{Total: len(filtered), UnreadCount: unreadCount}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := max(opts.Page, 1)

	start := (page - 1) * pageSize
	if start >= len(filtered) {
		result.Items = []Notification{}
		return result, nil
	}
	end := min(start+pageSize, len(filtered))
	result.Items = slices.Clone(filtered[start:end])

	return result, nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, userID string, ids ...uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idSet := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	records := s.notifications[userID]
	for i := range records {
		if _, ok := idSet[records[i].ID]; ok && !records[i].Read {
			records[i].MarkAsRead()
		}
	}
	return nil
}

func (s *MemoryStorage) UnreadIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uuid.UUID
	for _, n := range s.notifications[userID] {
		if !n.Read && !n.IsExpired() {
			ids = append(ids, n.ID)
		}
	}
	return ids, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, userID string, ids ...uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idSet := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	records := s.notifications[userID]
	s.notifications[userID] = slices.DeleteFunc(records, func(n Notification) bool {
		_, ok := idSet[n.ID]
		return ok
	})
	return nil
}

func (s *MemoryStorage) CountForUser(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notifications[userID]), nil
}

func (s *MemoryStorage) Cleanup(ctx context.Context, readRetention time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	horizon := time.Now().Add(-readRetention)
	deleted := 0

	for userID, records := range s.notifications {
		kept := slices.DeleteFunc(records, func(n Notification) bool {
			if n.IsExpired() {
				return true
			}
			if n.Read && n.CreatedAt.Before(horizon) {
				return true
			}
			return false
		})
		deleted += len(records) - len(kept)
		if len(kept) == 0 {
			delete(s.notifications, userID)
		} else {
			s.notifications[userID] = kept
		}
	}

	return deleted, nil
}
