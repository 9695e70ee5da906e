package push

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory SubscriptionStore for development and testing.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]Subscription
}

// NewMemoryStore creates an in-memory subscription store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[uuid.UUID]Subscription)}
}

func (s *MemoryStore) Save(ctx context.Context, sub Subscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-registration of a known endpoint refreshes the existing record.
	for id, existing := range s.subs {
		if existing.Endpoint == sub.Endpoint {
			sub.ID = id
			sub.Active = true
			sub.DeactivatedAt = nil
			if sub.CreatedAt.IsZero() {
				sub.CreatedAt = existing.CreatedAt
			}
			if sub.LastSeenAt == nil {
				sub.LastSeenAt = existing.LastSeenAt
			}
			s.subs[id] = sub
			return nil
		}
	}

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	sub.Active = true
	s.subs[sub.ID] = sub
	return nil
}

func (s *MemoryStore) ActiveForUser(ctx context.Context, userID string) ([]Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var subs []Subscription
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.Active {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (s *MemoryStore) MarkSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return ErrNotFound
	}
	sub.LastSeenAt = &at
	s.subs[id] = sub
	return nil
}

func (s *MemoryStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return ErrNotFound
	}
	if sub.Active {
		now := time.Now()
		sub.Active = false
		sub.DeactivatedAt = &now
		s.subs[id] = sub
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[id]; !ok {
		return ErrNotFound
	}
	delete(s.subs, id)
	return nil
}
