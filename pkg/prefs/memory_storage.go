package prefs

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation.
// Suitable for development and testing.
type MemoryStorage struct {
	prefs map[string]Preference
	mu    sync.RWMutex
}

// NewMemoryStorage creates a new in-memory preference storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		prefs: make(map[string]Preference),
	}
}

func (s *MemoryStorage) Get(ctx context.Context, userID string) (Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pref, ok := s.prefs[userID]
	if !ok {
		return Preference{}, ErrNotFound
	}
	return pref, nil
}

func (s *MemoryStorage) Upsert(ctx context.Context, pref Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pref.UpdatedAt.IsZero() {
		pref.UpdatedAt = time.Now()
	}
	s.prefs[pref.UserID] = pref
	return nil
}

func (s *MemoryStorage) Reset(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pref := Default(userID)
	pref.UpdatedAt = time.Now()
	s.prefs[userID] = pref
	return nil
}
