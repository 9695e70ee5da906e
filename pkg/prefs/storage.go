package prefs

import "context"

// Storage persists user notification preferences.
type Storage interface {
	// Get returns the preference for a user, or ErrNotFound.
	Get(ctx context.Context, userID string) (Preference, error)

	// Upsert stores the preference, overwriting any existing one.
	Upsert(ctx context.Context, pref Preference) error

	// Reset replaces the user's preference with the system defaults.
	// Preferences are never deleted, only reset.
	Reset(ctx context.Context, userID string) error
}
